// Command fileagent analyzes weather and sales files and runs AI agent
// workflows against an OpenAI-compatible chat API (Groq by default).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"fileagent/internal/config"
	"fileagent/internal/llm"
	"fileagent/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	cfgPath     string
	verbose     bool
	timeout     time.Duration
	metricsFile string

	// Loaded in PersistentPreRunE
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "fileagent",
	Short: "File analysis and AI agent toolkit",
	Long: `fileagent fetches and exports weather data, analyzes sales CSV files,
and talks to a Groq (OpenAI-compatible) chat API for completions,
structured outputs, tool calling and agent workflow patterns.

Set GROQ_API_KEY (or OPENAI_API_KEY) in the environment or a .env file
before running the ai and patterns commands.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded

		level := ""
		if verbose {
			level = "debug"
		}
		logger, err = logging.Initialize(cfg.Logging.ToLogging(level))
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logging.Boot("fileagent %s (config=%s)", cfg.Version, cfgPath)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		path := metricsFile
		if path == "" && cfg != nil {
			path = cfg.Metrics.TextfilePath
		}
		if path != "" {
			if err := llm.WriteMetrics(path); err != nil {
				logging.Get(logging.CategoryBoot).Warn("Failed to write metrics: %v", err)
			}
		}
		if err := logging.Close(); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", config.DefaultPath, "Config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Operation timeout")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "Write LLM metrics in Prometheus text format to this file")

	rootCmd.AddCommand(weatherCmd)
	rootCmd.AddCommand(salesCmd)
	rootCmd.AddCommand(aiCmd)
	rootCmd.AddCommand(patternsCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(envCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// commandContext returns a context bounded by --timeout and cancelled on
// SIGINT or SIGTERM.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx, stop := signalContext(cmd)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// newLLMClient builds the configured chat client.
func newLLMClient() (llm.Client, error) {
	return llm.NewClientFromConfig(cfg.LLM)
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
