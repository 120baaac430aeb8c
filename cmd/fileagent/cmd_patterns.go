package main

import (
	"context"
	"fmt"
	"io"

	"fileagent/internal/calendar"
	"fileagent/internal/patterns"

	"github.com/spf13/cobra"
)

var (
	patternsDemo    bool
	patternsNoStore bool
)

// patternsCmd groups the agent workflow patterns
var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Agent workflow patterns over calendar requests",
	Long: `Runs one of three agent workflows over a calendar request:

  chain     validate the request, extract event details, write a confirmation
  route     classify as new_event, modify_event or other and dispatch
  parallel  run a calendar check and a prompt injection check concurrently

Created and modified events are stored in the calendar database unless
--no-store is given or calendar.enabled is false. Without a request, or
with --demo, the scripted demo inputs are run.`,
}

var patternsChainCmd = &cobra.Command{
	Use:   "chain [request]",
	Short: "Prompt chaining: validate, extract, confirm",
	RunE: patternRunner(
		func(a *patterns.Agent, ctx context.Context, w io.Writer) error { return a.RunChainDemo(ctx, w) },
		func(a *patterns.Agent, ctx context.Context, w io.Writer, input string) error {
			return a.PrintChain(ctx, w, input)
		},
	),
}

var patternsRouteCmd = &cobra.Command{
	Use:   "route [request]",
	Short: "Routing: classify and dispatch to a new or modify handler",
	RunE: patternRunner(
		func(a *patterns.Agent, ctx context.Context, w io.Writer) error { return a.RunRouteDemo(ctx, w) },
		func(a *patterns.Agent, ctx context.Context, w io.Writer, input string) error {
			return a.PrintRoute(ctx, w, input, 0)
		},
	),
}

var patternsParallelCmd = &cobra.Command{
	Use:   "parallel [request]",
	Short: "Parallelization: calendar and security checks side by side",
	RunE: patternRunner(
		func(a *patterns.Agent, ctx context.Context, w io.Writer) error { return a.RunParallelDemo(ctx, w) },
		func(a *patterns.Agent, ctx context.Context, w io.Writer, input string) error {
			return a.PrintScreen(ctx, w, input)
		},
	),
}

func init() {
	patternsCmd.PersistentFlags().BoolVar(&patternsDemo, "demo", false, "Run the scripted demo inputs")
	patternsCmd.PersistentFlags().BoolVar(&patternsNoStore, "no-store", false, "Do not persist events")

	patternsCmd.AddCommand(patternsChainCmd)
	patternsCmd.AddCommand(patternsRouteCmd)
	patternsCmd.AddCommand(patternsParallelCmd)
}

type demoFunc func(a *patterns.Agent, ctx context.Context, w io.Writer) error
type singleFunc func(a *patterns.Agent, ctx context.Context, w io.Writer, input string) error

// patternRunner builds a RunE that runs the demo or a single request.
func patternRunner(demo demoFunc, single singleFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()
		out := cmd.OutOrStdout()

		client, err := newLLMClient()
		if err != nil {
			return err
		}

		opts := []patterns.Option{patterns.WithThreshold(cfg.Patterns.ConfidenceThreshold)}
		if cfg.Calendar.Enabled && !patternsNoStore {
			store, err := openCalendar()
			if err != nil {
				return err
			}
			defer store.Close()
			opts = append(opts, patterns.WithStore(store))
		}
		agent := patterns.New(client, opts...)

		input := joinArgs(args)
		if patternsDemo || input == "" {
			return demo(agent, ctx, out)
		}
		return single(agent, ctx, out, input)
	}
}

func openCalendar() (*calendar.Store, error) {
	store, err := calendar.Open(cfg.Calendar.Driver, cfg.Calendar.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open calendar: %w", err)
	}
	return store, nil
}
