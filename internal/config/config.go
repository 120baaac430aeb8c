package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = "fileagent.yaml"

// Config holds all fileagent configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// LLM configuration
	LLM LLMConfig `yaml:"llm"`

	// Open-Meteo fetch and export settings
	Weather WeatherConfig `yaml:"weather"`

	// Sales report settings
	Sales SalesConfig `yaml:"sales"`

	// Retrieval source
	Knowledge KnowledgeConfig `yaml:"knowledge"`

	// Calendar persistence for agent patterns
	Calendar CalendarConfig `yaml:"calendar"`

	// Agent pattern thresholds
	Patterns PatternsConfig `yaml:"patterns"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`

	// Metrics
	Metrics MetricsConfig `yaml:"metrics"`
}

// WeatherConfig configures the Open-Meteo client and its exports.
type WeatherConfig struct {
	BaseURL   string  `yaml:"base_url"`
	Location  string  `yaml:"location"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	Days      int     `yaml:"days"`
	CSVPath   string  `yaml:"csv_path"`
	ChartPath string  `yaml:"chart_path"`
	Timeout   string  `yaml:"timeout"`
}

// SalesConfig configures the sales analyzer.
type SalesConfig struct {
	Input     string `yaml:"input"` // path or doublestar glob
	OutputDir string `yaml:"output_dir"`
	Debounce  string `yaml:"debounce"`
}

// KnowledgeConfig configures the retrieval source.
type KnowledgeConfig struct {
	Source string `yaml:"source"` // .json file, text file, or http(s) URL
	TopK   int    `yaml:"top_k"`  // 0 returns the whole base
}

// CalendarConfig configures calendar persistence.
type CalendarConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Driver       string `yaml:"driver"` // sqlite (pure Go) or sqlite3 (cgo)
	DatabasePath string `yaml:"database_path"`
}

// PatternsConfig configures agent workflow gates.
type PatternsConfig struct {
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
}

// MetricsConfig configures the Prometheus textfile dump.
type MetricsConfig struct {
	TextfilePath string `yaml:"textfile_path"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "fileagent",
		Version: "0.1.0",

		LLM: DefaultLLMConfig(),

		Weather: WeatherConfig{
			BaseURL:   "https://api.open-meteo.com/v1",
			Location:  "Paris",
			Latitude:  48.8566,
			Longitude: 2.3522,
			Days:      7,
			CSVPath:   "data/paris_weather.csv",
			ChartPath: "weather_chart.png",
			Timeout:   "30s",
		},

		Sales: SalesConfig{
			Input:     "data/sales.csv",
			OutputDir: "output",
			Debounce:  "500ms",
		},

		Knowledge: KnowledgeConfig{
			Source: "knowledge.json",
		},

		Calendar: CalendarConfig{
			Enabled:      true,
			Driver:       "sqlite",
			DatabasePath: "data/calendar.db",
		},

		Patterns: PatternsConfig{
			ConfidenceThreshold: 0.7,
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file.
// A missing file yields defaults; a .env file next to the working directory is
// loaded before environment overrides are applied.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := LoadDotEnv(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// defaults
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// LoadDotEnv loads .env files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	// LLM API key from environment (later keys win)
	if key := os.Getenv("GROQ_API_KEY"); key != "" {
		c.LLM.APIKey = key
		if c.LLM.Provider == "" {
			c.LLM.Provider = ProviderGroq
		}
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" && os.Getenv("GROQ_API_KEY") == "" {
		c.LLM.APIKey = key
		c.LLM.Provider = ProviderOpenAI
	}

	if model := os.Getenv("FILEAGENT_MODEL"); model != "" {
		c.LLM.Model = model
	}
	if url := os.Getenv("FILEAGENT_BASE_URL"); url != "" {
		c.LLM.BaseURL = url
	}
	if engine := os.Getenv("FILEAGENT_ENGINE"); engine != "" {
		c.LLM.Engine = engine
	}

	if path := os.Getenv("FILEAGENT_DB"); path != "" {
		c.Calendar.DatabasePath = path
	}
	if src := os.Getenv("FILEAGENT_KNOWLEDGE"); src != "" {
		c.Knowledge.Source = src
	}
}

// GetWeatherTimeout returns the Open-Meteo timeout as a duration.
func (c *Config) GetWeatherTimeout() time.Duration {
	d, err := time.ParseDuration(c.Weather.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetSalesDebounce returns the watcher debounce window.
func (c *Config) GetSalesDebounce() time.Duration {
	d, err := time.ParseDuration(c.Sales.Debounce)
	if err != nil || d <= 0 {
		return 500 * time.Millisecond
	}
	return d
}

// ValidDrivers lists the supported calendar database drivers.
var ValidDrivers = []string{"sqlite", "sqlite3"}

// Validate validates the configuration sections that do not need the LLM.
func (c *Config) Validate() error {
	if c.Patterns.ConfidenceThreshold < 0 || c.Patterns.ConfidenceThreshold > 1 {
		return fmt.Errorf("patterns.confidence_threshold must be within [0, 1], got %v", c.Patterns.ConfidenceThreshold)
	}
	if c.Calendar.Enabled && !contains(ValidDrivers, c.Calendar.Driver) {
		return fmt.Errorf("invalid calendar driver: %s (valid: %v)", c.Calendar.Driver, ValidDrivers)
	}
	if c.Weather.Days <= 0 {
		return fmt.Errorf("weather.days must be positive, got %d", c.Weather.Days)
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
