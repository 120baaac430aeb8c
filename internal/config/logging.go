package config

import "fileagent/internal/logging"

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level      string          `yaml:"level"`      // debug, info, warn, error
	Format     string          `yaml:"format"`     // console, json
	File       string          `yaml:"file"`       // optional extra sink
	Categories map[string]bool `yaml:"categories"` // Per-category toggles
}

// ToLogging converts the YAML section into the logging package config.
// A non-empty levelOverride (e.g. from --verbose) wins over the file.
func (c LoggingConfig) ToLogging(levelOverride string) logging.Config {
	level := c.Level
	if levelOverride != "" {
		level = levelOverride
	}
	return logging.Config{
		Level:      level,
		Format:     c.Format,
		File:       c.File,
		Categories: c.Categories,
	}
}
