// Package config loads migrationgen settings from defaults, an optional
// YAML file and MIGRATIONGEN_* environment variables.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v2"
)

// EnvPrefix prefixes every environment variable read by Load
const EnvPrefix = "MIGRATIONGEN_"

// Config represents the application configuration
type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	Generation GenerationConfig `yaml:"generation"`
	Output     OutputConfig     `yaml:"output"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// DatabaseConfig represents the source database
type DatabaseConfig struct {
	URL    string `yaml:"url"    env:"DATABASE_URL"`
	Schema string `yaml:"schema" env:"DATABASE_SCHEMA"` // PostgreSQL and SQL Server schema
	Name   string `yaml:"name"   env:"DATABASE_NAME"`   // overrides the database named in the URL
}

// GenerationConfig controls which tables are generated and how
type GenerationConfig struct {
	Tables           []string `yaml:"tables"             env:"TABLES"`
	Ignore           []string `yaml:"ignore"             env:"IGNORE"`
	IgnoreIndexNames bool     `yaml:"ignore_index_names" env:"IGNORE_INDEX_NAMES"`
	Concurrency      int      `yaml:"concurrency"        env:"CONCURRENCY"`
}

// OutputConfig represents where and how migrations are written
type OutputConfig struct {
	Dir    string `yaml:"dir"    env:"OUTPUT_DIR"`
	File   string `yaml:"file"   env:"OUTPUT_FILE"`
	Format string `yaml:"format" env:"OUTPUT_FORMAT"` // php, text, markdown
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"`  // debug, info, warn, error
	Format string `yaml:"format" env:"LOG_FORMAT"` // text, json
}

// Default returns the configuration used when nothing else is set
func Default() *Config {
	return &Config{
		Generation: GenerationConfig{
			Ignore:      []string{"migrations"},
			Concurrency: 4,
		},
		Output: OutputConfig{
			Format: "php",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (when
// path is not empty) and the environment, in that order of precedence.
// The result is not validated; callers layer their own overrides on top
// and call Validate afterwards.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	return cfg, nil
}

// loadFile merges the YAML file at path into cfg. Keys missing from the
// file keep their current values.
func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// Validate checks the configuration for common errors
func (c *Config) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	validLogFormats := map[string]bool{"text": true, "json": true}
	if !validLogFormats[strings.ToLower(c.Logging.Format)] {
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Logging.Format)
	}

	validOutputFormats := map[string]bool{"php": true, "text": true, "markdown": true}
	if !validOutputFormats[c.Output.Format] {
		return fmt.Errorf("invalid output format: %s (must be php, text, or markdown)", c.Output.Format)
	}

	if c.Output.Dir != "" && c.Output.File != "" {
		return fmt.Errorf("output dir and output file cannot be used together")
	}

	if c.Generation.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive: %d", c.Generation.Concurrency)
	}

	return nil
}
