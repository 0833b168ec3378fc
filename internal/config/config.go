package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"github.com/dshills/quantaplan/internal/log"
	"github.com/dshills/quantaplan/internal/sql/expression"
	"github.com/dshills/quantaplan/internal/sql/planner"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config represents the complete plan tool configuration.
type Config struct {
	LogLevel  string `json:"log_level" yaml:"log_level"`
	LogFormat string `json:"log_format" yaml:"log_format"`

	// Decode configuration
	Decode DecodeConfig `json:"decode" yaml:"decode"`

	// Explain configuration
	Explain ExplainConfig `json:"explain" yaml:"explain"`
}

// DecodeConfig bounds the plan documents the tool accepts.
type DecodeConfig struct {
	MaxExpressionDepth int `json:"max_expression_depth" yaml:"max_expression_depth"`
	MaxPlanDepth       int `json:"max_plan_depth" yaml:"max_plan_depth"`
}

// ExplainConfig controls EXPLAIN rendering.
type ExplainConfig struct {
	ShowOIDs         bool `json:"show_oids" yaml:"show_oids"`
	QuoteIdentifiers bool `json:"quote_identifiers" yaml:"quote_identifiers"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Decode: DecodeConfig{
			MaxExpressionDepth: expression.DefaultMaxDepth,
			MaxPlanDepth:       planner.DefaultMaxPlanDepth,
		},
		Explain: ExplainConfig{
			ShowOIDs:         false,
			QuoteIdentifiers: true,
		},
	}
}

// LoadFromFile loads configuration from a JSON or YAML file. The format is
// chosen by extension: .yaml and .yml are YAML, everything else JSON.
func LoadFromFile(path string) (*Config, error) {
	// Start with defaults
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Validate and normalize
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadFromFlags merges command-line flags into the configuration.
func (c *Config) LoadFromFlags(logLevel, logFormat string) {
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	if logFormat != "" {
		c.LogFormat = logFormat
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	c.LogLevel = strings.ToLower(c.LogLevel)
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
		// Valid
	default:
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	c.LogFormat = strings.ToLower(c.LogFormat)
	switch c.LogFormat {
	case "json", "text":
		// Valid
	default:
		return fmt.Errorf("invalid log format: %s", c.LogFormat)
	}

	if c.Decode.MaxExpressionDepth < 1 || c.Decode.MaxExpressionDepth > expression.DefaultMaxDepth {
		return fmt.Errorf("max expression depth must be between 1 and %d", expression.DefaultMaxDepth)
	}
	if c.Decode.MaxPlanDepth < 1 {
		return fmt.Errorf("max plan depth must be at least 1")
	}

	return nil
}

// ToLogConfig converts to log.Config.
func (c *Config) ToLogConfig() log.Config {
	return log.Config{Level: c.LogLevel, Format: c.LogFormat}
}

// ToDecodeOptions converts to planner.DecodeOptions using logger for
// per-node records.
func (c *Config) ToDecodeOptions(logger log.Logger) planner.DecodeOptions {
	return planner.DecodeOptions{
		MaxExpressionDepth: c.Decode.MaxExpressionDepth,
		MaxPlanDepth:       c.Decode.MaxPlanDepth,
		Logger:             logger,
	}
}

// ToExplainOptions converts to planner.ExplainOptions.
func (c *Config) ToExplainOptions() planner.ExplainOptions {
	return planner.ExplainOptions{
		ShowOIDs:         c.Explain.ShowOIDs,
		QuoteIdentifiers: c.Explain.QuoteIdentifiers,
	}
}
