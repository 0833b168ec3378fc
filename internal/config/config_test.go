package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/quantaplan/internal/log"
	"github.com/dshills/quantaplan/internal/testutil"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 512, cfg.Decode.MaxExpressionDepth)
	assert.Equal(t, 256, cfg.Decode.MaxPlanDepth)
	assert.False(t, cfg.Explain.ShowOIDs)
	assert.True(t, cfg.Explain.QuoteIdentifiers)
}

func TestLoadFromFile(t *testing.T) {
	dir, cleanup := testutil.TempDir(t)
	defer cleanup()

	t.Run("JSON", func(t *testing.T) {
		path := testutil.WriteFile(t, dir, "plantool.json", []byte(`{
			"log_level": "DEBUG",
			"decode": {"max_plan_depth": 16},
			"explain": {"show_oids": true}
		}`))

		cfg, err := LoadFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "text", cfg.LogFormat)
		assert.Equal(t, 16, cfg.Decode.MaxPlanDepth)
		assert.Equal(t, 512, cfg.Decode.MaxExpressionDepth, "unset keys keep their defaults")
		assert.True(t, cfg.Explain.ShowOIDs)
		assert.True(t, cfg.Explain.QuoteIdentifiers)
	})

	t.Run("YAML", func(t *testing.T) {
		path := testutil.WriteFile(t, dir, "plantool.yaml", []byte(
			"log_format: json\n"+
				"decode:\n"+
				"  max_expression_depth: 64\n"+
				"explain:\n"+
				"  quote_identifiers: false\n"))

		cfg, err := LoadFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, "json", cfg.LogFormat)
		assert.Equal(t, 64, cfg.Decode.MaxExpressionDepth)
		assert.Equal(t, 256, cfg.Decode.MaxPlanDepth)
		assert.False(t, cfg.Explain.QuoteIdentifiers)
	})

	t.Run("Errors", func(t *testing.T) {
		_, err := LoadFromFile(dir + "/missing.json")
		assert.Error(t, err)

		bad := testutil.WriteFile(t, dir, "bad.json", []byte(`{"log_level":`))
		_, err = LoadFromFile(bad)
		assert.ErrorContains(t, err, "failed to parse")

		invalid := testutil.WriteFile(t, dir, "invalid.yml", []byte("decode:\n  max_plan_depth: 0\n"))
		_, err = LoadFromFile(invalid)
		assert.ErrorContains(t, err, "max plan depth")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{"log level", func(c *Config) { c.LogLevel = "verbose" }, "invalid log level"},
		{"log format", func(c *Config) { c.LogFormat = "xml" }, "invalid log format"},
		{"expression depth", func(c *Config) { c.Decode.MaxExpressionDepth = 0 }, "max expression depth"},
		{"expression depth above builder limit", func(c *Config) { c.Decode.MaxExpressionDepth = 513 }, "between 1 and 512"},
		{"plan depth", func(c *Config) { c.Decode.MaxPlanDepth = -1 }, "max plan depth"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.errMsg)
		})
	}
}

func TestLoadFromFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LoadFromFlags("", "")
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)

	cfg.LoadFromFlags("warn", "json")
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestConversions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Decode.MaxPlanDepth = 8
	cfg.Explain.ShowOIDs = true

	logger := log.Discard()
	opts := cfg.ToDecodeOptions(logger)
	assert.Equal(t, 8, opts.MaxPlanDepth)
	assert.Equal(t, 512, opts.MaxExpressionDepth)
	assert.Equal(t, logger, opts.Logger)

	explain := cfg.ToExplainOptions()
	assert.True(t, explain.ShowOIDs)
	assert.True(t, explain.QuoteIdentifiers)

	assert.Equal(t, log.Config{Level: "info", Format: "text"}, cfg.ToLogConfig())
}
