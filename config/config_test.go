package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyhost2/Strong-gradient/logging"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "bolt://localhost:7687", cfg.Neo4jURI)
	assert.Equal(t, "qwen2.5", cfg.PrimaryModel)
	assert.Equal(t, "deepseek-r1", cfg.SecondaryModel)
	assert.Equal(t, 0.7, cfg.Temperature)
	assert.Equal(t, 1024, cfg.MaxTokens)
	assert.Equal(t, 5, cfg.ContextLimit)
	assert.Equal(t, 2*time.Minute, cfg.GenerationTimeout)
	assert.Equal(t, logging.LogLevelInfo, cfg.LogLevel)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("NEO4J_URI", "bolt://graph:7687")
	t.Setenv("GRAPHRAG_MODEL_PRIMARY", "llama3")
	t.Setenv("GRAPHRAG_TEMPERATURE", "0.2")
	t.Setenv("GRAPHRAG_CONTEXT_LIMIT", "9")
	t.Setenv("GRAPHRAG_GENERATION_TIMEOUT", "30s")
	t.Setenv("GRAPHRAG_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "bolt://graph:7687", cfg.Neo4jURI)
	assert.Equal(t, "llama3", cfg.PrimaryModel)
	assert.Equal(t, 0.2, cfg.Temperature)
	assert.Equal(t, 9, cfg.ContextLimit)
	assert.Equal(t, 30*time.Second, cfg.GenerationTimeout)
	assert.Equal(t, logging.LogLevelDebug, cfg.LogLevel)
}

func TestLoad_RejectsMalformedValues(t *testing.T) {
	t.Setenv("GRAPHRAG_TEMPERATURE", "hot")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsUnknownLogLevel(t *testing.T) {
	t.Setenv("GRAPHRAG_LOG_LEVEL", "verbose")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty uri", func(c *Config) { c.Neo4jURI = "" }},
		{"missing model", func(c *Config) { c.SecondaryModel = "" }},
		{"temperature too high", func(c *Config) { c.Temperature = 2.5 }},
		{"negative temperature", func(c *Config) { c.Temperature = -0.1 }},
		{"zero max tokens", func(c *Config) { c.MaxTokens = 0 }},
		{"zero context limit", func(c *Config) { c.ContextLimit = 0 }},
		{"negative timeout", func(c *Config) { c.GenerationTimeout = -time.Second }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := Default()
	assert.NoError(t, cfg.Validate())
}

func TestSampling(t *testing.T) {
	cfg := Default()
	opts := cfg.Sampling()
	assert.Equal(t, cfg.Temperature, opts.Temperature)
	assert.Equal(t, cfg.MaxTokens, opts.MaxTokens)
}
