// Package config loads the deployment configuration from the environment,
// with a best-effort .env file load first. Defaults match the reference
// deployment: a local Neo4j instance and an Ollama server with the qwen2.5
// and deepseek-r1 model pair.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/garyhost2/Strong-gradient/logging"
	"github.com/garyhost2/Strong-gradient/model"
)

// Config holds every tunable of the query orchestrator.
type Config struct {
	// Graph store.
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string
	Neo4jDatabase string

	// Generative backends.
	OllamaHost     string
	PrimaryModel   string
	SecondaryModel string

	// Classifier. When ClassifierModelPath is empty the model is resolved
	// under ModelCacheDir, downloading from ClassifierHFRepo if missing.
	ClassifierModelPath string
	ClassifierHFRepo    string
	ModelCacheDir       string
	OrtLibraryPath      string

	// Sampling and pipeline limits, fixed per deployment.
	Temperature       float64
	MaxTokens         int
	ContextLimit      int
	GenerationTimeout time.Duration

	// Logging.
	LogLevel  logging.LogLevel
	LogFormat string
}

// Default returns the reference deployment configuration.
func Default() Config {
	return Config{
		Neo4jURI:          "bolt://localhost:7687",
		Neo4jUser:         "neo4j",
		Neo4jPassword:     "password",
		OllamaHost:        "http://localhost:11434",
		PrimaryModel:      "qwen2.5",
		SecondaryModel:    "deepseek-r1",
		ClassifierHFRepo:  "ElKulako/cryptobert",
		Temperature:       0.7,
		MaxTokens:         1024,
		ContextLimit:      5,
		GenerationTimeout: 2 * time.Minute,
		LogLevel:          logging.LogLevelInfo,
		LogFormat:         "json",
	}
}

// Load reads configuration from the environment on top of the defaults. A
// .env file in the working directory is loaded first when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	cfg.Neo4jURI = getEnv("NEO4J_URI", cfg.Neo4jURI)
	cfg.Neo4jUser = getEnv("NEO4J_USER", cfg.Neo4jUser)
	cfg.Neo4jPassword = getEnv("NEO4J_PASSWORD", cfg.Neo4jPassword)
	cfg.Neo4jDatabase = getEnv("NEO4J_DATABASE", cfg.Neo4jDatabase)
	cfg.OllamaHost = getEnv("OLLAMA_HOST", cfg.OllamaHost)
	cfg.PrimaryModel = getEnv("GRAPHRAG_MODEL_PRIMARY", cfg.PrimaryModel)
	cfg.SecondaryModel = getEnv("GRAPHRAG_MODEL_SECONDARY", cfg.SecondaryModel)
	cfg.ClassifierModelPath = getEnv("GRAPHRAG_CLASSIFIER_MODEL", cfg.ClassifierModelPath)
	cfg.ClassifierHFRepo = getEnv("GRAPHRAG_CLASSIFIER_REPO", cfg.ClassifierHFRepo)
	cfg.ModelCacheDir = getEnv("GRAPHRAG_MODEL_CACHE", cfg.ModelCacheDir)
	cfg.OrtLibraryPath = getEnv("GRAPHRAG_ORT_LIBRARY", cfg.OrtLibraryPath)
	cfg.LogFormat = getEnv("GRAPHRAG_LOG_FORMAT", cfg.LogFormat)

	var err error
	if cfg.Temperature, err = getFloat("GRAPHRAG_TEMPERATURE", cfg.Temperature); err != nil {
		return Config{}, err
	}
	if cfg.MaxTokens, err = getInt("GRAPHRAG_MAX_TOKENS", cfg.MaxTokens); err != nil {
		return Config{}, err
	}
	if cfg.ContextLimit, err = getInt("GRAPHRAG_CONTEXT_LIMIT", cfg.ContextLimit); err != nil {
		return Config{}, err
	}
	if cfg.GenerationTimeout, err = getDuration("GRAPHRAG_GENERATION_TIMEOUT", cfg.GenerationTimeout); err != nil {
		return Config{}, err
	}
	if raw, ok := os.LookupEnv("GRAPHRAG_LOG_LEVEL"); ok {
		level, err := parseLevel(raw)
		if err != nil {
			return Config{}, err
		}
		cfg.LogLevel = level
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Neo4jURI == "" {
		return fmt.Errorf("neo4j URI must not be empty")
	}
	if c.PrimaryModel == "" || c.SecondaryModel == "" {
		return fmt.Errorf("both backend model names must be set")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature %v out of range [0, 2]", c.Temperature)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", c.MaxTokens)
	}
	if c.ContextLimit <= 0 {
		return fmt.Errorf("context limit must be positive, got %d", c.ContextLimit)
	}
	if c.GenerationTimeout < 0 {
		return fmt.Errorf("generation timeout must not be negative, got %v", c.GenerationTimeout)
	}
	return nil
}

// Sampling returns the per-call sampling options derived from the config.
func (c *Config) Sampling() model.Options {
	return model.Options{Temperature: c.Temperature, MaxTokens: c.MaxTokens}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getFloat(key string, fallback float64) (float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return v, nil
}

func getInt(key string, fallback int) (int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return v, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return v, nil
}

func parseLevel(raw string) (logging.LogLevel, error) {
	switch raw {
	case "debug", "DEBUG":
		return logging.LogLevelDebug, nil
	case "info", "INFO":
		return logging.LogLevelInfo, nil
	case "warn", "WARN":
		return logging.LogLevelWarn, nil
	case "error", "ERROR":
		return logging.LogLevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", raw)
	}
}
