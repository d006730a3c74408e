// Package config loads application configuration from environment variables,
// with optional .env file support.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/statico/quickrag/internal/chunker"
	"github.com/statico/quickrag/pkg/types"
)

// Config holds all configuration for the application.
type Config struct {
	CorpusDir  string
	DBPath     string
	Extensions []string

	Strategy      string
	TargetTokens  int
	OverlapTokens int
	MinUnitChars  int

	BatchMaxUnits  int
	BatchMaxChars  int
	BatchMaxTokens int

	Workers         int
	RetryDepth      int
	EmbedRatePerSec float64
}

// Defaults applied when environment variables are unset.
const (
	DefaultDBPath        = "./data/quickrag.db"
	DefaultExtensions    = ".md,.txt"
	DefaultTargetTokens  = 400
	DefaultOverlapTokens = 40
	DefaultBatchMaxUnits = 64
	DefaultRetryDepth    = 3
)

// Load reads configuration from environment variables and returns a Config
// struct. It applies defaults for optional fields and validates required
// fields. If a .env file exists in the current directory or an ancestor
// directory, it is loaded automatically. Environment variables already set
// take precedence over .env file values.
func Load() (*Config, error) {
	// Try to load .env, walking up a few directories to find it
	_ = godotenv.Load()
	if wd, err := os.Getwd(); err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	cfg := &Config{
		CorpusDir:  getEnv("QUICKRAG_CORPUS_DIR", ""),
		DBPath:     getEnv("QUICKRAG_DB_PATH", DefaultDBPath),
		Strategy:   getEnv("QUICKRAG_CHUNK_STRATEGY", chunker.StrategyRecursive),
		Extensions: splitExtensions(getEnv("QUICKRAG_EXTENSIONS", DefaultExtensions)),
	}

	var err error
	if cfg.TargetTokens, err = getEnvInt("QUICKRAG_TARGET_TOKENS", DefaultTargetTokens); err != nil {
		return nil, err
	}
	if cfg.OverlapTokens, err = getEnvInt("QUICKRAG_OVERLAP_TOKENS", DefaultOverlapTokens); err != nil {
		return nil, err
	}
	if cfg.MinUnitChars, err = getEnvInt("QUICKRAG_MIN_UNIT_CHARS", 0); err != nil {
		return nil, err
	}
	if cfg.BatchMaxUnits, err = getEnvInt("QUICKRAG_BATCH_MAX_UNITS", DefaultBatchMaxUnits); err != nil {
		return nil, err
	}
	if cfg.BatchMaxChars, err = getEnvInt("QUICKRAG_BATCH_MAX_CHARS", 0); err != nil {
		return nil, err
	}
	if cfg.BatchMaxTokens, err = getEnvInt("QUICKRAG_BATCH_MAX_TOKENS", 0); err != nil {
		return nil, err
	}
	if cfg.Workers, err = getEnvInt("QUICKRAG_WORKERS", 0); err != nil {
		return nil, err
	}
	if cfg.RetryDepth, err = getEnvInt("QUICKRAG_RETRY_DEPTH", DefaultRetryDepth); err != nil {
		return nil, err
	}

	rateStr := getEnv("QUICKRAG_EMBED_RATE_PER_SEC", "")
	if rateStr != "" {
		rate, err := strconv.ParseFloat(rateStr, 64)
		if err != nil || rate <= 0 {
			return nil, fmt.Errorf("%w: QUICKRAG_EMBED_RATE_PER_SEC must be a positive number", types.ErrConfiguration)
		}
		cfg.EmbedRatePerSec = rate
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Create the database directory if it doesn't exist
	if dir := filepath.Dir(cfg.DBPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.TargetTokens <= 0 {
		return fmt.Errorf("%w: target tokens must be positive", types.ErrConfiguration)
	}
	if c.OverlapTokens < 0 {
		return fmt.Errorf("%w: overlap tokens cannot be negative", types.ErrConfiguration)
	}
	if c.OverlapTokens >= c.TargetTokens {
		return fmt.Errorf("%w: overlap tokens must be less than target tokens", types.ErrConfiguration)
	}
	if len(c.Extensions) == 0 {
		return fmt.Errorf("%w: at least one file extension is required", types.ErrConfiguration)
	}
	return nil
}

// splitExtensions parses a comma-separated extension list, normalizing to a
// leading dot and lower case.
func splitExtensions(s string) []string {
	var exts []string
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		if !strings.HasPrefix(part, ".") {
			part = "." + part
		}
		exts = append(exts, part)
	}
	return exts
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt parses an integer environment variable with a default.
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer: %v", types.ErrConfiguration, key, err)
	}
	return n, nil
}
