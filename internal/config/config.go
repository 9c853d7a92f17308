// Package config loads and validates the runtime configuration of the
// enrichment batch from the environment. The configuration is constructed
// once at startup and passed by reference into the orchestrator and the
// lookup client; there is no process-wide mutable state.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is the full configuration surface of one run.
type Config struct {
	// Credential and endpoint of the CNPJá API.
	APIKey  string
	BaseURL string

	// Input/output files and the name of the identifier column.
	InputPath  string
	OutputPath string
	CNPJColumn string

	// Request orchestration.
	MaxRequestsPerMinute int
	StartIndex           int
	RequestTimeout       time.Duration
	RetryMax             int
	RetryMax429          int
	BackoffInitial       time.Duration
	BackoffMax           time.Duration
	PacingDelay          time.Duration

	// Logging.
	LogLevel string
}

// LoadConfig reads the configuration from environment variables, applying
// the documented defaults. Call Validate before using the result.
func LoadConfig() *Config {
	return &Config{
		APIKey:  os.Getenv("CNPJA_API_KEY"),
		BaseURL: getEnv("CNPJA_BASE_URL", "https://api.cnpja.com"),

		InputPath:  getEnv("INPUT_CSV", "CRM.csv"),
		OutputPath: getEnv("OUTPUT_CSV", "CRMdadosatualizados.csv"),
		CNPJColumn: getEnv("CNPJ_COLUMN", "cnpj_normalizadoapi"),

		MaxRequestsPerMinute: getEnvInt("MAX_REQUESTS_PER_MINUTE", 60),
		StartIndex:           getEnvInt("START_INDEX", 0),
		RequestTimeout:       getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		RetryMax:             getEnvInt("RETRY_MAX", 4),
		RetryMax429:          getEnvInt("RETRY_MAX_429", 3),
		BackoffInitial:       getEnvDuration("BACKOFF_INITIAL", time.Second),
		BackoffMax:           getEnvDuration("BACKOFF_MAX", 30*time.Second),
		PacingDelay:          getEnvDuration("PACING_DELAY", 500*time.Millisecond),

		LogLevel: getEnv("LOG_LEVEL", "INFO"),
	}
}

// Validate rejects configurations that must never reach the orchestrator.
// These are the only fatal errors of the program: everything after startup
// is recorded per row instead.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("CNPJA_API_KEY is required")
	}
	if c.InputPath == "" {
		return fmt.Errorf("input path must not be empty")
	}
	if c.OutputPath == "" {
		return fmt.Errorf("output path must not be empty")
	}
	if c.CNPJColumn == "" {
		return fmt.Errorf("identifier column name must not be empty")
	}
	if c.MaxRequestsPerMinute <= 0 {
		return fmt.Errorf("MAX_REQUESTS_PER_MINUTE must be positive, got %d", c.MaxRequestsPerMinute)
	}
	if c.StartIndex < 0 {
		return fmt.Errorf("START_INDEX must not be negative, got %d", c.StartIndex)
	}
	return nil
}

// getEnv returns the environment value or a default when unset.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment value as int or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDuration returns the environment value as time.Duration or a
// default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
