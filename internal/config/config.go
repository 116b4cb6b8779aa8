// Package config loads runtime settings from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Data backends.
const (
	BackendSQLite   = "sqlite"
	BackendSnapshot = "snapshot"
)

var validBackends = []string{BackendSQLite, BackendSnapshot}

// Config holds the settings shared by every settleup command.
type Config struct {
	// Storage
	DataBackend  string
	DBPath       string
	SnapshotPath string

	// Observability
	LogLevel        string
	MetricsTextfile string

	QueryTimeout time.Duration
}

// Load reads a .env file from the working directory when present, then
// builds the config from environment variables.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	return &Config{
		DataBackend:  getEnv("DATA_BACKEND", BackendSQLite),
		DBPath:       getEnv("DB_PATH", "./data/settleup.db"),
		SnapshotPath: getEnv("SNAPSHOT_PATH", ""),

		LogLevel:        getEnv("LOG_LEVEL", "info"),
		MetricsTextfile: getEnv("METRICS_TEXTFILE", ""),

		QueryTimeout: getEnvDuration("QUERY_TIMEOUT", 10*time.Second),
	}
}

// Validate validates the configuration and returns an error listing every
// problem found.
func (c *Config) Validate() error {
	var errors []string

	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case BackendSQLite:
		if c.DBPath == "" {
			errors = append(errors, "database path cannot be empty when using sqlite backend")
		}
	case BackendSnapshot:
		if c.SnapshotPath == "" {
			errors = append(errors, "SNAPSHOT_PATH is required when using snapshot backend")
		} else if _, err := os.Stat(c.SnapshotPath); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("snapshot file does not exist: %s", c.SnapshotPath))
		}
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	if c.QueryTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("invalid query timeout %v: must be positive", c.QueryTimeout))
	} else if c.QueryTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid query timeout %v: must be at most 5 minutes", c.QueryTimeout))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
