// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir         string // Base directory for the quote cache database
	Port            int
	LogLevel        string
	DevMode         bool
	FundUniverse    string        // "core" (6 funds) or "extended" (7 funds, adds VCORX)
	QuoteCacheTTL   time.Duration // How long fetched quotes stay fresh
	RefreshSchedule string        // Cron spec for the quote refresh job; empty disables it
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("LADDER_DATA_DIR", "")
	if dataDir == "" {
		dataDir = filepath.Join(os.TempDir(), "financial-ladder")
	}
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	port, err := strconv.Atoi(getEnv("LADDER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid LADDER_PORT: %w", err)
	}

	ttl, err := time.ParseDuration(getEnv("LADDER_QUOTE_TTL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid LADDER_QUOTE_TTL: %w", err)
	}

	return &Config{
		DataDir:         absDataDir,
		Port:            port,
		LogLevel:        getEnv("LADDER_LOG_LEVEL", "info"),
		DevMode:         getEnv("LADDER_DEV_MODE", "false") == "true",
		FundUniverse:    getEnv("LADDER_FUND_UNIVERSE", "core"),
		QuoteCacheTTL:   ttl,
		RefreshSchedule: getEnv("LADDER_REFRESH_SCHEDULE", "0 */15 * * * *"),
	}, nil
}

// CacheDBPath returns the quote cache database location.
func (c *Config) CacheDBPath() string {
	return filepath.Join(c.DataDir, "client_data.db")
}

// getEnv retrieves an environment variable value, returning a fallback if
// the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
