// Package config reads the application settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds application configuration
type Config struct {
	File        string // xlsx workbook or directory of CSV files
	Currency    string
	CacheDir    string
	LogLevel    string
	LogPretty   bool
	Workers     int
	Retries     int
	Backoff     time.Duration
	Abort       bool // abort a load on the first provider failure
	Multipliers map[string]decimal.Decimal
	YahooURL    string
	ECBURL      string
	Addr        string
	Model       string
}

// DefaultMultipliers are the unit multipliers of tickers quoted per 100 units.
const DefaultMultipliers = "CSP1.L=100"

// Load reads configuration from environment variables, and from a .env file
// in the working directory if there is one.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		File:      getEnv("IM_FILE", ""),
		Currency:  strings.ToUpper(getEnv("IM_CURRENCY", "EUR")),
		CacheDir:  getEnv("IM_CACHE_DIR", ""),
		LogLevel:  getEnv("IM_LOG_LEVEL", "info"),
		LogPretty: getEnvAsBool("IM_LOG_PRETTY", true),
		Workers:   getEnvAsInt("IM_WORKERS", 4),
		Retries:   getEnvAsInt("IM_RETRIES", 0),
		Backoff:   getEnvAsDuration("IM_RETRY_BACKOFF", time.Second),
		YahooURL:  getEnv("IM_YAHOO_URL", ""),
		ECBURL:    getEnv("IM_ECB_URL", ""),
		Addr:      getEnv("IM_ADDR", ":8080"),
		Model:     getEnv("IM_MODEL", "gemini-2.5-flash"),
	}
	switch policy := getEnv("IM_ON_PROVIDER_ERROR", "skip"); policy {
	case "skip":
	case "abort":
		cfg.Abort = true
	default:
		return nil, fmt.Errorf("IM_ON_PROVIDER_ERROR must be skip or abort, got %q", policy)
	}

	var err error
	if cfg.Multipliers, err = ParseMultipliers(getEnv("IM_MULTIPLIERS", DefaultMultipliers)); err != nil {
		return nil, fmt.Errorf("IM_MULTIPLIERS: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that cannot be fixed later by flags.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("IM_WORKERS must be at least 1, got %d", c.Workers)
	}
	if c.Retries < 0 {
		return fmt.Errorf("IM_RETRIES cannot be negative, got %d", c.Retries)
	}
	return nil
}

// ParseMultipliers parses a list like "CSP1.L=100,ABC=10".
func ParseMultipliers(s string) (map[string]decimal.Decimal, error) {
	res := make(map[string]decimal.Decimal)
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		ticker, value, ok := strings.Cut(item, "=")
		if !ok {
			return nil, fmt.Errorf("invalid multiplier %q want TICKER=VALUE", item)
		}
		m, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil || !m.IsPositive() {
			return nil, fmt.Errorf("invalid multiplier value %q for %s", value, ticker)
		}
		res[strings.ToUpper(strings.TrimSpace(ticker))] = m
	}
	return res, nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
