package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port        string
	Environment string

	// Database. Postgres URLs (postgres://...) use the postgres driver,
	// anything else is treated as a SQLite file path.
	DatabaseURL string

	// Storage
	StoragePath string

	// Background Workers
	WorkerCount int

	// CORS
	AllowedOrigins []string

	// Billing
	// Day of month on which every monthly obligation falls due.
	BillingDueDay int
	// Daily late-fee rate applied to an obligation's principal once past due.
	BillingDailyLateFeeRate decimal.Decimal

	// Sentry
	SentryDSN string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		DatabaseURL:    getEnv("DATABASE_URL", "toro.db"),
		StoragePath:    getEnv("STORAGE_PATH", "./storage"),
		WorkerCount:    getEnvAsInt("WORKER_COUNT", 5),
		AllowedOrigins: getEnvAsSlice("ALLOWED_ORIGINS", []string{"*"}),
		BillingDueDay:  getEnvAsInt("BILLING_DUE_DAY", 10),
		SentryDSN:      getEnv("SENTRY_DSN", ""),
	}

	rate, err := decimal.NewFromString(getEnv("BILLING_DAILY_LATE_FEE_RATE", "0.005"))
	if err != nil {
		return nil, fmt.Errorf("invalid BILLING_DAILY_LATE_FEE_RATE: %w", err)
	}
	if rate.IsNegative() {
		return nil, fmt.Errorf("BILLING_DAILY_LATE_FEE_RATE must not be negative")
	}
	cfg.BillingDailyLateFeeRate = rate

	if cfg.BillingDueDay < 1 || cfg.BillingDueDay > 28 {
		return nil, fmt.Errorf("BILLING_DUE_DAY must be between 1 and 28, got %d", cfg.BillingDueDay)
	}

	return cfg, nil
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as integer
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsSlice reads an environment variable as comma-separated slice
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
