package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Flat-file stores
	LedgerPath      string
	CredentialsPath string
	CatalogPath     string

	// Session tokens issued after shared-secret login
	SessionSecret string
	SessionTTL    time.Duration

	// Rendered confirmation documents kept in memory
	DocumentCacheSize int
}

// Load reads configuration from environment variables. A .env file is
// honored when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:              getEnv("PORT", "8080"),
		Env:               getEnv("ENV", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LedgerPath:        getEnv("LEDGER_PATH", "reservations.txt"),
		CredentialsPath:   getEnv("CREDENTIALS_PATH", "users.txt"),
		CatalogPath:       getEnv("CATALOG_PATH", "services.txt"),
		SessionSecret:     getEnv("SESSION_SECRET", ""),
		SessionTTL:        getEnvAsDuration("SESSION_TTL", 12*time.Hour),
		DocumentCacheSize: getEnvAsInt("DOCUMENT_CACHE_SIZE", 128),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
