package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// JWT
	JWTSecret string

	// NUMU survey API
	NumuBaseURL string
	NumuAPIKey  string

	// Sync job
	SyncPageLimit       int
	SyncMaxPages        int
	SyncIntervalMinutes int

	// Frontend
	FrontendURL string
}

// ErrNumuNotConfigured is returned when the upstream survey API settings
// are missing. A sync must fail on this before any network call is made.
var ErrNumuNotConfigured = errors.New("NUMU_BASE_URL and NUMU_API_KEY must be set")

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                getEnvOrDefault("PORT", "8080"),
		Env:                 getEnvOrDefault("ENV", "development"),
		DatabaseURL:         mustGetEnv("DATABASE_URL"),
		RedisURL:            mustGetEnv("REDIS_URL"),
		JWTSecret:           mustGetEnv("JWT_SECRET"),
		NumuBaseURL:         getEnvOrDefault("NUMU_BASE_URL", ""),
		NumuAPIKey:          getEnvOrDefault("NUMU_API_KEY", ""),
		SyncPageLimit:       getEnvAsIntOrDefault("SYNC_PAGE_LIMIT", 100),
		SyncMaxPages:        getEnvAsIntOrDefault("SYNC_MAX_PAGES", 1000),
		SyncIntervalMinutes: getEnvAsIntOrDefault("SYNC_INTERVAL_MINUTES", 0),
		FrontendURL:         getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	return cfg
}

// ValidateNumu reports whether the upstream survey API is configured. The
// API server can run read-only without it; the sync job cannot.
func (c *Config) ValidateNumu() error {
	if c.NumuBaseURL == "" || c.NumuAPIKey == "" {
		return ErrNumuNotConfigured
	}
	return nil
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic("required environment variable " + key + " is not set")
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
