package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string
	// Storage
	DatabaseDriver string // "postgres" or "sqlite"
	DatabaseURL    string
	SQLitePath     string
	TablePrefix    string
	// Auth
	AuthJWKSURL  string
	DevUserEmail string // dev-only bypass; ignored outside dev
	// Thumbnails
	LinkPreviewAPIKey string
	LinkPreviewURL    string
	// Logging
	Log LogConfig
}

// LogConfig controls the optional rotating log file
type LogConfig struct {
	File       string // empty = stdout only
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Debug      bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:              getEnv("PORT", "8080"),
		Environment:       env,
		CORSOrigins:       getEnv("CORS_ORIGINS", "http://localhost:3000"),
		DatabaseDriver:    getEnv("DATABASE_DRIVER", getDefaultDriver(env)),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		SQLitePath:        getEnv("SQLITE_PATH", "savesite.db"),
		TablePrefix:       getTablePrefix(env),
		AuthJWKSURL:       getEnv("AUTH_JWKS_URL", ""),
		DevUserEmail:      getEnv("DEV_USER_EMAIL", ""),
		LinkPreviewAPIKey: getEnv("LINKPREVIEW_API_KEY", ""),
		LinkPreviewURL:    getEnv("LINKPREVIEW_URL", "https://api.linkpreview.net"),
		Log: LogConfig{
			File:       getEnv("LOG_FILE", ""),
			MaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 50),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
			MaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 14),
			Debug:      env != "prod",
		},
	}
}

// IsDev reports whether the dev-only shortcuts are allowed
func (c *Config) IsDev() bool {
	return c.Environment == "dev"
}

// AllowedOrigins splits CORS_ORIGINS on commas
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// getDefaultDriver picks sqlite for local development, postgres elsewhere
func getDefaultDriver(env string) string {
	if env == "dev" {
		return "sqlite"
	}
	return "postgres"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return defaultValue
	}
	return n
}
