// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// LogFormat is "json" (default) or "text" for colored console output.
	LogFormat string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// MaxBodyBytes caps request bodies. Defaults to 1 MiB.
	MaxBodyBytes int64

	// APIRateLimit is the per-IP request budget per minute on /api.
	// 0 disables it. Defaults to 600.
	APIRateLimit int

	// GeocoderURL is the base URL of the Nominatim-compatible geocoder.
	GeocoderURL string

	// GeocoderUserAgent identifies this server to the geocoder, as its usage
	// policy requires.
	GeocoderUserAgent string

	// GeocoderLanguage is sent as accept-language. Defaults to "ko".
	GeocoderLanguage string

	// GeocoderMinInterval is the minimum spacing between upstream searches
	// across the whole process. Defaults to 1.2s.
	GeocoderMinInterval time.Duration

	// MigrateOnStart applies pending migrations before serving. Defaults to true.
	MigrateOnStart bool
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set and any
// variables that do not parse.
func Load() (Config, error) {
	cfg := Config{
		Port:              getEnv("PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "json"),
		CORSOrigins:       splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		GeocoderURL:       getEnv("GEOCODER_URL", "https://nominatim.openstreetmap.org"),
		GeocoderUserAgent: getEnv("GEOCODER_USER_AGENT", "couplemap/1.0 (+https://github.com/couplemap/couplemap)"),
		GeocoderLanguage:  getEnv("GEOCODER_LANGUAGE", "ko"),
	}

	var missing, invalid []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	var err error
	if cfg.MaxBodyBytes, err = strconv.ParseInt(getEnv("MAX_BODY_BYTES", "1048576"), 10, 64); err != nil || cfg.MaxBodyBytes < 0 {
		invalid = append(invalid, "MAX_BODY_BYTES")
	}
	if cfg.APIRateLimit, err = strconv.Atoi(getEnv("API_RATE_LIMIT", "600")); err != nil || cfg.APIRateLimit < 0 {
		invalid = append(invalid, "API_RATE_LIMIT")
	}
	if cfg.GeocoderMinInterval, err = time.ParseDuration(getEnv("GEOCODER_MIN_INTERVAL", "1.2s")); err != nil || cfg.GeocoderMinInterval <= 0 {
		invalid = append(invalid, "GEOCODER_MIN_INTERVAL")
	}
	if cfg.MigrateOnStart, err = strconv.ParseBool(getEnv("MIGRATE_ON_START", "true")); err != nil {
		invalid = append(invalid, "MIGRATE_ON_START")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
