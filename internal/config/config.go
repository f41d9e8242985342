// Package config contains everything related to configuration
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	// AnalyticsBaseURL is the root of the analytics backend.
	AnalyticsBaseURL string

	// AnalyticsToken authorizes both metric endpoints. An empty token is
	// not a startup error; the backend rejects the first fetch instead.
	AnalyticsToken string

	// EnvPath is the .env file that was loaded, if any. The env watcher
	// uses it to pick up token rotations at runtime.
	EnvPath string

	GenerationsRefreshInterval time.Duration
	ModelsRefreshInterval      time.Duration
}

// Default values
const (
	defaultBaseURL                    = "https://analytics.genboard.dev"
	defaultGenerationsRefreshInterval = 30 * time.Second
	defaultModelsRefreshInterval      = 60 * time.Second
)

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	// Try loading .env from multiple locations
	var envPath string
	for _, path := range getEnvPaths() {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			envPath = path
			break
		}
	}

	cfg := &Config{
		AnalyticsBaseURL:           getEnvString("ANALYTICS_BASE_URL", defaultBaseURL),
		AnalyticsToken:             os.Getenv("ANALYTICS_TOKEN"),
		EnvPath:                    envPath,
		GenerationsRefreshInterval: getEnvDuration("GENERATIONS_REFRESH_INTERVAL", defaultGenerationsRefreshInterval),
		ModelsRefreshInterval:      getEnvDuration("MODELS_REFRESH_INTERVAL", defaultModelsRefreshInterval),
	}

	return cfg, nil
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	// Home directory locations
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "genboard", ".env"),
			filepath.Join(home, ".genboard", ".env"),
		)
	}

	return paths
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// RedactedToken returns the token masked for display.
func (c *Config) RedactedToken() string {
	if c.AnalyticsToken == "" {
		return "(not set)"
	}
	if len(c.AnalyticsToken) <= 4 {
		return "****"
	}
	return c.AnalyticsToken[:2] + "****" + c.AnalyticsToken[len(c.AnalyticsToken)-2:]
}
