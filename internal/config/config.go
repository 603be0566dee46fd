// Package config provides configuration loading and validation for the
// resume builder service.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Config holds the service configuration, loaded from environment
// variables. BackendURL is the only required value; everything else has a
// sensible default.
type Config struct {
	Port int

	// BackendURL is the base URL of the resume persistence backend.
	BackendURL string
	// BackendTimeout bounds each backend request.
	BackendTimeout time.Duration

	// RedisURL enables the draft cache when set. Empty disables drafts.
	RedisURL string
	// DraftTTL is how long unsaved work survives in the draft cache.
	DraftTTL time.Duration

	// SessionTTL is how long an idle editor session is kept before the
	// cleanup pass drops it.
	SessionTTL time.Duration
}

// Load reads the configuration from environment variables, applying
// defaults for anything unset.
func Load() *Config {
	return &Config{
		Port:           getEnvInt("PORT", 8080),
		BackendURL:     getEnvString("BACKEND_URL", ""),
		BackendTimeout: getEnvDuration("BACKEND_TIMEOUT", 30*time.Second),
		RedisURL:       getEnvString("REDIS_URL", ""),
		DraftTTL:       getEnvDuration("DRAFT_TTL", 14*24*time.Hour),
		SessionTTL:     getEnvDuration("SESSION_TTL", 2*time.Hour),
	}
}

// Validate checks that the configuration has usable values.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config error: invalid port %d", c.Port)
	}
	if c.BackendURL == "" {
		return fmt.Errorf("config error: BACKEND_URL is required")
	}
	parsed, err := url.Parse(c.BackendURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("config error: BACKEND_URL is not a valid URL: %s", c.BackendURL)
	}
	if c.BackendTimeout <= 0 {
		return fmt.Errorf("config error: BACKEND_TIMEOUT must be positive")
	}
	if c.DraftTTL <= 0 {
		return fmt.Errorf("config error: DRAFT_TTL must be positive")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("config error: SESSION_TTL must be positive")
	}
	return nil
}

// getEnvString gets an environment variable as a string with a default value.
func getEnvString(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as an integer with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDuration gets an environment variable as a duration with a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
