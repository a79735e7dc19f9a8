package config

import (
	"os"
	"strings"
	"time"
)

// Config holds the application configuration
// Note: The composer keeps no database; UI state lives in the session store
type Config struct {
	// Environment
	Environment string
	Port        string

	// External generation service
	GenerationBaseURL string        // Base URL of the lyric generation service
	GenerationTimeout time.Duration // Zero means no client-side timeout

	// Sessions
	SessionSecret string // Key used to sign session cookies
	SessionDir    string // Directory for the filesystem session store ("" = os.TempDir)

	// HTTP
	CORSAllowedOrigins []string

	// Observability
	SentryDSN string // Sentry DSN for error tracking
}

// DefaultSessionSecret signs cookies when SESSION_SECRET is unset; only fit for development
const DefaultSessionSecret = "dev-session-secret-change-me"

func Load() *Config {
	return &Config{
		Environment:        getEnv("ENVIRONMENT", "development"),
		Port:               getEnv("PORT", "8080"),
		GenerationBaseURL:  getEnv("GENERATION_BASE_URL", "http://localhost:5000/lyric_generator/"),
		GenerationTimeout:  getDuration("GENERATION_TIMEOUT", 0),
		SessionSecret:      getEnv("SESSION_SECRET", DefaultSessionSecret),
		SessionDir:         getEnv("SESSION_DIR", ""),
		CORSAllowedOrigins: getList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		SentryDSN:          getEnv("SENTRY_DSN", ""),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

func getList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}

// IsProduction returns true when running in the production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// UsesDefaultSessionSecret reports whether cookies are signed with the development secret
func (c *Config) UsesDefaultSessionSecret() bool {
	return c.SessionSecret == DefaultSessionSecret
}
