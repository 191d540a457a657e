package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the application
type Config struct {
	Port             string
	AllowedOrigins   []string
	LogLevel         string
	Environment      string
	DatabaseURL      string // empty selects the in-memory store
	RedisURL         string // empty disables the vote lock and cross-instance notifications
	JWTSecret        string
	TokenTTL         time.Duration
	AdminPassword    string
	VotingClearDelay time.Duration
	VoteLockTTL      time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	tokenTTL, err := getDurationEnv("TOKEN_TTL", 12*time.Hour)
	if err != nil {
		return nil, err
	}
	clearDelay, err := getDurationEnv("VOTING_CLEAR_DELAY", 10*time.Second)
	if err != nil {
		return nil, err
	}
	lockTTL, err := getDurationEnv("VOTE_LOCK_TTL", 5*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		AllowedOrigins:   parseOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		Environment:      getEnv("ENVIRONMENT", "development"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		RedisURL:         getEnv("REDIS_URL", ""),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		TokenTTL:         tokenTTL,
		AdminPassword:    getEnv("ADMIN_PASSWORD", ""),
		VotingClearDelay: clearDelay,
		VoteLockTTL:      lockTTL,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that have no safe default
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		if c.IsProduction() {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		c.JWTSecret = "dev-secret-change-me"
	}
	if c.AdminPassword == "" && c.IsProduction() {
		return fmt.Errorf("ADMIN_PASSWORD is required in production")
	}
	if c.VotingClearDelay < 0 {
		return fmt.Errorf("VOTING_CLEAR_DELAY must not be negative")
	}
	return nil
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getDurationEnv parses a Go duration string such as "10s"
func getDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}

// parseOrigins parses comma-separated origins into a slice
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
