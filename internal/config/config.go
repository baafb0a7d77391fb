package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port     string
	Env      string
	LogLevel string

	MongoURI  string
	MongoDB   string
	RedisAddr string

	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration

	AdminEmails []string
	CORSOrigins []string

	RateLimitWindow time.Duration
	RateLimitMax    int
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		Port:          fallback(os.Getenv("PORT"), "8080"),
		Env:           fallback(os.Getenv("APP_ENV"), "development"),
		LogLevel:      fallback(os.Getenv("LOG_LEVEL"), "info"),
		MongoURI:      strings.TrimSpace(os.Getenv("MONGO_URI")),
		MongoDB:       fallback(os.Getenv("MONGO_DB"), "blog-db"),
		RedisAddr:     fallback(os.Getenv("REDIS_ADDR"), "localhost:6379"),
		AccessSecret:  strings.TrimSpace(os.Getenv("JWT_ACCESS_SECRET")),
		RefreshSecret: strings.TrimSpace(os.Getenv("JWT_REFRESH_SECRET")),
		AdminEmails:   parseCSV(os.Getenv("ADMIN_EMAILS")),
		CORSOrigins:   parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),
	}

	cfg.AccessTTL = parseDuration(os.Getenv("ACCESS_TOKEN_TTL"), 15*time.Minute)
	cfg.RefreshTTL = parseDuration(os.Getenv("REFRESH_TOKEN_TTL"), 7*24*time.Hour)
	cfg.RateLimitWindow = parseDuration(os.Getenv("RATE_LIMIT_WINDOW"), time.Minute)

	maxRequests := fallback(os.Getenv("RATE_LIMIT_MAX"), "60")
	if n, err := strconv.Atoi(maxRequests); err == nil && n > 0 {
		cfg.RateLimitMax = n
	} else {
		cfg.RateLimitMax = 60
	}

	if cfg.MongoURI == "" {
		return Config{}, errors.New("MONGO_URI is required")
	}
	if cfg.AccessSecret == "" {
		return Config{}, errors.New("JWT_ACCESS_SECRET is required")
	}
	if cfg.RefreshSecret == "" {
		return Config{}, errors.New("JWT_REFRESH_SECRET is required")
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// IsProduction reports whether the app runs with production hardening:
// Secure cookies and suppressed error detail in responses.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// IsAdminEmail reports whether the email may self-register as admin.
func (c Config) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, allowed := range c.AdminEmails {
		if strings.ToLower(allowed) == email {
			return true
		}
	}
	return false
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func parseDuration(value string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && d > 0 {
		return d
	}
	return def
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
