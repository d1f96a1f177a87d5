package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port           string
	Env            string
	DatabaseURL    string
	RedisURL       string
	JWTSecret      string
	FrontendURL    string
	LogFile        string
	TokenTTL       time.Duration
	TrustedProxies []string
	Email          EmailConfig
}

// Production switches the cookie policy: Secure + SameSite=None for the
// cross-origin frontend, Lax over plain HTTP in development.
func (c Config) Production() bool {
	return c.Env == "production"
}

type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Secure   bool
}

func (e EmailConfig) Enabled() bool {
	return e.Host != "" && e.Port != 0 && e.From != ""
}

func Load() (Config, error) {
	clean := func(val string) string {
		return strings.Trim(val, "\"' \t\r\n")
	}

	rawPort := strings.Trim(getenvDefault("SMTP_PORT", "587"), "\"' ")
	emailPort, err := strconv.Atoi(rawPort)
	if err != nil {
		emailPort = 587
	}

	cfg := Config{
		Port:           getenvDefault("PORT", "3005"),
		Env:            getenvDefault("APP_ENV", "development"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       getenvDefault("REDIS_URL", "redis://localhost:6379"),
		JWTSecret:      os.Getenv("JWT_SECRET_KEY"),
		FrontendURL:    getenvDefault("FRONTEND_URL", "http://localhost:3000"),
		LogFile:        getenvDefault("LOG_FILE", "logs/server.log"),
		TokenTTL:       120 * time.Minute,
		TrustedProxies: parseList(os.Getenv("TRUSTED_PROXIES")),
	}

	cfg.Email = EmailConfig{
		Host:     clean(os.Getenv("SMTP_HOST")),
		Port:     emailPort,
		Username: clean(os.Getenv("SMTP_USER")),
		Password: clean(os.Getenv("SMTP_PASSWORD")),
		From:     clean(os.Getenv("SMTP_FROM_EMAIL")),
		Secure:   parseBool(os.Getenv("SMTP_SECURE")),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET_KEY is required")
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func parseBool(val string) bool {
	if val == "" {
		return false
	}
	val = strings.ToLower(strings.Trim(val, "\"' "))
	return val == "1" || val == "true" || val == "yes"
}

func parseList(val string) []string {
	parts := strings.Split(val, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
