// Package config loads server settings from the environment and an optional
// .env file.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "dev-secret-change-me"

// Config holds application configuration.
type Config struct {
	Port         int
	DBPath       string
	JWTSecret    string
	JWTTTL       time.Duration
	LogLevel     string
	CORSOrigin   string
	NotifyBuffer int
}

// LoadConfig loads configuration from environment variables and .env file if present.
// Environment variables take precedence over .env values.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetDefault("PORT", 8080)
	v.SetDefault("DB_PATH", "./data/splitledger.db")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ORIGIN", "*")
	v.SetDefault("NOTIFY_BUFFER", 16)
	v.AutomaticEnv()

	cfg := &Config{
		Port:         v.GetInt("PORT"),
		DBPath:       v.GetString("DB_PATH"),
		JWTSecret:    v.GetString("JWT_SECRET"),
		LogLevel:     v.GetString("LOG_LEVEL"),
		CORSOrigin:   v.GetString("CORS_ORIGIN"),
		NotifyBuffer: v.GetInt("NOTIFY_BUFFER"),
	}

	ttl, err := time.ParseDuration(v.GetString("JWT_TTL"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL %q: %w", v.GetString("JWT_TTL"), err)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("JWT_TTL must be positive, got %s", ttl)
	}
	cfg.JWTTTL = ttl

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid PORT %d", cfg.Port)
	}
	if cfg.NotifyBuffer < 1 {
		return nil, fmt.Errorf("NOTIFY_BUFFER must be at least 1, got %d", cfg.NotifyBuffer)
	}

	if cfg.JWTSecret == "" {
		// !! CHANGE IN PRODUCTION !!
		cfg.JWTSecret = defaultJWTSecret
		slog.Warn("JWT_SECRET not set, using insecure development key")
	}

	return cfg, nil
}
