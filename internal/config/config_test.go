package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_PATH", "JWT_SECRET", "JWT_TTL", "LOG_LEVEL", "CORS_ORIGIN", "NOTIFY_BUFFER"} {
		t.Setenv(key, "")
	}

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "./data/splitledger.db", cfg.DBPath)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "*", cfg.CORSOrigin)
	assert.Equal(t, 16, cfg.NotifyBuffer)
	assert.Equal(t, defaultJWTSecret, cfg.JWTSecret)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_PATH", "/tmp/ledger.db")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_TTL", "90m")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ORIGIN", "https://ledger.example.com")
	t.Setenv("NOTIFY_BUFFER", "4")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "/tmp/ledger.db", cfg.DBPath)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 90*time.Minute, cfg.JWTTTL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "https://ledger.example.com", cfg.CORSOrigin)
	assert.Equal(t, 4, cfg.NotifyBuffer)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unparseable ttl", "JWT_TTL", "tomorrow"},
		{"negative ttl", "JWT_TTL", "-1h"},
		{"port out of range", "PORT", "70000"},
		{"zero buffer", "NOTIFY_BUFFER", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := load(viper.New())
			assert.Error(t, err)
		})
	}
}
