// internal/config/config_test.go

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:              "8080",
		Environment:       "development",
		DatabaseURL:       "postgresql://localhost:5432/solace",
		RedisURL:          "redis://localhost:6379/0",
		JWTSecret:         "test-secret",
		WriteTimeout:      10 * time.Second,
		HeartbeatInterval: 30 * time.Second,
		HeartbeatTimeout:  75 * time.Second,
		SendBufferSize:    256,
		MaxAgeGapYears:    30,
		LocationMismatch:  0.3,
		MinMessageLength:  3,
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.WriteTimeout)
	assert.Equal(t, 30*time.Second, cfg.HeartbeatInterval)
	assert.Equal(t, 75*time.Second, cfg.HeartbeatTimeout)
	assert.Equal(t, 256, cfg.SendBufferSize)
	require.NoError(t, cfg.Validate())
}

func TestLoadWriteTimeoutOverride(t *testing.T) {
	t.Setenv("WS_WRITE_TIMEOUT", "3s")

	cfg := Load()

	assert.Equal(t, 3*time.Second, cfg.WriteTimeout)
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing database URL", func(c *Config) { c.DatabaseURL = "" }},
		{"default secret in production", func(c *Config) {
			c.JWTSecret = "change-this-in-production"
			c.Environment = "production"
		}},
		{"heartbeat timeout below interval", func(c *Config) { c.HeartbeatTimeout = c.HeartbeatInterval }},
		{"non-positive write timeout", func(c *Config) { c.WriteTimeout = 0 }},
		{"zero send buffer", func(c *Config) { c.SendBufferSize = 0 }},
		{"zero age gap", func(c *Config) { c.MaxAgeGapYears = 0 }},
		{"location mismatch above one", func(c *Config) { c.LocationMismatch = 1.5 }},
		{"zero minimum message length", func(c *Config) { c.MinMessageLength = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
