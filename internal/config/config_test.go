package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 30*time.Second, cfg.ServerReadTimeout)
	assert.Equal(t, 120*time.Second, cfg.ServerWriteTimeout)

	assert.Equal(t, 2*time.Second, cfg.PaceDelay)
	assert.Equal(t, 2*time.Second, cfg.RetryDelay)
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 15, cfg.MaxRetries)

	assert.Empty(t, cfg.NATSURL, "event publishing disabled by default")
	assert.Empty(t, cfg.JWTSecret, "auth disabled by default")

	assert.Equal(t, 60, cfg.RateLimitRequests)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.TracingEnabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ASSISTANT_PACE_DELAY", "250ms")
	t.Setenv("ASSISTANT_MAX_RETRIES", "5")
	t.Setenv("NATS_URL", "nats://localhost:4222")
	t.Setenv("TRACING_ENABLED", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, 250*time.Millisecond, cfg.PaceDelay)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, "nats://localhost:4222", cfg.NATSURL)
	assert.True(t, cfg.TracingEnabled)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("ASSISTANT_MAX_RETRIES", "many")
	t.Setenv("ASSISTANT_RETRY_DELAY", "soon")
	t.Setenv("TRACING_ENABLED", "maybe")

	cfg := Load()

	assert.Equal(t, 15, cfg.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.RetryDelay)
	assert.False(t, cfg.TracingEnabled)
}
