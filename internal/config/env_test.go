package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envFrom(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func requiredEnv() map[string]string {
	return map[string]string{
		"DATABASE_URL": "postgres://localhost/pixelpress",
		"REDIS_URL":    "redis://localhost:6379/0",
		"JWT_SECRET":   "secret",
		"WEBHOOK_URL":  "https://hooks.example.com/image",
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envFrom(requiredEnv()))
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "30-M", cfg.RateLimit)
	assert.Equal(t, 60*time.Second, cfg.Webhook.Timeout)
	assert.Equal(t, 30, cfg.Webhook.RatePerMinute)
	assert.Equal(t, 2*time.Second, cfg.Queue.RequestDelay)
	assert.Equal(t, 2*time.Hour, cfg.Queue.StaleAfter)
	assert.Equal(t, time.Minute, cfg.Queue.WatchdogInterval)
	assert.Equal(t, 5*time.Second, cfg.Queue.ClearGrace)
	assert.Equal(t, 30*time.Minute, cfg.Queue.IdleEviction)
	assert.Empty(t, cfg.AllowedOrigin)
}

func TestFromEnv_Overrides(t *testing.T) {
	env := requiredEnv()
	env["WEBHOOK_TIMEOUT"] = "45s"
	env["QUEUE_REQUEST_DELAY"] = "500ms"
	env["QUEUE_STALE_AFTER"] = "1h"
	env["QUEUE_IDLE_EVICTION"] = "10m"
	env["WEBHOOK_RATE_PER_MINUTE"] = "12"
	env["ALLOWED_ORIGINS"] = "https://app.example.com, http://localhost:5173 ,"

	cfg, err := FromEnv(envFrom(env))
	require.NoError(t, err)

	assert.Equal(t, 45*time.Second, cfg.Webhook.Timeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Queue.RequestDelay)
	assert.Equal(t, time.Hour, cfg.Queue.StaleAfter)
	assert.Equal(t, 10*time.Minute, cfg.Queue.IdleEviction)
	assert.Equal(t, 12, cfg.Webhook.RatePerMinute)
	assert.Equal(t, []string{"https://app.example.com", "http://localhost:5173"}, cfg.AllowedOrigin)
}

func TestFromEnv_MissingRequired(t *testing.T) {
	for _, key := range []string{"DATABASE_URL", "REDIS_URL", "JWT_SECRET", "WEBHOOK_URL"} {
		t.Run(key, func(t *testing.T) {
			env := requiredEnv()
			delete(env, key)

			_, err := FromEnv(envFrom(env))
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestFromEnv_InvalidValues(t *testing.T) {
	env := requiredEnv()
	env["QUEUE_REQUEST_DELAY"] = "soon"

	_, err := FromEnv(envFrom(env))
	assert.Error(t, err)

	env = requiredEnv()
	env["WEBHOOK_RATE_PER_MINUTE"] = "-3"

	_, err = FromEnv(envFrom(env))
	assert.Error(t, err)
}
