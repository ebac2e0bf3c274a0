package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort             = "8080"
	defaultRateLimit        = "30-M"
	defaultWebhookTimeout   = 60 * time.Second
	defaultWebhookRate      = 30
	defaultRequestDelay     = 2 * time.Second
	defaultStaleAfter       = 2 * time.Hour
	defaultWatchdogInterval = time.Minute
	defaultClearGrace       = 5 * time.Second
	defaultIdleEviction     = 30 * time.Minute
)

// loads configuration from environment variables
func LoadEnvironmentVariables() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		_ = err // not an error - production environments may not have .env file
	}

	return FromEnv(os.Getenv)
}

// builds a Config from a lookup function so tests don't have to touch the process env
func FromEnv(getenv func(string) string) (*Config, error) {
	databaseURL := getenv("DATABASE_URL")
	redisURL := getenv("REDIS_URL")
	jwtSecret := getenv("JWT_SECRET")
	webhookURL := getenv("WEBHOOK_URL")

	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL environment variable is required")
	}

	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	if webhookURL == "" {
		return nil, fmt.Errorf("WEBHOOK_URL environment variable is required")
	}

	environment := getenv("ENVIRONMENT")
	if environment == "" {
		environment = "development"
	}

	port := getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	rateLimit := getenv("RATE_LIMIT")
	if rateLimit == "" {
		rateLimit = defaultRateLimit
	}

	cfg := &Config{
		DatabaseURL:   databaseURL,
		RedisURL:      redisURL,
		JWTSecret:     jwtSecret,
		Environment:   environment,
		Port:          port,
		AllowedOrigin: splitList(getenv("ALLOWED_ORIGINS")),
		RateLimit:     rateLimit,
		Webhook: WebhookConfig{
			URL:    webhookURL,
			Secret: getenv("WEBHOOK_SECRET"),
		},
	}

	var err error

	if cfg.Webhook.Timeout, err = durationEnv(getenv, "WEBHOOK_TIMEOUT", defaultWebhookTimeout); err != nil {
		return nil, err
	}

	if cfg.Webhook.RatePerMinute, err = intEnv(getenv, "WEBHOOK_RATE_PER_MINUTE", defaultWebhookRate); err != nil {
		return nil, err
	}

	if cfg.Queue.RequestDelay, err = durationEnv(getenv, "QUEUE_REQUEST_DELAY", defaultRequestDelay); err != nil {
		return nil, err
	}

	if cfg.Queue.StaleAfter, err = durationEnv(getenv, "QUEUE_STALE_AFTER", defaultStaleAfter); err != nil {
		return nil, err
	}

	if cfg.Queue.WatchdogInterval, err = durationEnv(getenv, "QUEUE_WATCHDOG_INTERVAL", defaultWatchdogInterval); err != nil {
		return nil, err
	}

	if cfg.Queue.ClearGrace, err = durationEnv(getenv, "QUEUE_CLEAR_GRACE", defaultClearGrace); err != nil {
		return nil, err
	}

	if cfg.Queue.IdleEviction, err = durationEnv(getenv, "QUEUE_IDLE_EVICTION", defaultIdleEviction); err != nil {
		return nil, err
	}

	return cfg, nil
}

func durationEnv(getenv func(string) string, key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(getenv(key))
	if raw == "" {
		return fallback, nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like 30s or 2m: %w", key, err)
	}

	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}

	return d, nil
}

func intEnv(getenv func(string) string, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(getenv(key))
	if raw == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}

	return n, nil
}

func splitList(raw string) []string {
	var out []string

	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}
