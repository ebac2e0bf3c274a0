package config

import "time"

type Config struct {
	DatabaseURL   string
	RedisURL      string
	JWTSecret     string
	Environment   string
	Port          string
	AllowedOrigin []string

	// formatted ulule rate, e.g. "30-M"
	RateLimit string

	Webhook WebhookConfig
	Queue   QueueConfig
}

// settings for the external image-generation webhook
type WebhookConfig struct {
	URL           string
	Secret        string
	Timeout       time.Duration
	RatePerMinute int
}

// settings for bulk queue processing and run-state retention
type QueueConfig struct {
	RequestDelay     time.Duration
	StaleAfter       time.Duration
	WatchdogInterval time.Duration
	ClearGrace       time.Duration
	IdleEviction     time.Duration
}
