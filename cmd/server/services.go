package main

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"codeberg.org/pixelpress/server/internal/config"
	"codeberg.org/pixelpress/server/internal/credits"
	"codeberg.org/pixelpress/server/internal/imagegen"
	"codeberg.org/pixelpress/server/internal/notifications"
	"codeberg.org/pixelpress/server/internal/queue"
	"codeberg.org/pixelpress/server/internal/runstate"
	ws "codeberg.org/pixelpress/server/internal/websocket"
)

// run-state keys outlive the stale threshold so the watchdog and boot
// resume can still see and discard them
const runStateTTLFactor = 2

// creates the webhook client, ledger, notification log and queue manager
func InitializeServices(cfg *config.Config, db *pgxpool.Pool, rdb *redis.Client, hub *ws.Hub) *Services {
	generator := imagegen.NewClient(imagegen.Config{
		URL:     cfg.Webhook.URL,
		Secret:  cfg.Webhook.Secret,
		Timeout: cfg.Webhook.Timeout,
		Limiter: imagegen.NewLimiter(cfg.Webhook.RatePerMinute),
	})

	ledger := credits.NewPostgresLedger(db)

	// every stored notification is also pushed to the account's sockets
	notifs := notifications.WithPublisher(notifications.New(db), hub)

	states := runstate.NewRepository(
		runstate.NewRedisStore(rdb, cfg.Queue.StaleAfter*runStateTTLFactor),
		cfg.Queue.StaleAfter,
	)

	manager := queue.NewManager(queue.Config{
		Generator:    generator,
		Ledger:       ledger,
		Notifier:     notifs,
		States:       states,
		Publisher:    hub,
		RequestDelay: cfg.Queue.RequestDelay,
		ClearGrace:   cfg.Queue.ClearGrace,
		IdleEviction: cfg.Queue.IdleEviction,
	})

	return &Services{
		Generator:     generator,
		Ledger:        ledger,
		Notifications: notifs,
		Queues:        manager,
	}
}
