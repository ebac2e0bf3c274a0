package queue

import (
	"context"
	"time"

	"codeberg.org/pixelpress/server/internal/logger"
)

// periodically force-resets runs that stopped making progress and evicts
// idle queues
type Watchdog struct {
	manager       *Manager
	checkInterval time.Duration
}

// creates a new watchdog
func NewWatchdog(manager *Manager, checkInterval time.Duration) *Watchdog {
	return &Watchdog{
		manager:       manager,
		checkInterval: checkInterval,
	}
}

// begins the watchdog background loop
func (w *Watchdog) Start(ctx context.Context) {
	logger.Info("starting queue watchdog",
		"check_interval", w.checkInterval,
		"stale_after", w.manager.engine.states.StaleAfter(),
	)

	ticker := time.NewTicker(w.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("queue watchdog stopped")
			return
		case <-ticker.C:
			if n := w.manager.ResetStaleRuns(ctx); n > 0 {
				logger.Info("queue watchdog reset stale runs", "count", n)
			}

			if n := w.manager.EvictIdle(); n > 0 {
				logger.Debug("queue watchdog evicted idle queues", "count", n)
			}
		}
	}
}
