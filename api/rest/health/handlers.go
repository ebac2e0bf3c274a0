package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"codeberg.org/pixelpress/server/internal/logger"
)

const readyTimeout = 2 * time.Second

// returns the server health status
func Handler(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Status:  "healthy",
		Service: "pixelpress",
		Version: "1.0.0",
	})
}

// pings every dependency; 503 when any of them fails
func ReadyHandler(deps map[string]Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
		defer cancel()

		status := http.StatusOK
		checks := make(map[string]string, len(deps))

		for name, dep := range deps {
			if err := dep.Ping(ctx); err != nil {
				logger.Warn("readiness check failed", "dependency", name, "error", err)
				checks[name] = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}

			checks[name] = "ok"
		}

		overall := "ready"
		if status != http.StatusOK {
			overall = "unavailable"
		}

		c.JSON(status, ReadyResponse{Status: overall, Checks: checks})
	}
}

// adapts a ping function with a different signature
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}
