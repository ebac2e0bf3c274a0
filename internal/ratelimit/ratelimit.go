package ratelimit

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"codeberg.org/pixelpress/server/internal/errors"
	"codeberg.org/pixelpress/server/internal/logger"
)

const keyPrefix = "pixelpress-ratelimit"

// builds a gin middleware allowing `formatted` requests (ulule syntax,
// e.g. "30-M") per caller; authenticated callers are keyed by account,
// everyone else by client IP
func Middleware(formatted string) (gin.HandlerFunc, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit %q: %w", formatted, err)
	}

	store := memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: keyPrefix})
	instance := limiter.New(store, rate)

	return mgin.NewMiddleware(instance,
		mgin.WithKeyGetter(keyFor),
		mgin.WithLimitReachedHandler(limitReached),
		mgin.WithErrorHandler(storeError),
	), nil
}

func keyFor(c *gin.Context) string {
	if userID := c.GetString("user_id"); userID != "" {
		return "user:" + userID
	}

	return "ip:" + c.ClientIP()
}

func limitReached(c *gin.Context) {
	errors.TooManyRequests(c, "rate limit exceeded, try again shortly")
}

func storeError(c *gin.Context, err error) {
	logger.ErrorErr(err, "rate limiter store failed", "path", c.Request.URL.Path)
	errors.InternalError(c, "rate limiter unavailable", err)
}
