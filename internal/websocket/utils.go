package websocket

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"slices"

	"codeberg.org/pixelpress/server/internal/logger"
)

// builds the upgrader origin check: anything goes outside production,
// production only accepts the configured origins
func NewOriginChecker(environment string, allowedOrigins []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		if environment != "production" {
			return true
		}

		origin := r.Header.Get("Origin")
		if origin == "" {
			logger.Warn("websocket connection with no origin header")
			return false
		}

		if len(allowedOrigins) == 0 {
			logger.Warn("websocket origin rejected - ALLOWED_ORIGINS not configured",
				"origin", origin,
			)
			return false
		}

		if slices.Contains(allowedOrigins, origin) {
			return true
		}

		logger.Warn("websocket origin rejected - not in allowed origins",
			"origin", origin,
			"allowed_origins", allowedOrigins,
		)

		return false
	}
}

func GenerateClientID() (string, error) {
	bytes := make([]byte, 16)

	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}

	return hex.EncodeToString(bytes), nil
}
