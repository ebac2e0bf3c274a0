package generate

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/pixelpress/server/internal/auth"
	"codeberg.org/pixelpress/server/internal/credits"
	"codeberg.org/pixelpress/server/internal/imagegen"
	"codeberg.org/pixelpress/server/internal/notifications"
)

// registers single-image generation; limit runs after authentication so
// callers are throttled per account
func RegisterRoutes(router *gin.RouterGroup, generator imagegen.Generator, ledger credits.Ledger, log notifications.Log, verifier *auth.Verifier, limit gin.HandlerFunc) {
	router.POST("/generate", auth.AuthMiddleware(verifier), limit, Handler(generator, ledger, log))
}
