package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/pixelpress/server/internal/auth"
	ws "codeberg.org/pixelpress/server/internal/websocket"
)

func RegisterRoutes(router *gin.RouterGroup, hub *ws.Hub, verifier *auth.Verifier, checkOrigin func(r *http.Request) bool) {
	router.GET("/ws", auth.QueryTokenMiddleware(verifier), WebSocketHandler(hub, newUpgrader(checkOrigin)))
}
