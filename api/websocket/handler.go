package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"codeberg.org/pixelpress/server/internal/auth"
	"codeberg.org/pixelpress/server/internal/errors"
	"codeberg.org/pixelpress/server/internal/logger"
	ws "codeberg.org/pixelpress/server/internal/websocket"
)

func newUpgrader(checkOrigin func(r *http.Request) bool) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin,
	}
}

// upgrades an authenticated request into a progress stream for the account
func WebSocketHandler(hub *ws.Hub, upgrader *websocket.Upgrader) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "valid authentication required")
			return
		}

		// check connection limits before accepting new connection
		ipAddress := c.ClientIP()
		canAccept, reason := hub.CanAcceptConnection(userID, ipAddress)

		if !canAccept {
			errors.TooManyRequests(c, reason)
			return
		}

		clientID, err := ws.GenerateClientID()
		if err != nil {
			errors.InternalError(c, "failed to generate client ID", err)
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.ErrorErr(err, "failed to upgrade connection",
				"user_id", userID,
				"ip", ipAddress,
			)

			return
		}

		client := ws.NewClient(clientID, userID, ipAddress, conn, hub)

		hub.Register <- client

		go client.WritePump()
		go client.ReadPump()

		logger.Info("websocket connection established",
			"client_id", clientID,
			"user_id", userID,
			"ip", ipAddress,
		)
	}
}
