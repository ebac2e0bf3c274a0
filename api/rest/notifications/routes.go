package notifications

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/pixelpress/server/internal/auth"
	"codeberg.org/pixelpress/server/internal/notifications"
)

func RegisterRoutes(router *gin.RouterGroup, log notifications.Log, verifier *auth.Verifier) {
	notifs := router.Group("/notifications")
	notifs.Use(auth.AuthMiddleware(verifier))

	notifs.GET("", ListHandler(log))
	notifs.DELETE("", ClearAllHandler(log))
	notifs.GET("/unread-count", UnreadCountHandler(log))
	notifs.PUT("/read-all", MarkAllReadHandler(log))
	notifs.PUT("/:id/read", MarkReadHandler(log))
	notifs.DELETE("/:id", RemoveHandler(log))
}
