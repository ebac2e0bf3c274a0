package queues

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/pixelpress/server/internal/auth"
	"codeberg.org/pixelpress/server/internal/queue"
)

func RegisterRoutes(router *gin.RouterGroup, manager *queue.Manager, verifier *auth.Verifier, limit gin.HandlerFunc) {
	queues := router.Group("/queues")
	queues.Use(auth.AuthMiddleware(verifier))

	queues.GET("", ListHandler(manager))
	queues.GET("/:template", GetHandler(manager))
	queues.DELETE("/:template", ClearHandler(manager))
	queues.POST("/:template/items", AddItemHandler(manager))
	queues.PUT("/:template/items/:id", UpdateItemHandler(manager))
	queues.DELETE("/:template/items/:id", RemoveItemHandler(manager))
	queues.POST("/:template/run", limit, StartRunHandler(manager))
	queues.DELETE("/:template/run", CancelRunHandler(manager))
}
