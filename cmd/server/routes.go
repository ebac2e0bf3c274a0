package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"codeberg.org/pixelpress/server/api/rest/admin"
	"codeberg.org/pixelpress/server/api/rest/generate"
	"codeberg.org/pixelpress/server/api/rest/health"
	"codeberg.org/pixelpress/server/api/rest/notifications"
	"codeberg.org/pixelpress/server/api/rest/queues"
	"codeberg.org/pixelpress/server/api/rest/users"
	"codeberg.org/pixelpress/server/api/websocket"
	ws "codeberg.org/pixelpress/server/internal/websocket"
)

// sets up all API routes and middleware
func RegisterRoutes(router *gin.Engine, server *Server, limit gin.HandlerFunc) {
	router.Use(CORSMiddleware(server.config))
	router.GET("/health", health.Handler)
	router.GET("/ready", health.ReadyHandler(map[string]health.Pinger{
		"postgres": server.db,
		"redis":    health.PingFunc(func(ctx context.Context) error { return server.redis.Ping(ctx).Err() }),
	}))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")

	{
		queues.RegisterRoutes(v1, server.services.Queues, server.verifier, limit)
		generate.RegisterRoutes(v1, server.services.Generator, server.services.Ledger, server.services.Notifications, server.verifier, limit)
		notifications.RegisterRoutes(v1, server.services.Notifications, server.verifier)
		users.RegisterRoutes(v1, server.accountRepo, server.verifier)
		admin.RegisterRoutes(v1, server.accountRepo, server.verifier)
		websocket.RegisterRoutes(v1, server.hub, server.verifier, ws.NewOriginChecker(server.config.Environment, server.config.AllowedOrigin))
	}
}
