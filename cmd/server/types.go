package main

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"codeberg.org/pixelpress/server/internal/auth"
	"codeberg.org/pixelpress/server/internal/config"
	"codeberg.org/pixelpress/server/internal/credits"
	"codeberg.org/pixelpress/server/internal/imagegen"
	"codeberg.org/pixelpress/server/internal/notifications"
	"codeberg.org/pixelpress/server/internal/queue"
	ws "codeberg.org/pixelpress/server/internal/websocket"
	"codeberg.org/pixelpress/server/pixelpress/accounts"
)

// holds all dependencies and state for the API server
type Server struct {
	db          *pgxpool.Pool
	redis       *redis.Client
	config      *config.Config
	verifier    *auth.Verifier
	accountRepo *accounts.Repository
	services    *Services
	hub         *ws.Hub
	router      *gin.Engine
	watchdog    *queue.Watchdog
}

// holds the generation stack: webhook client, ledger, notifications, queues
type Services struct {
	Generator     *imagegen.Client
	Ledger        credits.Ledger
	Notifications notifications.Log
	Queues        *queue.Manager
}
