package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"codeberg.org/pixelpress/server/internal/auth"
	"codeberg.org/pixelpress/server/internal/config"
	"codeberg.org/pixelpress/server/internal/logger"
	"codeberg.org/pixelpress/server/internal/queue"
	"codeberg.org/pixelpress/server/internal/ratelimit"
	"codeberg.org/pixelpress/server/internal/runstate"
	ws "codeberg.org/pixelpress/server/internal/websocket"
	"codeberg.org/pixelpress/server/pixelpress/accounts"
)

// creates and configures a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	ctx := context.Background()

	verifier, err := auth.NewVerifier(cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create token verifier: %w", err)
	}

	limit, err := ratelimit.Middleware(cfg.RateLimit)
	if err != nil {
		return nil, err
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// supabase pooler has few connections, so keep our pool small
	poolConfig.MaxConns = 5
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	// pgBouncer in transaction mode doesn't support prepared statements
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	db, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	rdb, err := runstate.NewRedisClient(cfg.RedisURL)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	hub := ws.NewHub()
	services := InitializeServices(cfg, db, rdb, hub)

	hub.RegisterHandler(ws.TypePing, ws.PingHandler())
	hub.RegisterHandler(ws.TypeSync, ws.SyncHandler(services.Queues))

	// a fresh socket gets the full queue state before any incremental update
	hub.OnClientRegistered(func(client *ws.Client) {
		if err := ws.SendQueueState(client, services.Queues); err != nil {
			logger.ErrorErr(err, "failed to send queue state",
				"client_id", client.ID,
				"user_id", client.UserID,
			)
		}
	})

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	server := &Server{
		db:          db,
		redis:       rdb,
		config:      cfg,
		verifier:    verifier,
		accountRepo: accounts.NewRepository(db),
		services:    services,
		hub:         hub,
		router:      router,
		watchdog:    queue.NewWatchdog(services.Queues, cfg.Queue.WatchdogInterval),
	}

	RegisterRoutes(router, server, limit)

	return server, nil
}

// resumes runs persisted by a previous process
func (s *Server) resumeRuns(ctx context.Context) {
	resumed, err := s.services.Queues.Resume(ctx)
	if err != nil {
		logger.ErrorErr(err, "failed to resume persisted runs")
		return
	}

	logger.Info("persisted queues restored", "count", resumed)
}
