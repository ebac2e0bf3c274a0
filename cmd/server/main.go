package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/pixelpress/server/internal/config"
	"codeberg.org/pixelpress/server/internal/logger"
)

// @title PixelPress API
// @version 1.0
// @description Bulk featured-image and infographic generation with per-account credit billing
// @description
// @description Features:
// @description - Per-template generation queues with sequential batch processing
// @description - Credit debit per batch and per single image
// @description - Live queue progress and notifications over WebSockets
// @description - Run state that survives restarts

// @contact.name API Support
// @contact.url https://codeberg.org/pixelpress/server

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authenticated requests. Format: Bearer {token}

func main() {
	logger.Info("starting pixelpress server")

	// load configuration from environment
	cfg, err := config.LoadEnvironmentVariables()
	if err != nil {
		logger.Fatal("failed to load configuration", "error", err)
	}

	// create server with all dependencies
	srv, err := NewServer(cfg)
	if err != nil {
		logger.Fatal("failed to create server", "error", err)
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      srv.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// start server in goroutine
	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed to start", "error", err)
		}
	}()

	// start websocket hub
	go srv.hub.Run()

	// pick up runs interrupted by the previous shutdown
	resumeCtx, resumeCancel := context.WithTimeout(context.Background(), 30*time.Second)
	srv.resumeRuns(resumeCtx)
	resumeCancel()

	// start queue watchdog with cancellable context
	watchdogCtx, watchdogCancel := context.WithCancel(context.Background())
	go srv.watchdog.Start(watchdogCtx)

	// wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// stop watchdog
	watchdogCancel()

	logger.Info("shutting down server")

	// graceful shutdown with 10 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// stop processing goroutines; active runs stay persisted for the next boot
	if err := srv.services.Queues.Shutdown(ctx); err != nil {
		logger.ErrorErr(err, "queue processing did not stop in time")
	}

	// notify websocket clients and close connections
	srv.hub.Shutdown()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	// close Redis connection
	srv.redis.Close() //nolint:errcheck,gosec // best-effort cleanup on shutdown

	// close database connection
	srv.db.Close()

	logger.Info("server stopped")
}
