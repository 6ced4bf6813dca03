package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"drivegate/internal/cache"
	"drivegate/internal/config"
	"drivegate/internal/drive"
	"drivegate/internal/endpoints"
	"drivegate/internal/fetch"
	"drivegate/internal/history"
	"drivegate/internal/server"
)

func main() {
	// Initialize structured logging
	jsonHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(jsonHandler))

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	prober, err := drive.NewProber(ctx)
	if err != nil {
		slog.Error("Failed to create metadata prober", "error", err)
		os.Exit(1)
	}

	deps := endpoints.Deps{
		Prober: prober,
		Chain:  fetch.NewChain(),
	}

	// Metadata cache is optional; run without it when Redis is absent.
	if config.ValkeyHost != "" {
		metaCache, err := cache.New(ctx)
		if err != nil {
			slog.Warn("Metadata cache unavailable, continuing without it", "error", err)
		} else {
			deps.Cache = metaCache
			defer metaCache.Close()
		}
	}

	historyStore, err := history.Open(config.HistoryDBPath)
	if err != nil {
		slog.Warn("Retrieval history unavailable, continuing without it", "error", err)
	} else {
		deps.History = historyStore
		defer historyStore.Close()
	}

	// Create HTTP server
	srv := server.NewServer(port, deps)

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server failed to start", "error", err)
			cancel()
		}
	}()

	slog.Info("drivegate HTTP server started", "port", port)

	// Wait for shutdown signal
	select {
	case sig := <-sigChan:
		slog.Info("Received shutdown signal", "signal", sig)
	case <-ctx.Done():
		slog.Info("Context cancelled")
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	} else {
		slog.Info("Server exited gracefully")
	}
}
