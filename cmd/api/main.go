package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sift-api/internal/config"
	"sift-api/internal/domain"
	"sift-api/internal/pkg/logger"
	"sift-api/internal/pkg/metrics"
	"sift-api/internal/repository/memory"
	"sift-api/internal/repository/postgres"
	"sift-api/internal/repository/redis"
	"sift-api/internal/service/api"
	"sift-api/internal/service/sift"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	// Validate API-specific configuration
	if err := cfg.ValidateForAPI(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	// Setup logging
	log := logger.NewWithFormat(cfg.LogLevel, cfg.LogFormat)
	log.Info("Starting API service...")

	// Without a database the API still works, against an in-memory store
	var pageRepo domain.PageRepository
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set - pages are kept in memory and lost on restart")
		pageRepo = memory.NewPageRepository()
	} else {
		db, err := postgres.Connect(cfg.DatabaseURL, log)
		if err != nil {
			log.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		// Run database migrations
		if err := postgres.RunMigrations(db, log); err != nil {
			log.Error("Failed to run database migrations", "error", err)
			os.Exit(1)
		}
		pageRepo = postgres.NewPageRepository(db, log)
	}

	// The retry queue is optional; failed re-hosts are simply kept as-is without it
	var queueRepo domain.QueueRepository
	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClient(cfg.RedisURL, log)
		if err != nil {
			log.Warn("Redis unavailable - image re-host retries disabled", "error", err)
		} else {
			defer redisClient.Close()
			queueRepo = redis.NewQueueRepository(redisClient, log)
		}
	}

	m := metrics.New()
	pipeline, cleanup := sift.Build(cfg, pageRepo, queueRepo, m, log)
	defer cleanup()

	// Create API service
	apiService := api.New(cfg, log, pageRepo, pipeline, m)

	// Create a channel to track shutdown completion
	done := make(chan struct{})

	// Start API service in a goroutine
	go func() {
		defer close(done)
		if err := apiService.Start(); err != nil {
			log.Error("API service failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Wait for either shutdown signal or service completion
	select {
	case <-quit:
		log.Info("Shutdown signal received, stopping API service...")
	case <-done:
		log.Info("API service completed")
	}

	// Graceful shutdown with timeout; in-flight sifts get time to land
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// Stop API service
	if err := apiService.Stop(ctx); err != nil {
		log.Error("Error stopping API service", "error", err)
	}

	log.Info("API service shutdown complete")
}
