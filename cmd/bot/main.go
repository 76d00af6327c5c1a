package main

import (
	"fmt"
	"os"

	"sift-api/internal/config"
	"sift-api/internal/domain"
	"sift-api/internal/pkg/logger"
	"sift-api/internal/repository/memory"
	"sift-api/internal/repository/postgres"
	"sift-api/internal/repository/redis"
	"sift-api/internal/service/bot"
	"sift-api/internal/service/sift"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	// Validate bot-specific configuration
	if err := cfg.ValidateForBot(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	// Setup logging
	log := logger.NewWithFormat(cfg.LogLevel, cfg.LogFormat)
	log.Info("Starting Discord bot service...")

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

	pipeline, cleanup := sift.Build(cfg, pageRepo, queueRepo, nil, log)
	defer cleanup()

	// Create bot service
	botService, err := bot.New(cfg, log, pageRepo, pipeline)
	if err != nil {
		log.Error("Failed to create bot service", "error", err)
		os.Exit(1)
	}

	// Start blocks until SIGINT or SIGTERM
	if err := botService.Start(); err != nil {
		log.Error("Bot service failed", "error", err)
	}

	log.Info("Bot service shutdown complete")
}
