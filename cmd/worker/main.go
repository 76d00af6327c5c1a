package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"sift-api/internal/config"
	"sift-api/internal/pkg/logger"
	"sift-api/internal/pkg/metrics"
	"sift-api/internal/repository/postgres"
	"sift-api/internal/repository/redis"
	"sift-api/internal/repository/supabase"
	"sift-api/internal/service/assets"
	"sift-api/internal/service/sift"
	"sift-api/internal/service/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	// Validate worker-specific configuration
	if err := cfg.ValidateForWorker(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	// Setup logging
	log := logger.NewWithFormat(cfg.LogLevel, cfg.LogFormat)
	log.Info("Starting worker service...")

	// Connect to PostgreSQL
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

	// Connect to Redis
	redisClient, err := redis.NewClient(cfg.RedisURL, log)
	if err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// Create repositories
	pageRepo := postgres.NewPageRepository(db, log)
	queueRepo := redis.NewQueueRepository(redisClient, log)

	storage := supabase.NewStorage(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseBucket, log)
	rehoster := sift.NewImageRehoster(storage, cfg.ImageTimeout, log)
	scanner := assets.NewScanner(pageRepo, queueRepo, cfg.StoragePublicBase(), log)
	processor := worker.NewJobProcessor(log, pageRepo, rehoster)

	m := metrics.New()
	workerService := worker.New(cfg, log, queueRepo, processor, scanner, m)

	// Expose metrics and a liveness probe next to the job loop
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", m.Handler())
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := workerService.HealthCheck(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"status":"healthy"}`))
	})
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics server failed", "error", err)
		}
	}()

	if err := workerService.Start(); err != nil {
		log.Error("Worker service failed", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Error stopping metrics server", "error", err)
	}

	log.Info("Worker service shutdown complete")
}
