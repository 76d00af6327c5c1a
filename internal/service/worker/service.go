package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"sift-api/internal/config"
	"sift-api/internal/domain"
	"sift-api/internal/pkg/metrics"
	"sift-api/internal/service/assets"
)

const (
	retryPollInterval = 15 * time.Second
	scanTimeout       = 10 * time.Minute
)

// WorkerService processes background jobs
type WorkerService struct {
	config *config.Config
	logger *slog.Logger

	queueRepo domain.QueueRepository
	processor *JobProcessor
	scanner   *assets.Scanner
	metrics   *metrics.Metrics

	stats WorkerStats
}

// WorkerStats tracks worker performance metrics
type WorkerStats struct {
	JobsProcessed atomic.Int64
	JobsSucceeded atomic.Int64
	JobsFailed    atomic.Int64
	LastJobUnix   atomic.Int64
}

// New creates a new worker service
func New(
	config *config.Config,
	logger *slog.Logger,
	queueRepo domain.QueueRepository,
	processor *JobProcessor,
	scanner *assets.Scanner,
	m *metrics.Metrics,
) *WorkerService {
	return &WorkerService{
		config:    config,
		logger:    logger,
		queueRepo: queueRepo,
		processor: processor,
		scanner:   scanner,
		metrics:   m,
	}
}

// Start runs the worker until SIGINT or SIGTERM
func (w *WorkerService) Start() error {
	w.logger.Info("Starting worker service...",
		"concurrency", w.config.WorkerConcurrency,
		"image_check_schedule", w.config.ImageCheckSchedule,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w.logger.Info("Worker service is running. Press Ctrl+C to stop.")
	err := w.Run(ctx)
	w.logger.Info("Worker service stopped")
	return err
}

// Run consumes jobs, promotes due retries and runs the scheduled asset scan
// until ctx is cancelled
func (w *WorkerService) Run(ctx context.Context) error {
	scheduler := cron.New()
	if w.scanner != nil && w.config.ImageCheckSchedule != "" {
		if _, err := scheduler.AddFunc(w.config.ImageCheckSchedule, func() { w.runScan(ctx) }); err != nil {
			return fmt.Errorf("failed to schedule image check %q: %w", w.config.ImageCheckSchedule, err)
		}
	}
	scheduler.Start()
	defer func() {
		<-scheduler.Stop().Done()
	}()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		w.promoteRetries(ctx)
		return nil
	})

	concurrency := max(w.config.WorkerConcurrency, 1)
	for i := 0; i < concurrency; i++ {
		g.Go(func() error {
			w.consume(ctx, domain.JobTypeRehostImage)
			return nil
		})
	}

	return g.Wait()
}

// consume processes jobs of one type until ctx is cancelled
func (w *WorkerService) consume(ctx context.Context, jobType string) {
	for ctx.Err() == nil {
		job, err := w.queueRepo.Dequeue(ctx, jobType)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Error("Failed to dequeue job",
				"error", err,
				"job_type", jobType,
			)
			sleep(ctx, time.Second)
			continue
		}
		if job == nil {
			continue
		}
		w.processJob(ctx, job)
	}
}

func (w *WorkerService) promoteRetries(ctx context.Context) {
	ticker := time.NewTicker(retryPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.queueRepo.ProcessRetryJobs(ctx, domain.JobTypeRehostImage); err != nil && ctx.Err() == nil {
				w.logger.Error("Failed to promote retry jobs", "error", err)
			}
		}
	}
}

func (w *WorkerService) runScan(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, scanTimeout)
	defer cancel()

	start := time.Now()
	report, err := w.scanner.Scan(ctx)
	if err != nil {
		w.logger.Error("Scheduled image check failed", "error", err)
		return
	}
	w.logger.Info("Scheduled image check finished",
		"checked", report.Checked,
		"enqueued", report.Enqueued,
		"duration", time.Since(start),
	)
}

// processJob processes a single job
func (w *WorkerService) processJob(ctx context.Context, job *domain.QueueJob) {
	startTime := time.Now()
	jobLogger := w.logger.With(
		"job_id", job.ID,
		"job_type", job.Type,
	)

	jobLogger.Info("Processing job")

	var processingErr error
	switch job.Type {
	case domain.JobTypeRehostImage:
		processingErr = w.processor.ProcessRehostImage(ctx, job.Payload, jobLogger)
	default:
		processingErr = fmt.Errorf("unknown job type: %s", job.Type)
	}

	// Job bookkeeping must land even when shutdown interrupted the work
	bookkeeping := context.WithoutCancel(ctx)

	if processingErr != nil {
		jobLogger.Error("Job processing failed", "error", processingErr)
		if err := w.queueRepo.Fail(bookkeeping, job.ID, processingErr.Error()); err != nil {
			jobLogger.Error("Failed to mark job as failed", "error", err)
		}
		w.stats.JobsFailed.Add(1)
		w.metrics.ObserveJob(job.Type, "failed")
	} else {
		if err := w.queueRepo.Complete(bookkeeping, job.ID); err != nil {
			jobLogger.Error("Failed to mark job as completed", "error", err)
		}
		w.stats.JobsSucceeded.Add(1)
		w.metrics.ObserveJob(job.Type, "ok")
	}

	w.stats.JobsProcessed.Add(1)
	w.stats.LastJobUnix.Store(time.Now().Unix())

	jobLogger.Debug("Job processing completed",
		"duration", time.Since(startTime),
		"success", processingErr == nil,
	)
}

// GetStats returns current worker statistics
func (w *WorkerService) GetStats() *WorkerStats {
	return &w.stats
}

// HealthCheck verifies the queue is reachable
func (w *WorkerService) HealthCheck(ctx context.Context) error {
	if _, err := w.queueRepo.GetPendingCount(ctx, domain.JobTypeRehostImage); err != nil {
		return fmt.Errorf("queue connectivity check failed: %w", err)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
