package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"sift-api/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// QueueRepository implements domain.QueueRepository on Redis lists.
// Pending jobs live in a list, in-flight jobs in a processing list, and
// failed jobs wait in a sorted set scored by their next attempt.
type QueueRepository struct {
	client      *redis.Client
	logger      *slog.Logger
	pollTimeout time.Duration
}

// NewQueueRepository creates a new Redis queue repository
func NewQueueRepository(client *redis.Client, logger *slog.Logger) *QueueRepository {
	return &QueueRepository{
		client:      client,
		logger:      logger,
		pollTimeout: 5 * time.Second,
	}
}

// Redis key patterns, all namespaced under sift:
const (
	queueKeyPrefix   = "sift:queue:"      // sift:queue:job_type
	jobKeyPrefix     = "sift:job:"        // sift:job:job_id
	processingPrefix = "sift:processing:" // sift:processing:job_type
	retryKeyPrefix   = "sift:retry:"      // sift:retry:job_type
	deadLetterPrefix = "sift:dead:"       // sift:dead:job_type
	activeKeyPrefix  = "sift:active:"     // sift:active:job_type -> dedupe keys
)

// Retry policy. Image hosts rate-limit aggressively, so back off in minutes.
const (
	maxAttempts    = 4
	initialBackoff = 30 * time.Second
	maxBackoff     = 30 * time.Minute
	jobTTL         = 7 * 24 * time.Hour
)

type storedJob struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	DedupeKey string                 `json:"dedupe_key,omitempty"`
	Payload   map[string]interface{} `json:"payload"`
	Status    string                 `json:"status"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt *time.Time             `json:"updated_at,omitempty"`
	Attempts  int                    `json:"attempts"`
	LastError string                 `json:"last_error,omitempty"`
}

// Enqueue adds a job. A rehost job for a page that already has one queued,
// running or waiting to retry is dropped.
func (r *QueueRepository) Enqueue(ctx context.Context, jobType string, payload interface{}) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	var payloadMap map[string]interface{}
	if err := json.Unmarshal(payloadBytes, &payloadMap); err != nil {
		return fmt.Errorf("failed to unmarshal payload to map: %w", err)
	}

	job := &storedJob{
		ID:        uuid.New().String(),
		Type:      jobType,
		DedupeKey: dedupeKey(payloadMap),
		Payload:   payloadMap,
		Status:    domain.JobStatusPending,
		CreatedAt: time.Now(),
	}

	if job.DedupeKey != "" {
		added, err := r.client.SAdd(ctx, activeKeyPrefix+jobType, job.DedupeKey).Result()
		if err != nil {
			return fmt.Errorf("failed to reserve job: %w", err)
		}
		if added == 0 {
			r.logger.Debug("Job already queued", "job_type", jobType, "dedupe_key", job.DedupeKey)
			return nil
		}
	}

	jobData, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, jobKeyPrefix+job.ID, jobData, jobTTL)
	pipe.LPush(ctx, queueKeyPrefix+jobType, job.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}

	r.logger.Info("Job enqueued", "job_id", job.ID, "job_type", jobType)
	return nil
}

// Dequeue blocks up to the poll timeout. It returns nil, nil when nothing arrived.
func (r *QueueRepository) Dequeue(ctx context.Context, jobType string) (*domain.QueueJob, error) {
	processingKey := processingPrefix + jobType

	// BRPOPLPUSH keeps the job visible in the processing list until it is
	// completed or failed
	jobID, err := r.client.BRPopLPush(ctx, queueKeyPrefix+jobType, processingKey, r.pollTimeout).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to dequeue job: %w", err)
	}

	job, err := r.load(ctx, jobID)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Warn("Job data expired, dropping", "job_id", jobID)
			r.client.LRem(ctx, processingKey, 1, jobID)
			return nil, nil
		}
		return nil, err
	}

	now := time.Now()
	job.Status = domain.JobStatusProcessing
	job.UpdatedAt = &now
	job.Attempts++
	if err := r.save(ctx, job); err != nil {
		r.logger.Error("Failed to update job status", "error", err, "job_id", jobID)
	}

	r.logger.Info("Job dequeued", "job_id", job.ID, "job_type", jobType, "attempt", job.Attempts)
	return job.toDomain(), nil
}

// Complete removes a finished job and releases its dedupe key
func (r *QueueRepository) Complete(ctx context.Context, jobID string) error {
	job, err := r.load(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to get job for completion: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.LRem(ctx, processingPrefix+job.Type, 1, jobID)
	pipe.Del(ctx, jobKeyPrefix+jobID)
	if job.DedupeKey != "" {
		pipe.SRem(ctx, activeKeyPrefix+job.Type, job.DedupeKey)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}

	r.logger.Info("Job completed", "job_id", jobID, "job_type", job.Type)
	return nil
}

// Fail schedules a retry with exponential backoff, or dead-letters the job
// after maxAttempts
func (r *QueueRepository) Fail(ctx context.Context, jobID string, errorMsg string) error {
	job, err := r.load(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to get job for failure: %w", err)
	}

	now := time.Now()
	job.LastError = errorMsg
	job.UpdatedAt = &now

	pipe := r.client.TxPipeline()
	pipe.LRem(ctx, processingPrefix+job.Type, 1, jobID)

	if job.Attempts < maxAttempts {
		nextRetry := now.Add(backoff(job.Attempts))
		job.Status = domain.JobStatusPending
		pipe.ZAdd(ctx, retryKeyPrefix+job.Type, redis.Z{
			Score:  float64(nextRetry.Unix()),
			Member: jobID,
		})

		r.logger.Warn("Job scheduled for retry",
			"job_id", jobID,
			"job_type", job.Type,
			"attempt", job.Attempts,
			"next_retry", nextRetry,
			"error", errorMsg,
		)
	} else {
		job.Status = domain.JobStatusFailed
		pipe.LPush(ctx, deadLetterPrefix+job.Type, jobID)
		if job.DedupeKey != "" {
			pipe.SRem(ctx, activeKeyPrefix+job.Type, job.DedupeKey)
		}

		r.logger.Error("Job failed permanently",
			"job_id", jobID,
			"job_type", job.Type,
			"attempts", job.Attempts,
			"error", errorMsg,
		)
	}

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	pipe.Set(ctx, jobKeyPrefix+jobID, data, jobTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to handle job failure: %w", err)
	}
	return nil
}

// GetPendingCount returns the number of pending jobs for a job type
func (r *QueueRepository) GetPendingCount(ctx context.Context, jobType string) (int, error) {
	count, err := r.client.LLen(ctx, queueKeyPrefix+jobType).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get pending count: %w", err)
	}
	return int(count), nil
}

// ProcessRetryJobs moves jobs whose backoff has elapsed back to the queue
func (r *QueueRepository) ProcessRetryJobs(ctx context.Context, jobType string) error {
	retryKey := retryKeyPrefix + jobType

	due, err := r.client.ZRangeByScore(ctx, retryKey, &redis.ZRangeBy{
		Min: "0",
		Max: strconv.FormatInt(time.Now().Unix(), 10),
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to get retry jobs: %w", err)
	}
	if len(due) == 0 {
		return nil
	}

	pipe := r.client.TxPipeline()
	for _, jobID := range due {
		pipe.ZRem(ctx, retryKey, jobID)
		pipe.LPush(ctx, queueKeyPrefix+jobType, jobID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to process retry jobs: %w", err)
	}

	r.logger.Info("Processed retry jobs", "job_type", jobType, "count", len(due))
	return nil
}

// Stats reports current list sizes for a job type
func (r *QueueRepository) Stats(ctx context.Context, jobType string) (map[string]int64, error) {
	pipe := r.client.Pipeline()
	pending := pipe.LLen(ctx, queueKeyPrefix+jobType)
	processing := pipe.LLen(ctx, processingPrefix+jobType)
	retrying := pipe.ZCard(ctx, retryKeyPrefix+jobType)
	dead := pipe.LLen(ctx, deadLetterPrefix+jobType)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to get queue stats: %w", err)
	}

	return map[string]int64{
		"pending":    pending.Val(),
		"processing": processing.Val(),
		"retrying":   retrying.Val(),
		"dead":       dead.Val(),
	}, nil
}

func (r *QueueRepository) load(ctx context.Context, jobID string) (*storedJob, error) {
	data, err := r.client.Get(ctx, jobKeyPrefix+jobID).Bytes()
	if err != nil {
		return nil, err
	}
	var job storedJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}
	return &job, nil
}

func (r *QueueRepository) save(ctx context.Context, job *storedJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	return r.client.Set(ctx, jobKeyPrefix+job.ID, data, jobTTL).Err()
}

func (j *storedJob) toDomain() *domain.QueueJob {
	out := &domain.QueueJob{
		ID:        j.ID,
		Type:      j.Type,
		Payload:   j.Payload,
		Status:    j.Status,
		CreatedAt: j.CreatedAt.Format(time.RFC3339),
	}
	if j.UpdatedAt != nil {
		updated := j.UpdatedAt.Format(time.RFC3339)
		out.UpdatedAt = &updated
	}
	return out
}

// dedupeKey identifies jobs that would do the same work
func dedupeKey(payload map[string]interface{}) string {
	if id, ok := payload["page_id"].(string); ok {
		return id
	}
	return ""
}

// backoff doubles per attempt: 30s, 1m, 2m, capped at maxBackoff
func backoff(attempt int) time.Duration {
	d := initialBackoff
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
