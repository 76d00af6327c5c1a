package domain

import (
	"context"

	"github.com/google/uuid"
)

// PageRepository defines the interface for page data operations
type PageRepository interface {
	// Create inserts a new page and fills in its ID and CreatedAt
	Create(ctx context.Context, page *Page) error

	// GetByID retrieves a page by its UUID
	GetByID(ctx context.Context, id uuid.UUID) (*Page, error)

	// List returns non-archived pages, pinned first then newest
	List(ctx context.Context, filter PageFilter) ([]*Page, error)

	// ListArchived returns archived pages, newest first
	ListArchived(ctx context.Context) ([]*Page, error)

	// SetArchived soft-deletes or restores a page
	SetArchived(ctx context.Context, id uuid.UUID, archived bool) (*Page, error)

	// SetPinned pins or unpins a page
	SetPinned(ctx context.Context, id uuid.UUID, pinned bool) (*Page, error)

	// Delete removes a page permanently
	Delete(ctx context.Context, id uuid.UUID) error

	// UpdateImageURL replaces metadata.image_url, leaving everything else alone
	UpdateImageURL(ctx context.Context, id uuid.UUID, imageURL string) error

	// ListImages returns every page that has an image URL
	ListImages(ctx context.Context) ([]PageImage, error)

	// CountByCategory counts non-archived pages per metadata category
	CountByCategory(ctx context.Context) (map[string]int, error)
}

// QueueRepository defines the interface for job queue operations
type QueueRepository interface {
	// Enqueue adds a new job to the queue
	Enqueue(ctx context.Context, jobType string, payload interface{}) error

	// Dequeue retrieves the next job from the queue, nil when none arrived
	Dequeue(ctx context.Context, jobType string) (*QueueJob, error)

	// Complete marks a job as completed
	Complete(ctx context.Context, jobID string) error

	// Fail marks a job as failed with error details
	Fail(ctx context.Context, jobID string, errorMsg string) error

	// GetPendingCount returns the number of pending jobs
	GetPendingCount(ctx context.Context, jobType string) (int, error)

	// ProcessRetryJobs moves due retries back onto the pending list
	ProcessRetryJobs(ctx context.Context, jobType string) error
}

// QueueJob represents a job in the processing queue
type QueueJob struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Payload   map[string]interface{} `json:"payload"`
	Status    string                 `json:"status"`
	CreatedAt string                 `json:"created_at"`
	UpdatedAt *string                `json:"updated_at"`
}

// Job types
const (
	JobTypeRehostImage = "rehost_image"
)

// Job statuses
const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// RehostPayload is the body of a rehost_image job
type RehostPayload struct {
	PageID   string `json:"page_id"`
	ImageURL string `json:"image_url"`
}
