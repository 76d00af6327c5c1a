package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"sift-api/internal/domain"
	"sift-api/internal/service/sift"
)

// JobProcessor handles different types of background jobs
type JobProcessor struct {
	logger   *slog.Logger
	pageRepo domain.PageRepository
	rehoster sift.Rehoster
}

// NewJobProcessor creates a new job processor
func NewJobProcessor(
	logger *slog.Logger,
	pageRepo domain.PageRepository,
	rehoster sift.Rehoster,
) *JobProcessor {
	return &JobProcessor{
		logger:   logger,
		pageRepo: pageRepo,
		rehoster: rehoster,
	}
}

// ProcessRehostImage copies a page's cover into owned storage and points
// metadata.image_url at the copy. Jobs for deleted pages, or pages whose
// cover has changed since the job was queued, succeed without work.
func (p *JobProcessor) ProcessRehostImage(ctx context.Context, payload map[string]interface{}, logger *slog.Logger) error {
	pageIDStr, ok := payload["page_id"].(string)
	if !ok {
		return fmt.Errorf("missing or invalid page_id in payload")
	}

	pageID, err := uuid.Parse(pageIDStr)
	if err != nil {
		return fmt.Errorf("invalid page_id format: %w", err)
	}

	imageURL, ok := payload["image_url"].(string)
	if !ok || imageURL == "" {
		return fmt.Errorf("missing or invalid image_url in payload")
	}

	page, err := p.pageRepo.GetByID(ctx, pageID)
	if err != nil {
		if errors.Is(err, domain.ErrPageNotFound) {
			logger.Info("Page deleted before re-host, skipping", "page_id", pageID)
			return nil
		}
		return fmt.Errorf("failed to get page: %w", err)
	}

	if current := page.Metadata.ImageURL; current == nil || *current != imageURL {
		logger.Info("Page cover changed since job was queued, skipping", "page_id", pageID)
		return nil
	}

	hosted, err := p.rehoster.Rehost(ctx, imageURL)
	if err != nil {
		return fmt.Errorf("failed to re-host image: %w", err)
	}

	if err := p.pageRepo.UpdateImageURL(ctx, pageID, hosted); err != nil {
		return fmt.Errorf("failed to update page image: %w", err)
	}

	logger.Info("Cover re-hosted",
		"page_id", pageID,
		"image_url", hosted,
	)
	return nil
}
