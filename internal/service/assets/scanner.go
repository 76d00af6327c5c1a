// Package assets finds page covers still served from third-party CDNs whose
// signed URLs expire, and queues them for re-hosting.
package assets

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"sift-api/internal/domain"
	"sift-api/internal/pkg/urldetector"
)

// ephemeralMarkers are host fragments of CDNs that sign and expire image URLs
var ephemeralMarkers = []string{
	"fbcdn",
	"instagram",
	"tiktokcdn",
	"ibyteimg",
	"muscdn",
}

// IsEphemeral reports whether imageURL points at an expiring CDN. Anything
// under ownedBase is permanent regardless of host.
func IsEphemeral(imageURL, ownedBase string) bool {
	normalized, err := urldetector.NormalizeURL(imageURL)
	if err != nil {
		return false
	}
	if ownedBase != "" {
		if base, err := urldetector.NormalizeURL(ownedBase); err == nil && strings.HasPrefix(normalized, base) {
			return false
		}
	}

	host := strings.ToLower(urldetector.Hostname(normalized))
	for _, marker := range ephemeralMarkers {
		if strings.Contains(host, marker) {
			return true
		}
	}
	return false
}

// Finding is one page with an expiring cover
type Finding struct {
	PageID   uuid.UUID
	Title    string
	ImageURL string
}

// Report summarizes one scan
type Report struct {
	Checked   int
	Ephemeral []Finding
	Enqueued  int
}

// Healthy reports whether every cover is permanent
func (r *Report) Healthy() bool {
	return len(r.Ephemeral) == 0
}

// Scanner checks stored covers and queues rehost_image jobs for expiring ones.
// Repeat scans are safe: the queue keeps one active job per page.
type Scanner struct {
	pages     domain.PageRepository
	queue     domain.QueueRepository
	ownedBase string
	logger    *slog.Logger
}

// NewScanner creates a scanner. A nil queue makes Scan report only.
func NewScanner(pages domain.PageRepository, queue domain.QueueRepository, ownedBase string, logger *slog.Logger) *Scanner {
	return &Scanner{
		pages:     pages,
		queue:     queue,
		ownedBase: ownedBase,
		logger:    logger.With("component", "asset_scanner"),
	}
}

func (s *Scanner) Scan(ctx context.Context) (*Report, error) {
	images, err := s.pages.ListImages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list page images: %w", err)
	}

	report := &Report{Checked: len(images)}
	for _, img := range images {
		if !IsEphemeral(img.ImageURL, s.ownedBase) {
			continue
		}
		report.Ephemeral = append(report.Ephemeral, Finding{
			PageID:   img.ID,
			Title:    img.Title,
			ImageURL: img.ImageURL,
		})

		if s.queue == nil {
			continue
		}
		payload := domain.RehostPayload{PageID: img.ID.String(), ImageURL: img.ImageURL}
		if err := s.queue.Enqueue(ctx, domain.JobTypeRehostImage, payload); err != nil {
			s.logger.Warn("Failed to enqueue re-host", "page_id", img.ID, "error", err)
			continue
		}
		report.Enqueued++
	}

	if report.Healthy() {
		s.logger.Info("Asset health check passed", "checked", report.Checked)
	} else {
		s.logger.Warn("Found pages with expiring covers",
			"checked", report.Checked,
			"ephemeral", len(report.Ephemeral),
			"enqueued", report.Enqueued,
		)
	}
	return report, nil
}
