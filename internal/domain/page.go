package domain

import (
	"time"

	"github.com/google/uuid"
)

// Page is one sifted link as stored in the pages table
type Page struct {
	ID       uuid.UUID `json:"id" db:"id"`
	URL      string    `json:"url" db:"url"`
	Platform string    `json:"platform" db:"platform"`
	Title    string    `json:"title" db:"title"`
	Summary  string    `json:"summary" db:"summary"`

	// Content mirrors Summary; the mobile reader renders it as markdown
	Content string   `json:"content" db:"content"`
	Tags    []string `json:"tags" db:"tags"`

	// Metadata is stored as JSONB so new keys need no migration
	Metadata PageMetadata `json:"metadata" db:"metadata"`

	IsPinned   bool      `json:"is_pinned" db:"is_pinned"`
	IsArchived bool      `json:"is_archived" db:"is_archived"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// PageMetadata is the free-form blob persisted alongside a page
type PageMetadata struct {
	Source    string    `json:"source"`
	ScrapedAt time.Time `json:"scraped_at"`
	ImageURL  *string   `json:"image_url"`
	Category  string    `json:"category"`
}

// MetadataSource marks pages written by the ingestion endpoint
const MetadataSource = "sift-api"

// PlatformHintUnknown is stored when the caller sends no platform hint
const PlatformHintUnknown = "unknown"

// PageFilter narrows library listings. Empty fields match everything.
type PageFilter struct {
	Query    string
	Tag      string
	Category string
	Offset   int
	Limit    int
}

// PageImage is the projection used by the asset health scan
type PageImage struct {
	ID       uuid.UUID
	Title    string
	ImageURL string
}

// HasTag reports whether the page carries tag, ignoring case
func (p *Page) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if equalFold(t, tag) {
			return true
		}
	}
	return false
}

// InCategory matches the library grid: metadata category first, then tags
func (p *Page) InCategory(category string) bool {
	if p.Metadata.Category == category {
		return true
	}
	for _, t := range p.Tags {
		if t == category {
			return true
		}
	}
	return false
}
