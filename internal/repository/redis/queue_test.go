package redis

import (
	"testing"
	"time"
)

func TestBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 30 * time.Second},
		{2, time.Minute},
		{3, 2 * time.Minute},
		{10, maxBackoff},
	}

	for _, tt := range tests {
		if got := backoff(tt.attempt); got != tt.want {
			t.Errorf("backoff(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestDedupeKey(t *testing.T) {
	if got := dedupeKey(map[string]interface{}{"page_id": "abc", "image_url": "x"}); got != "abc" {
		t.Errorf("dedupeKey() = %q, want abc", got)
	}
	if got := dedupeKey(map[string]interface{}{"image_url": "x"}); got != "" {
		t.Errorf("dedupeKey() = %q, want empty", got)
	}
}

func TestStoredJobToDomain(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	job := &storedJob{
		ID:        "job-1",
		Type:      "rehost_image",
		Payload:   map[string]interface{}{"page_id": "p"},
		Status:    "processing",
		CreatedAt: now,
		UpdatedAt: &now,
	}

	got := job.toDomain()
	if got.CreatedAt != "2024-05-01T12:00:00Z" {
		t.Errorf("CreatedAt = %q", got.CreatedAt)
	}
	if got.UpdatedAt == nil || *got.UpdatedAt != got.CreatedAt {
		t.Errorf("UpdatedAt = %v", got.UpdatedAt)
	}
	if got.Payload["page_id"] != "p" {
		t.Errorf("Payload = %v", got.Payload)
	}
}
