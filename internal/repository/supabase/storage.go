package supabase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Storage uploads objects to a Supabase storage bucket over its REST API
type Storage struct {
	baseURL    string
	serviceKey string
	bucket     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewStorage creates a storage client for one bucket
func NewStorage(baseURL, serviceKey, bucket string, logger *slog.Logger) *Storage {
	return &Storage{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		bucket:     bucket,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
	}
}

// Upload writes data at path, replacing any existing object
func (s *Storage) Upload(ctx context.Context, path, contentType string, data []byte) error {
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("apikey", s.serviceKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		s.logger.Warn("Storage upload rejected",
			"status", resp.StatusCode,
			"path", path,
			"body", string(body),
		)
		return fmt.Errorf("storage upload returned status %d", resp.StatusCode)
	}

	s.logger.Debug("Object uploaded", "bucket", s.bucket, "path", path, "bytes", len(data))
	return nil
}

// PublicURL is the unauthenticated address of an object in a public bucket
func (s *Storage) PublicURL(path string) string {
	return s.PublicBase() + path
}

// PublicBase is the prefix shared by every public URL in the bucket
func (s *Storage) PublicBase() string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/", s.baseURL, s.bucket)
}
