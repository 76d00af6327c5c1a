package sift

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Rehoster copies a third-party image into owned storage and returns the
// permanent URL
type Rehoster interface {
	Rehost(ctx context.Context, imageURL string) (string, error)
}

// ObjectStore is the storage bucket covers are written to
type ObjectStore interface {
	Upload(ctx context.Context, path, contentType string, data []byte) error
	PublicURL(path string) string
}

// ErrImageTooLarge rejects covers that would be stored truncated
var ErrImageTooLarge = errors.New("image too large")

const (
	defaultImageType = "image/jpeg"
	defaultImageExt  = "jpg"
	maxImageBytes    = 20 << 20
)

// ImageRehoster downloads covers and uploads them under covers/
type ImageRehoster struct {
	client *http.Client
	store  ObjectStore
	logger *slog.Logger
	now    func() time.Time
}

func NewImageRehoster(store ObjectStore, timeout time.Duration, logger *slog.Logger) *ImageRehoster {
	return &ImageRehoster{
		client: &http.Client{Timeout: timeout},
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

func (r *ImageRehoster) Rehost(ctx context.Context, imageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create image request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image download returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) > maxImageBytes {
		return "", fmt.Errorf("%w: more than %d bytes", ErrImageTooLarge, maxImageBytes)
	}

	contentType, ext := imageType(resp.Header.Get("Content-Type"))
	path := r.objectPath(ext)

	if err := r.store.Upload(ctx, path, contentType, data); err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	publicURL := r.store.PublicURL(path)
	r.logger.Info("Image re-hosted", "source", imageURL, "url", publicURL, "bytes", len(data))
	return publicURL, nil
}

// objectPath is covers/{unix millis}-{random}.{ext}
func (r *ImageRehoster) objectPath(ext string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("covers/%d-%s.%s", r.now().UnixMilli(), suffix, ext)
}

// imageType derives the upload content type and file extension from a
// response Content-Type. Unknown or missing types become image/jpeg.
func imageType(header string) (string, string) {
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil || mediaType == "" {
		return defaultImageType, defaultImageExt
	}

	_, subtype, found := strings.Cut(mediaType, "/")
	if !found || subtype == "" {
		return defaultImageType, defaultImageExt
	}

	// image/svg+xml -> svg
	ext, _, _ := strings.Cut(subtype, "+")
	return mediaType, ext
}
