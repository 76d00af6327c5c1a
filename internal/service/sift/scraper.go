package sift

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sift-api/internal/domain"
)

// Scraper runs the platform actor for a route and returns its first item
type Scraper interface {
	Scrape(ctx context.Context, route Route) (map[string]any, error)
}

// ApifyScraper calls Apify's synchronous run endpoint, which starts the
// actor, waits for it and returns the dataset items in one response
type ApifyScraper struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *slog.Logger
}

func NewApifyScraper(baseURL, token string, timeout time.Duration, logger *slog.Logger) *ApifyScraper {
	return &ApifyScraper{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (s *ApifyScraper) Scrape(ctx context.Context, route Route) (map[string]any, error) {
	body, err := json.Marshal(route.Input)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal actor input: %w", err)
	}

	// Actor names use "~" in place of "/" in API paths
	actor := strings.ReplaceAll(route.Actor, "/", "~")
	endpoint := fmt.Sprintf("%s/v2/acts/%s/run-sync-get-dataset-items",
		s.baseURL, url.PathEscape(actor))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create actor request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// Header, not query: transport errors quote the full URL
	req.Header.Set("Authorization", "Bearer "+s.token)

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("actor %s call failed: %w", route.Actor, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("actor %s returned status %d: %s",
			route.Actor, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var items []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode actor dataset: %w", err)
	}

	s.logger.Debug("Actor finished",
		"actor", route.Actor,
		"items", len(items),
		"duration", time.Since(start),
	)

	if len(items) == 0 || items[0] == nil {
		return nil, domain.ErrNoItems
	}
	return items[0], nil
}
