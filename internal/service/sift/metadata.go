package sift

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// PageMeta is the Open Graph enrichment for a URL. Empty means not found.
type PageMeta struct {
	Title   string
	OGImage string
}

// MetadataFetcher fetches best-effort page metadata. It never fails.
type MetadataFetcher interface {
	Fetch(ctx context.Context, url string) PageMeta
}

// HTMLRenderer returns the rendered HTML of a page
type HTMLRenderer interface {
	Render(ctx context.Context, url string) (string, error)
}

const (
	// Crawler UA; most sites serve Open Graph tags to it without a challenge
	metadataUserAgent = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
	metadataAccept    = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"

	maxHTMLBytes = 2 << 20
)

// HTTPMetadataFetcher reads og:image and the page title with one GET, and
// optionally retries through a headless browser when that finds nothing
type HTTPMetadataFetcher struct {
	client   *http.Client
	renderer HTMLRenderer
	logger   *slog.Logger
}

// NewHTTPMetadataFetcher creates a fetcher. renderer may be nil.
func NewHTTPMetadataFetcher(timeout time.Duration, renderer HTMLRenderer, logger *slog.Logger) *HTTPMetadataFetcher {
	return &HTTPMetadataFetcher{
		client:   &http.Client{Timeout: timeout},
		renderer: renderer,
		logger:   logger,
	}
}

func (f *HTTPMetadataFetcher) Fetch(ctx context.Context, url string) PageMeta {
	meta, err := f.fetchHTTP(ctx, url)
	if err != nil {
		f.logger.Info("Metadata fetch failed", "url", url, "error", err)
	}

	if meta.OGImage == "" && f.renderer != nil && ctx.Err() == nil {
		html, err := f.renderer.Render(ctx, url)
		if err != nil {
			f.logger.Info("Browser metadata fetch failed", "url", url, "error", err)
			return meta
		}
		rendered, err := ExtractMeta([]byte(html), "text/html; charset=utf-8")
		if err == nil {
			meta = mergeMeta(meta, rendered)
		}
	}

	return meta
}

func (f *HTTPMetadataFetcher) fetchHTTP(ctx context.Context, url string) (PageMeta, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return PageMeta{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", metadataUserAgent)
	req.Header.Set("Accept", metadataAccept)

	resp, err := f.client.Do(req)
	if err != nil {
		return PageMeta{}, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	// Error pages still carry usable tags often enough to parse them anyway
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxHTMLBytes))
	if err != nil {
		return PageMeta{}, fmt.Errorf("failed to read page: %w", err)
	}

	return ExtractMeta(body, resp.Header.Get("Content-Type"))
}

// ExtractMeta parses og:image and a title out of raw HTML. The <title>
// element wins over og:title.
func ExtractMeta(body []byte, contentType string) (PageMeta, error) {
	enc, _, _ := charset.DetermineEncoding(body, contentType)
	utf8Body, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		if !utf8.Valid(body) {
			return PageMeta{}, fmt.Errorf("failed to decode page: %w", err)
		}
		utf8Body = body
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(utf8Body))
	if err != nil {
		return PageMeta{}, fmt.Errorf("failed to parse page: %w", err)
	}

	meta := PageMeta{
		OGImage: strings.TrimSpace(doc.Find(`meta[property="og:image"]`).First().AttrOr("content", "")),
		Title:   strings.TrimSpace(doc.Find("title").First().Text()),
	}
	if meta.Title == "" {
		meta.Title = strings.TrimSpace(doc.Find(`meta[property="og:title"]`).First().AttrOr("content", ""))
	}
	return meta, nil
}

func mergeMeta(primary, secondary PageMeta) PageMeta {
	if primary.Title == "" {
		primary.Title = secondary.Title
	}
	if primary.OGImage == "" {
		primary.OGImage = secondary.OGImage
	}
	return primary
}
