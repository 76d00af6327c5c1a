package sift

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"sift-api/internal/domain"
	"sift-api/internal/pkg/metrics"
)

// MockCaption stands in for scraped content when no scraper is configured
const MockCaption = "Test Caption"

// Request is one link to sift
type Request struct {
	URL      string `json:"url"`
	Platform string `json:"platform"`
}

// Deps are the pipeline's optional capabilities. A nil field degrades its
// stage: no Scraper means mock content, no Summarizer means bookmark mode,
// no Rehoster keeps third-party image URLs, no Queue skips retry jobs.
type Deps struct {
	Metadata   MetadataFetcher
	Scraper    Scraper
	Rehoster   Rehoster
	Summarizer Summarizer
	Queue      domain.QueueRepository
	Metrics    *metrics.Metrics
}

// Pipeline turns a URL into a persisted page. Every stage except the final
// write absorbs its own failure.
type Pipeline struct {
	pages  domain.PageRepository
	deps   Deps
	logger *slog.Logger
	now    func() time.Time
}

func NewPipeline(pages domain.PageRepository, deps Deps, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		pages:  pages,
		deps:   deps,
		logger: logger.With("component", "sift"),
		now:    time.Now,
	}
}

// run is the working state of one ingestion
type run struct {
	log      *slog.Logger
	result   *Result
	route    Route
	meta     PageMeta
	content  domain.NormalizedContent
	scraped  bool
	imageURL string
}

// Sift runs every stage in order and stores the page. The only error
// returned for a valid URL is a failed write.
func (p *Pipeline) Sift(ctx context.Context, req Request) (*Result, error) {
	url := strings.TrimSpace(req.URL)
	if url == "" {
		return nil, domain.ErrURLRequired
	}

	platformHint := strings.TrimSpace(req.Platform)
	if platformHint == "" {
		platformHint = domain.PlatformHintUnknown
	}

	start := p.now()
	r := &run{
		log:    p.logger.With("url", url),
		result: &Result{},
		route:  RouteURL(url),
	}
	r.log.Info("Sifting link", "platform_hint", platformHint, "platform", r.route.Platform)

	p.fetchMetadata(ctx, r, url)
	p.scrape(ctx, r)
	rehostFailed := p.rehost(ctx, r)
	summary := p.summarize(ctx, r, url)

	page := &domain.Page{
		URL:      url,
		Platform: platformHint,
		Title:    summary.Title,
		Summary:  summary.Summary,
		Content:  summary.Summary,
		Tags:     summary.Tags,
		Metadata: domain.PageMetadata{
			Source:    domain.MetadataSource,
			ScrapedAt: start.UTC(),
			ImageURL:  optional(r.imageURL),
			Category:  summary.Category,
		},
	}

	if err := p.pages.Create(ctx, page); err != nil {
		p.record(r, fatal(StagePersist, err))
		return nil, fmt.Errorf("failed to save page: %w", err)
	}
	p.record(r, succeeded(StagePersist))
	r.result.Page = page

	if rehostFailed {
		p.enqueueRehost(ctx, r, page)
	}

	p.deps.Metrics.ObservePage(string(r.result.Mode), p.now().Sub(start).Seconds())
	r.log.Info("Page saved",
		"page_id", page.ID,
		"mode", r.result.Mode,
		"category", page.Metadata.Category,
		"duration", p.now().Sub(start),
	)
	return r.result, nil
}

func (p *Pipeline) fetchMetadata(ctx context.Context, r *run, url string) {
	if p.deps.Metadata == nil {
		p.record(r, skipped(StageMetadata, "no metadata fetcher"))
		return
	}
	r.meta = p.deps.Metadata.Fetch(ctx, url)
	if r.meta == (PageMeta{}) {
		p.record(r, skipped(StageMetadata, "no metadata found"))
		return
	}
	p.record(r, succeeded(StageMetadata))
}

// scrape fills r.content. Without a scraper the content is a fixed mock
// that carries no page title, so a bookmark falls back to the hostname.
func (p *Pipeline) scrape(ctx context.Context, r *run) {
	if p.deps.Scraper == nil {
		r.content = domain.NormalizedContent{Caption: MockCaption}
		r.scraped = true
		r.imageURL = r.meta.OGImage
		p.record(r, skipped(StageScrape, "no scraper configured, using mock content"))
		return
	}

	item, err := p.deps.Scraper.Scrape(ctx, r.route)
	if err != nil {
		// Partial scrape state is discarded; only Open Graph data survives
		p.record(r, degraded(StageScrape, err))
		r.imageURL = r.meta.OGImage
		return
	}
	r.content = Normalize(DecodeRaw(r.route.Platform, item))
	r.scraped = true
	p.record(r, succeeded(StageScrape))

	if r.content.Title == "" {
		r.content.Title = r.meta.Title
	}
	// Scraper covers beat generic Open Graph images
	r.imageURL = firstNonEmpty(r.content.ImageURL, r.meta.OGImage)
}

// rehost swaps r.imageURL for an owned copy. It reports whether a copy was
// attempted and failed.
func (p *Pipeline) rehost(ctx context.Context, r *run) bool {
	switch {
	case !r.scraped:
		p.record(r, skipped(StageRehost, "scrape failed"))
		return false
	case r.imageURL == "":
		p.record(r, skipped(StageRehost, "no image candidate"))
		return false
	case p.deps.Rehoster == nil:
		p.record(r, skipped(StageRehost, "no storage configured"))
		return false
	}

	hosted, err := p.deps.Rehoster.Rehost(ctx, r.imageURL)
	if err != nil {
		p.record(r, degraded(StageRehost, err))
		p.deps.Metrics.ObserveRehost("failed")
		return true
	}

	p.deps.Metrics.ObserveRehost("ok")
	r.imageURL = hosted
	p.record(r, succeeded(StageRehost))
	return false
}

// summarize applies the content gate and the model, falling back to a
// bookmark when there is nothing to analyze
func (p *Pipeline) summarize(ctx context.Context, r *run, url string) domain.AISummary {
	if !r.scraped {
		p.record(r, skipped(StageGate, "scrape failed"))
		return p.bookmark(r, url, r.meta.Title)
	}

	if !r.content.HasAnalyzableContent() {
		p.record(r, degraded(StageGate, domain.ErrContentTooShort))
		return p.bookmark(r, url, r.content.Title)
	}
	p.record(r, succeeded(StageGate))

	if p.deps.Summarizer == nil {
		p.record(r, skipped(StageSummarize, "no summarizer configured"))
		return p.bookmark(r, url, r.content.Title)
	}

	summary, err := p.deps.Summarizer.Summarize(ctx, r.content)
	if err != nil {
		p.record(r, degraded(StageSummarize, err))
		r.result.Mode = ModeDefaults
		return defaultSummary()
	}

	p.record(r, succeeded(StageSummarize))
	r.result.Mode = ModeSummarized
	return summary
}

func (p *Pipeline) bookmark(r *run, url, title string) domain.AISummary {
	r.result.Mode = ModeBookmark
	return Bookmark(url, title)
}

func (p *Pipeline) enqueueRehost(ctx context.Context, r *run, page *domain.Page) {
	if p.deps.Queue == nil || r.imageURL == "" {
		return
	}
	payload := domain.RehostPayload{PageID: page.ID.String(), ImageURL: r.imageURL}
	if err := p.deps.Queue.Enqueue(ctx, domain.JobTypeRehostImage, payload); err != nil {
		r.log.Warn("Failed to enqueue image re-host", "page_id", page.ID, "error", err)
	}
}

// record appends the outcome, logs it and counts it
func (p *Pipeline) record(r *run, o Outcome) {
	r.result.Outcomes = append(r.result.Outcomes, o)
	p.deps.Metrics.ObserveStage(o.Stage, o.Status.String())

	attrs := []any{"stage", o.Stage, "status", o.Status.String()}
	if o.Reason != "" {
		attrs = append(attrs, "reason", o.Reason)
	}

	switch o.Status {
	case StatusFatal:
		r.log.Error("Stage failed", attrs...)
	case StatusDegraded:
		r.log.Warn("Stage degraded", attrs...)
	default:
		r.log.Debug("Stage finished", attrs...)
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
