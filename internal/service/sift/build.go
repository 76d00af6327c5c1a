package sift

import (
	"log/slog"

	"sift-api/internal/config"
	"sift-api/internal/domain"
	"sift-api/internal/pkg/metrics"
	"sift-api/internal/repository/supabase"
)

// Build wires a pipeline from configuration, enabling each capability
// whose credentials are present. queue and m may be nil. The returned
// function releases the headless browser if one was started.
func Build(cfg *config.Config, pages domain.PageRepository, queue domain.QueueRepository, m *metrics.Metrics, logger *slog.Logger) (*Pipeline, func()) {
	deps := Deps{Queue: queue, Metrics: m}
	cleanup := func() {}

	var renderer HTMLRenderer
	if cfg.BrowserFallback {
		rod := NewRodRenderer(cfg.MetadataTimeout, logger)
		renderer = rod
		cleanup = func() {
			if err := rod.Close(); err != nil {
				logger.Warn("Failed to close headless browser", "error", err)
			}
		}
	}
	deps.Metadata = NewHTTPMetadataFetcher(cfg.MetadataTimeout, renderer, logger)

	if cfg.ScraperEnabled() {
		deps.Scraper = NewApifyScraper(cfg.ApifyBaseURL, cfg.ApifyToken, cfg.ScrapeTimeout, logger)
	}

	if cfg.StorageEnabled() {
		storage := supabase.NewStorage(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseBucket, logger)
		deps.Rehoster = NewImageRehoster(storage, cfg.ImageTimeout, logger)
	}

	if cfg.SummarizerEnabled() {
		deps.Summarizer = NewAnthropicSummarizer(cfg.AnthropicKey, cfg.AnthropicModel, cfg.SummaryTimeout, logger)
	}

	logger.Info("Sift pipeline configured",
		"scraper", deps.Scraper != nil,
		"summarizer", deps.Summarizer != nil,
		"rehost", deps.Rehoster != nil,
		"retry_queue", queue != nil,
		"browser_fallback", renderer != nil,
	)

	return NewPipeline(pages, deps, logger), cleanup
}
