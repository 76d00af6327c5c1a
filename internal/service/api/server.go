package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"sift-api/internal/config"
	"sift-api/internal/domain"
	httprouter "sift-api/internal/http"
	"sift-api/internal/http/handlers"
	"sift-api/internal/pkg/metrics"
)

// APIService handles HTTP API requests
type APIService struct {
	config *config.Config
	logger *slog.Logger

	// HTTP server
	server *http.Server
}

// New creates a new API service
func New(
	config *config.Config,
	logger *slog.Logger,
	pageRepo domain.PageRepository,
	pipeline handlers.Sifter,
	m *metrics.Metrics,
) *APIService {
	router := httprouter.NewRouter(logger, config.APIKey, pageRepo, pipeline, m)

	return &APIService{
		config: config,
		logger: logger,
		server: &http.Server{
			Addr:        ":" + config.Port,
			Handler:     router.SetupRoutes(),
			ReadTimeout: 15 * time.Second,
			// A sift waits on the scraper and the model in sequence
			WriteTimeout: config.ScrapeTimeout + config.SummaryTimeout + time.Minute,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Handler exposes the routed handler for tests
func (s *APIService) Handler() http.Handler {
	return s.server.Handler
}

// Start begins serving the API. It returns nil after a graceful Stop.
func (s *APIService) Start() error {
	s.logger.Info("Starting API server", "port", s.config.Port)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts down the API server
func (s *APIService) Stop(ctx context.Context) error {
	s.logger.Info("Stopping API server...")
	return s.server.Shutdown(ctx)
}
