package http

import (
	"log/slog"
	"net/http"

	"sift-api/internal/domain"
	"sift-api/internal/http/handlers"
	"sift-api/internal/http/middleware"
	"sift-api/internal/pkg/metrics"
)

type Router struct {
	mux            *http.ServeMux
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auth           *middleware.APIKeyAuth
	healthHandler  *handlers.HealthHandler
	statsHandler   *handlers.StatsHandler
	siftHandler    *handlers.SiftHandler
	archiveHandler *handlers.ArchiveHandler
	pagesHandler   *handlers.PagesHandler
}

func NewRouter(logger *slog.Logger, apiKey string, pageRepo domain.PageRepository, pipeline handlers.Sifter, m *metrics.Metrics) *Router {
	mux := http.NewServeMux()

	return &Router{
		mux:            mux,
		logger:         logger,
		metrics:        m,
		auth:           middleware.NewAPIKeyAuth(apiKey, logger),
		healthHandler:  handlers.NewHealthHandler(logger),
		statsHandler:   handlers.NewStatsHandler(logger, pageRepo),
		siftHandler:    handlers.NewSiftHandler(logger, pipeline),
		archiveHandler: handlers.NewArchiveHandler(logger, pageRepo),
		pagesHandler:   handlers.NewPagesHandler(logger, pageRepo),
	}
}

func (r *Router) SetupRoutes() http.Handler {
	// Health check and metrics stay open
	r.mux.HandleFunc("GET /health", r.healthHandler.HandleHealth)
	r.mux.Handle("GET /metrics", r.metrics.Handler())

	api := http.NewServeMux()

	// Ingestion
	api.HandleFunc("POST /api/sift", r.siftHandler.HandleSift)

	// Archive sub-API
	api.HandleFunc("GET /api/archive", r.archiveHandler.GetArchived)
	api.HandleFunc("PUT /api/archive", r.archiveHandler.UpdateArchive)
	api.HandleFunc("DELETE /api/archive", r.archiveHandler.DeleteArchived)

	// Library
	api.HandleFunc("GET /api/pages", r.pagesHandler.ListPages)
	api.HandleFunc("GET /api/pages/{id}", r.pagesHandler.GetPage)
	api.HandleFunc("DELETE /api/pages/{id}", r.pagesHandler.DeletePage)
	api.HandleFunc("PUT /api/pages/{id}/pin", r.pagesHandler.TogglePin)
	api.HandleFunc("GET /api/stats", r.statsHandler.HandleStats)

	r.mux.Handle("/api/", middleware.Metrics(r.metrics)(r.auth.Middleware(api)))

	return middleware.CORS(middleware.Recover(r.logger)(r.mux))
}
