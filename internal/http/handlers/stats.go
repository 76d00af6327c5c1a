package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"sift-api/internal/domain"
)

type StatsHandler struct {
	logger   *slog.Logger
	pageRepo domain.PageRepository
}

// StatsResponse feeds the library category grid
type StatsResponse struct {
	Total      int            `json:"total"`
	Categories map[string]int `json:"categories"`
	Timestamp  string         `json:"timestamp"`
}

func NewStatsHandler(logger *slog.Logger, pageRepo domain.PageRepository) *StatsHandler {
	return &StatsHandler{
		logger:   logger,
		pageRepo: pageRepo,
	}
}

func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.pageRepo.CountByCategory(r.Context())
	if err != nil {
		writeRepoError(w, h.logger, err)
		return
	}

	// Every category appears, even when empty
	categories := make(map[string]int, len(domain.Categories))
	for _, c := range domain.Categories {
		categories[c] = 0
	}
	total := 0
	for c, n := range counts {
		categories[c] = n
		total += n
	}

	writeJSONResponse(w, h.logger, http.StatusOK, StatsResponse{
		Total:      total,
		Categories: categories,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})
}
