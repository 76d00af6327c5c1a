package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"sift-api/internal/domain"
	"sift-api/internal/service/sift"
)

// maxSiftBody bounds the ingestion request body
const maxSiftBody = 64 << 10

// Sifter runs the ingestion pipeline
type Sifter interface {
	Sift(ctx context.Context, req sift.Request) (*sift.Result, error)
}

type SiftHandler struct {
	logger   *slog.Logger
	pipeline Sifter
}

// SiftResponse is the success body of POST /api/sift
type SiftResponse struct {
	Success bool         `json:"success"`
	Page    *domain.Page `json:"page"`
}

func NewSiftHandler(logger *slog.Logger, pipeline Sifter) *SiftHandler {
	return &SiftHandler{
		logger:   logger,
		pipeline: pipeline,
	}
}

// HandleSift ingests one link. The pipeline outlives a disconnected client so
// a started ingestion still lands in the library.
func (h *SiftHandler) HandleSift(w http.ResponseWriter, r *http.Request) {
	var req sift.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSiftBody)).Decode(&req); err != nil {
		h.logger.Warn("Invalid sift request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := context.WithoutCancel(r.Context())
	result, err := h.pipeline.Sift(ctx, req)
	if err != nil {
		if errors.Is(err, domain.ErrURLRequired) {
			writeError(w, h.logger, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Sift failed", "url", req.URL, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.Info("Sift completed",
		"page_id", result.Page.ID,
		"mode", result.Mode,
		"platform", result.Page.Platform,
	)
	writeJSONResponse(w, h.logger, http.StatusOK, SiftResponse{Success: true, Page: result.Page})
}
