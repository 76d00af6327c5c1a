package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"sift-api/internal/domain"
)

// Archive actions accepted by PUT /api/archive
const (
	ActionArchive = "archive"
	ActionRestore = "restore"
)

type ArchiveHandler struct {
	logger   *slog.Logger
	pageRepo domain.PageRepository
}

// ArchiveRequest is the body of PUT /api/archive
type ArchiveRequest struct {
	ID     string `json:"id"`
	Action string `json:"action"`
}

// PageResponse wraps a single mutated page
type PageResponse struct {
	Success bool         `json:"success"`
	Page    *domain.Page `json:"page,omitempty"`
}

func NewArchiveHandler(logger *slog.Logger, pageRepo domain.PageRepository) *ArchiveHandler {
	return &ArchiveHandler{
		logger:   logger,
		pageRepo: pageRepo,
	}
}

// GetArchived returns archived pages as a bare array, newest first
func (h *ArchiveHandler) GetArchived(w http.ResponseWriter, r *http.Request) {
	pages, err := h.pageRepo.ListArchived(r.Context())
	if err != nil {
		writeRepoError(w, h.logger, err)
		return
	}
	h.logger.Debug("Retrieved archive", "count", len(pages))
	writeJSONResponse(w, h.logger, http.StatusOK, orEmpty(pages))
}

// UpdateArchive archives or restores a page
func (h *ArchiveHandler) UpdateArchive(w http.ResponseWriter, r *http.Request) {
	var req ArchiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	id, err := parsePageID(req.ID)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	var archived bool
	switch req.Action {
	case ActionArchive:
		archived = true
	case ActionRestore:
		archived = false
	default:
		writeRepoError(w, h.logger, domain.ErrInvalidAction)
		return
	}

	page, err := h.pageRepo.SetArchived(r.Context(), id, archived)
	if err != nil {
		writeRepoError(w, h.logger, err)
		return
	}

	h.logger.Info("Page archive state changed", "page_id", id, "action", req.Action)
	writeJSONResponse(w, h.logger, http.StatusOK, PageResponse{Success: true, Page: page})
}

// DeleteArchived hard-deletes the page named by ?id=
func (h *ArchiveHandler) DeleteArchived(w http.ResponseWriter, r *http.Request) {
	id, err := parsePageID(r.URL.Query().Get("id"))
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.pageRepo.Delete(r.Context(), id); err != nil {
		writeRepoError(w, h.logger, err)
		return
	}

	h.logger.Info("Page deleted", "page_id", id)
	writeJSONResponse(w, h.logger, http.StatusOK, PageResponse{Success: true})
}
