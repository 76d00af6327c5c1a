package handlers

import (
	"log/slog"
	"math"
	"net/http"
	"strings"

	"sift-api/internal/domain"
)

const (
	DefaultPaginationLimit = 25
	maxPaginationLimit     = 100
	maxQueryLength         = 500
)

type PagesHandler struct {
	logger   *slog.Logger
	pageRepo domain.PageRepository
}

// PagesResponse is one page of the library listing
type PagesResponse struct {
	Pages   []*domain.Page `json:"pages"`
	HasMore bool           `json:"has_more"`
	Offset  int            `json:"offset"`
	Limit   int            `json:"limit"`
}

func NewPagesHandler(logger *slog.Logger, pageRepo domain.PageRepository) *PagesHandler {
	return &PagesHandler{
		logger:   logger,
		pageRepo: pageRepo,
	}
}

// ListPages serves the library: non-archived pages, pinned first
func (h *PagesHandler) ListPages(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if len(query) > maxQueryLength {
		writeError(w, h.logger, http.StatusBadRequest, "Search query too long (max 500 characters)")
		return
	}

	limit := queryInt(r, "limit", DefaultPaginationLimit, maxPaginationLimit)
	if limit == 0 {
		limit = DefaultPaginationLimit
	}
	offset := queryInt(r, "offset", 0, math.MaxInt32)

	// One extra row tells us whether another page exists
	pages, err := h.pageRepo.List(r.Context(), domain.PageFilter{
		Query:    query,
		Tag:      strings.TrimSpace(r.URL.Query().Get("tag")),
		Category: strings.TrimSpace(r.URL.Query().Get("category")),
		Offset:   offset,
		Limit:    limit + 1,
	})
	if err != nil {
		writeRepoError(w, h.logger, err)
		return
	}

	hasMore := len(pages) > limit
	if hasMore {
		pages = pages[:limit]
	}

	h.logger.Debug("Listed pages", "count", len(pages), "query", query, "has_more", hasMore)
	writeJSONResponse(w, h.logger, http.StatusOK, PagesResponse{
		Pages:   orEmpty(pages),
		HasMore: hasMore,
		Offset:  offset,
		Limit:   limit,
	})
}

func (h *PagesHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	id, err := parsePageID(r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.pageRepo.GetByID(r.Context(), id)
	if err != nil {
		writeRepoError(w, h.logger, err)
		return
	}
	writeJSONResponse(w, h.logger, http.StatusOK, page)
}

// TogglePin flips is_pinned and returns the updated page
func (h *PagesHandler) TogglePin(w http.ResponseWriter, r *http.Request) {
	id, err := parsePageID(r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.pageRepo.GetByID(r.Context(), id)
	if err != nil {
		writeRepoError(w, h.logger, err)
		return
	}

	page, err = h.pageRepo.SetPinned(r.Context(), id, !page.IsPinned)
	if err != nil {
		writeRepoError(w, h.logger, err)
		return
	}

	h.logger.Info("Page pin toggled", "page_id", id, "pinned", page.IsPinned)
	writeJSONResponse(w, h.logger, http.StatusOK, PageResponse{Success: true, Page: page})
}

func (h *PagesHandler) DeletePage(w http.ResponseWriter, r *http.Request) {
	id, err := parsePageID(r.PathValue("id"))
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
