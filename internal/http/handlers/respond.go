package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"sift-api/internal/domain"
)

// errorResponse is the body of every non-2xx reply
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSONResponse writes data with the given status code
func writeJSONResponse(w http.ResponseWriter, logger *slog.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	writeJSONResponse(w, logger, status, errorResponse{Error: message})
}

// writeRepoError maps repository errors onto status codes
func writeRepoError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrPageNotFound):
		writeError(w, logger, http.StatusNotFound, "Page not found")
	case errors.Is(err, domain.ErrInvalidAction):
		writeError(w, logger, http.StatusBadRequest, err.Error())
	default:
		logger.Error("Repository call failed", "error", err)
		writeError(w, logger, http.StatusInternalServerError, err.Error())
	}
}

// parsePageID validates an id from a path or query parameter
func parsePageID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, errors.New("id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.New("invalid page id")
	}
	return id, nil
}

// queryInt reads a non-negative integer, falling back to def when absent or
// out of [0, max]
func queryInt(r *http.Request, key string, def, max int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > max {
		return def
	}
	return n
}

// orEmpty keeps JSON arrays from encoding as null
func orEmpty(pages []*domain.Page) []*domain.Page {
	if pages == nil {
		return []*domain.Page{}
	}
	return pages
}
