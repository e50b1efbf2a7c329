package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/mini-rodalies-3d/subway/internal/subway"
	"github.com/mini-rodalies-3d/subway/models"
)

// PathService defines the path query used by PathHandler
type PathService interface {
	FindPath(ctx context.Context, sourceID, targetID int64) (subway.Path, error)
}

// PathHandler handles shortest path queries
type PathHandler struct {
	svc PathService
}

// NewPathHandler creates a new handler with the given service
func NewPathHandler(svc PathService) *PathHandler {
	return &PathHandler{svc: svc}
}

// FindPath handles GET /api/paths?source={id}&target={id}
// Returns the stations along the shortest path and its total distance
func (h *PathHandler) FindPath(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	source, err := strconv.ParseInt(query.Get("source"), 10, 64)
	if err != nil {
		writeBadRequest(w, "source query parameter is required")
		return
	}
	target, err := strconv.ParseInt(query.Get("target"), 10, 64)
	if err != nil {
		writeBadRequest(w, "target query parameter is required")
		return
	}

	path, err := h.svc.FindPath(r.Context(), source, target)
	if err != nil {
		writeServiceError(w, "Failed to find path", err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewPathResponse(path))
}
