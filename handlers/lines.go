package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/mini-rodalies-3d/subway/internal/subway"
	"github.com/mini-rodalies-3d/subway/models"
)

// LineService defines the line and section operations used by LineHandler
type LineService interface {
	CreateLine(ctx context.Context, name, color string, upID, downID int64, distance int) (*subway.Line, error)
	GetLine(ctx context.Context, id int64) (*subway.Line, error)
	ListLines(ctx context.Context) ([]*subway.Line, error)
	UpdateLine(ctx context.Context, id int64, name, color string) (*subway.Line, error)
	DeleteLine(ctx context.Context, id int64) error
	AddSegment(ctx context.Context, lineID, upID, downID int64, distance int) (*subway.Line, error)
	RemoveStation(ctx context.Context, lineID, stationID int64) error
}

// LineHandler handles HTTP requests for lines and their sections
type LineHandler struct {
	svc LineService
}

// NewLineHandler creates a new handler with the given service
func NewLineHandler(svc LineService) *LineHandler {
	return &LineHandler{svc: svc}
}

// CreateLine handles POST /api/lines
func (h *LineHandler) CreateLine(w http.ResponseWriter, r *http.Request) {
	var req models.LineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	line, err := h.svc.CreateLine(r.Context(), req.Name, req.Color, req.UpStationID, req.DownStationID, req.Distance)
	if err != nil {
		writeServiceError(w, "Failed to create line", err)
		return
	}

	w.Header().Set("Location", "/api/lines/"+itoa(line.ID))
	writeJSON(w, http.StatusCreated, models.NewLineResponse(line, true))
}

// ListLines handles GET /api/lines
func (h *LineHandler) ListLines(w http.ResponseWriter, r *http.Request) {
	lines, err := h.svc.ListLines(r.Context())
	if err != nil {
		writeServiceError(w, "Failed to retrieve lines", err)
		return
	}

	resp := make([]models.LineResponse, 0, len(lines))
	for _, line := range lines {
		resp = append(resp, models.NewLineResponse(line, false))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetLine handles GET /api/lines/{lineId}
func (h *LineHandler) GetLine(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "lineId")
	if err != nil {
		writeBadRequest(w, "lineId must be an integer")
		return
	}

	line, err := h.svc.GetLine(r.Context(), id)
	if err != nil {
		writeServiceError(w, "Failed to retrieve line", err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewLineResponse(line, true))
}

// UpdateLine handles PUT /api/lines/{lineId}
func (h *LineHandler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "lineId")
	if err != nil {
		writeBadRequest(w, "lineId must be an integer")
		return
	}

	var req models.LineUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	line, err := h.svc.UpdateLine(r.Context(), id, req.Name, req.Color)
	if err != nil {
		writeServiceError(w, "Failed to update line", err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewLineResponse(line, true))
}

// DeleteLine handles DELETE /api/lines/{lineId}
func (h *LineHandler) DeleteLine(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "lineId")
	if err != nil {
		writeBadRequest(w, "lineId must be an integer")
		return
	}

	if err := h.svc.DeleteLine(r.Context(), id); err != nil {
		writeServiceError(w, "Failed to delete line", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddSection handles POST /api/lines/{lineId}/sections
func (h *LineHandler) AddSection(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "lineId")
	if err != nil {
		writeBadRequest(w, "lineId must be an integer")
		return
	}

	var req models.SectionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	line, err := h.svc.AddSegment(r.Context(), id, req.UpStationID, req.DownStationID, req.Distance)
	if err != nil {
		writeServiceError(w, "Failed to add section", err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewLineResponse(line, true))
}

// RemoveSection handles DELETE /api/lines/{lineId}/sections?stationId=
// Only the last station of the line can be removed.
func (h *LineHandler) RemoveSection(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "lineId")
	if err != nil {
		writeBadRequest(w, "lineId must be an integer")
		return
	}

	stationID, err := strconv.ParseInt(r.URL.Query().Get("stationId"), 10, 64)
	if err != nil {
		writeBadRequest(w, "stationId query parameter is required")
		return
	}

	if err := h.svc.RemoveStation(r.Context(), id, stationID); err != nil {
		writeServiceError(w, "Failed to remove section", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
