package handlers

import (
	"context"
	"net/http"

	"github.com/mini-rodalies-3d/subway/internal/subway"
	"github.com/mini-rodalies-3d/subway/models"
)

// StationService defines the station operations used by StationHandler
type StationService interface {
	CreateStation(ctx context.Context, name string) (subway.Station, error)
	ListStations(ctx context.Context) ([]subway.Station, error)
	DeleteStation(ctx context.Context, id int64) error
}

// StationHandler handles HTTP requests for stations
type StationHandler struct {
	svc StationService
}

// NewStationHandler creates a new handler with the given service
func NewStationHandler(svc StationService) *StationHandler {
	return &StationHandler{svc: svc}
}

// CreateStation handles POST /api/stations
func (h *StationHandler) CreateStation(w http.ResponseWriter, r *http.Request) {
	var req models.StationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	station, err := h.svc.CreateStation(r.Context(), req.Name)
	if err != nil {
		writeServiceError(w, "Failed to create station", err)
		return
	}

	w.Header().Set("Location", "/api/stations/"+itoa(station.ID))
	writeJSON(w, http.StatusCreated, models.NewStationResponse(station))
}

// ListStations handles GET /api/stations
func (h *StationHandler) ListStations(w http.ResponseWriter, r *http.Request) {
	stations, err := h.svc.ListStations(r.Context())
	if err != nil {
		writeServiceError(w, "Failed to retrieve stations", err)
		return
	}
	writeJSON(w, http.StatusOK, models.NewStationResponses(stations))
}

// DeleteStation handles DELETE /api/stations/{stationId}
// Stations still used by a line cannot be deleted.
func (h *StationHandler) DeleteStation(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "stationId")
	if err != nil {
		writeBadRequest(w, "stationId must be an integer")
		return
	}

	if err := h.svc.DeleteStation(r.Context(), id); err != nil {
		writeServiceError(w, "Failed to delete station", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
