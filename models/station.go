package models

import (
	"errors"
	"strings"

	"github.com/mini-rodalies-3d/subway/internal/subway"
)

// StationRequest is the body of POST /api/stations
type StationRequest struct {
	Name string `json:"name"`
}

// Validate checks that the request carries a station name
func (r StationRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	return nil
}

// StationResponse is a station as exposed by the API
type StationResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// NewStationResponse converts a domain station
func NewStationResponse(s subway.Station) StationResponse {
	return StationResponse{ID: s.ID, Name: s.Name}
}

// NewStationResponses converts a list of domain stations
func NewStationResponses(stations []subway.Station) []StationResponse {
	out := make([]StationResponse, 0, len(stations))
	for _, s := range stations {
		out = append(out, NewStationResponse(s))
	}
	return out
}
