package models

import "github.com/mini-rodalies-3d/subway/internal/subway"

// PathResponse is the JSON response for GET /api/paths
type PathResponse struct {
	Stations []StationResponse `json:"stations"`
	Distance int               `json:"distance"`
}

// NewPathResponse converts a domain path
func NewPathResponse(p subway.Path) PathResponse {
	return PathResponse{
		Stations: NewStationResponses(p.Stations),
		Distance: p.Distance,
	}
}
