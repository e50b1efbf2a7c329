package models

import (
	"errors"
	"strings"

	"github.com/mini-rodalies-3d/subway/internal/subway"
)

// LineRequest is the body of POST /api/lines. The line is created with its
// first segment.
type LineRequest struct {
	Name          string `json:"name"`
	Color         string `json:"color"`
	UpStationID   int64  `json:"upStationId"`
	DownStationID int64  `json:"downStationId"`
	Distance      int    `json:"distance"`
}

// Validate checks required fields
func (r LineRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	return SectionRequest{
		UpStationID:   r.UpStationID,
		DownStationID: r.DownStationID,
		Distance:      r.Distance,
	}.Validate()
}

// LineUpdateRequest is the body of PUT /api/lines/{id}
type LineUpdateRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Validate checks required fields
func (r LineUpdateRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	return nil
}

// SectionRequest is the body of POST /api/lines/{id}/sections
type SectionRequest struct {
	UpStationID   int64 `json:"upStationId"`
	DownStationID int64 `json:"downStationId"`
	Distance      int   `json:"distance"`
}

// Validate checks that both stations are set and the distance is positive
func (r SectionRequest) Validate() error {
	if r.UpStationID <= 0 {
		return errors.New("upStationId is required")
	}
	if r.DownStationID <= 0 {
		return errors.New("downStationId is required")
	}
	if r.UpStationID == r.DownStationID {
		return errors.New("upStationId and downStationId must differ")
	}
	if r.Distance <= 0 {
		return errors.New("distance must be positive")
	}
	return nil
}

// SectionResponse is one segment of a line
type SectionResponse struct {
	ID            string `json:"id"`
	UpStationID   int64  `json:"upStationId"`
	DownStationID int64  `json:"downStationId"`
	Distance      int    `json:"distance"`
}

// LineResponse is a line with its stations in travel order
type LineResponse struct {
	ID            int64             `json:"id"`
	Name          string            `json:"name"`
	Color         string            `json:"color"`
	Stations      []StationResponse `json:"stations"`
	Sections      []SectionResponse `json:"sections,omitempty"`
	TotalDistance int               `json:"totalDistance"`
}

// NewLineResponse converts a domain line. Sections are included only when
// withSections is set (line detail view).
func NewLineResponse(l *subway.Line, withSections bool) LineResponse {
	resp := LineResponse{
		ID:       l.ID,
		Name:     l.Name,
		Color:    l.Color,
		Stations: NewStationResponses(l.Stations()),
	}
	if l.Segments == nil {
		return resp
	}

	resp.TotalDistance = l.Segments.TotalDistance()
	if withSections {
		for _, seg := range l.Segments.Segments() {
			resp.Sections = append(resp.Sections, SectionResponse{
				ID:            seg.ID.String(),
				UpStationID:   seg.Up.ID,
				DownStationID: seg.Down.ID,
				Distance:      seg.Distance,
			})
		}
	}
	return resp
}
