package subway

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Store persists stations and lines. GetLine and ListLines return lines with
// their segment lists restored.
type Store interface {
	Ping(ctx context.Context) error

	CreateStation(ctx context.Context, name string) (Station, error)
	GetStation(ctx context.Context, id int64) (Station, error)
	ListStations(ctx context.Context) ([]Station, error)
	DeleteStation(ctx context.Context, id int64) error
	StationInUse(ctx context.Context, id int64) (bool, error)

	CreateLine(ctx context.Context, line *Line) error
	GetLine(ctx context.Context, id int64) (*Line, error)
	ListLines(ctx context.Context) ([]*Line, error)
	UpdateLine(ctx context.Context, id int64, name, color string) error
	DeleteLine(ctx context.Context, id int64) error
	ReplaceSegments(ctx context.Context, lineID int64, segments []Segment) error
}

// Service applies segment rules on top of a Store.
//
// Mutations hold the write lock for their whole read-modify-write cycle, so a
// line's segment list has a single writer. Path queries hold the read lock and
// therefore always build their graph from a consistent snapshot.
type Service struct {
	store Store
	mu    sync.RWMutex
}

// NewService creates a new Service backed by the given store
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Ping checks the backing store
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// CreateStation registers a new station
func (s *Service) CreateStation(ctx context.Context, name string) (Station, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Station{}, ErrInvalidName
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.CreateStation(ctx, name)
}

// ListStations returns every station
func (s *Service) ListStations(ctx context.Context) ([]Station, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.ListStations(ctx)
}

// DeleteStation removes a station that no line uses
func (s *Service) DeleteStation(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.store.GetStation(ctx, id); err != nil {
		return err
	}
	inUse, err := s.store.StationInUse(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check station usage: %w", err)
	}
	if inUse {
		return fmt.Errorf("%w: station %d", ErrStationInUse, id)
	}
	return s.store.DeleteStation(ctx, id)
}

// CreateLine creates a line together with its first segment
func (s *Service) CreateLine(ctx context.Context, name, color string, upID, downID int64, distance int) (*Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidName
	}
	up, down, err := s.stationPair(ctx, upID, downID)
	if err != nil {
		return nil, err
	}

	line, err := NewLine(0, name, color, up, down, distance)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateLine(ctx, line); err != nil {
		return nil, err
	}
	return line, nil
}

// GetLine returns one line with its stations
func (s *Service) GetLine(ctx context.Context, id int64) (*Line, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.GetLine(ctx, id)
}

// ListLines returns every line
func (s *Service) ListLines(ctx context.Context) ([]*Line, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.ListLines(ctx)
}

// UpdateLine renames or recolours a line
func (s *Service) UpdateLine(ctx context.Context, id int64, name, color string) (*Line, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.UpdateLine(ctx, id, name, color); err != nil {
		return nil, err
	}
	return s.store.GetLine(ctx, id)
}

// DeleteLine removes a line and all of its segments
func (s *Service) DeleteLine(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.DeleteLine(ctx, id)
}

// AddSegment inserts a segment into a line and persists the new order
func (s *Service) AddSegment(ctx context.Context, lineID, upID, downID int64, distance int) (*Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, err := s.store.GetLine(ctx, lineID)
	if err != nil {
		return nil, err
	}
	up, down, err := s.stationPair(ctx, upID, downID)
	if err != nil {
		return nil, err
	}

	if err := line.Segments.Add(up, down, distance); err != nil {
		return nil, err
	}
	if err := s.store.ReplaceSegments(ctx, line.ID, line.Segments.Segments()); err != nil {
		return nil, fmt.Errorf("failed to save segments of line %d: %w", line.ID, err)
	}
	return line, nil
}

// RemoveStation drops the last station of a line
func (s *Service) RemoveStation(ctx context.Context, lineID, stationID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, err := s.store.GetLine(ctx, lineID)
	if err != nil {
		return err
	}
	if err := line.Segments.Remove(stationID); err != nil {
		return err
	}
	if err := s.store.ReplaceSegments(ctx, line.ID, line.Segments.Segments()); err != nil {
		return fmt.Errorf("failed to save segments of line %d: %w", line.ID, err)
	}
	return nil
}

// FindPath computes the shortest path between two stations over all lines.
// The graph is rebuilt from storage on every call.
func (s *Service) FindPath(ctx context.Context, sourceID, targetID int64) (Path, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sourceID == targetID {
		return Path{}, fmt.Errorf("%w: station %d", ErrSameStation, sourceID)
	}

	source, target, err := s.stationPair(ctx, sourceID, targetID)
	if err != nil {
		return Path{}, err
	}

	lines, err := s.store.ListLines(ctx)
	if err != nil {
		return Path{}, fmt.Errorf("failed to load lines: %w", err)
	}

	return NewPathFinder(lines).ShortestPath(source, target)
}

func (s *Service) stationPair(ctx context.Context, firstID, secondID int64) (Station, Station, error) {
	first, err := s.store.GetStation(ctx, firstID)
	if err != nil {
		return Station{}, Station{}, err
	}
	second, err := s.store.GetStation(ctx, secondID)
	if err != nil {
		return Station{}, Station{}, err
	}
	return first, second, nil
}
