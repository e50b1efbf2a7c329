package subway

import (
	"fmt"
	"slices"
)

// SegmentList is the ordered path of one line.
//
// segments is always kept in travel order. byUp and byDown index every
// segment by its up and down station so neighbours are found without scanning.
type SegmentList struct {
	lineID   int64
	segments []*Segment
	byUp     map[int64]*Segment
	byDown   map[int64]*Segment
}

// NewSegmentList creates an empty list for the given line
func NewSegmentList(lineID int64) *SegmentList {
	return &SegmentList{
		lineID: lineID,
		byUp:   make(map[int64]*Segment),
		byDown: make(map[int64]*Segment),
	}
}

// Restore rebuilds a list from stored segments. The input may be in any
// order; it must form exactly one simple path.
func Restore(lineID int64, stored []Segment) (*SegmentList, error) {
	l := NewSegmentList(lineID)
	if len(stored) == 0 {
		return l, nil
	}

	for i := range stored {
		seg := stored[i]
		if seg.Up.ID == seg.Down.ID || seg.Distance <= 0 {
			return nil, fmt.Errorf("%w: segment %s is invalid", ErrBrokenPath, seg.ID)
		}
		if _, dup := l.byUp[seg.Up.ID]; dup {
			return nil, fmt.Errorf("%w: station %d branches", ErrBrokenPath, seg.Up.ID)
		}
		if _, dup := l.byDown[seg.Down.ID]; dup {
			return nil, fmt.Errorf("%w: station %d merges", ErrBrokenPath, seg.Down.ID)
		}
		seg.LineID = lineID
		l.byUp[seg.Up.ID] = &seg
		l.byDown[seg.Down.ID] = &seg
	}

	var start *Segment
	for _, seg := range l.byUp {
		if _, hasPrev := l.byDown[seg.Up.ID]; hasPrev {
			continue
		}
		if start != nil {
			return nil, fmt.Errorf("%w: more than one start station", ErrBrokenPath)
		}
		start = seg
	}
	if start == nil {
		return nil, fmt.Errorf("%w: segments form a cycle", ErrBrokenPath)
	}

	l.segments = make([]*Segment, 0, len(stored))
	for seg := start; seg != nil; seg = l.byUp[seg.Down.ID] {
		l.segments = append(l.segments, seg)
		if len(l.segments) > len(stored) {
			return nil, fmt.Errorf("%w: segments form a cycle", ErrBrokenPath)
		}
	}
	if len(l.segments) != len(stored) {
		return nil, fmt.Errorf("%w: %d of %d segments reachable from the start", ErrBrokenPath, len(l.segments), len(stored))
	}

	return l, nil
}

// Len returns the number of segments
func (l *SegmentList) Len() int {
	return len(l.segments)
}

// Stations derives the ordered station sequence.
// The result has Len()+1 entries, or none for an empty list.
func (l *SegmentList) Stations() []Station {
	if len(l.segments) == 0 {
		return []Station{}
	}

	current := l.first()
	stations := make([]Station, 0, len(l.segments)+1)
	stations = append(stations, current)
	for {
		next, ok := l.byUp[current.ID]
		if !ok {
			break
		}
		current = next.Down
		stations = append(stations, current)
	}
	return stations
}

// Segments returns a copy of the segments in travel order
func (l *SegmentList) Segments() []Segment {
	out := make([]Segment, len(l.segments))
	for i, seg := range l.segments {
		out[i] = *seg
	}
	return out
}

// TotalDistance sums the distance of every segment
func (l *SegmentList) TotalDistance() int {
	total := 0
	for _, seg := range l.segments {
		total += seg.Distance
	}
	return total
}

// Contains reports whether the station lies on the path
func (l *SegmentList) Contains(stationID int64) bool {
	_, up := l.byUp[stationID]
	_, down := l.byDown[stationID]
	return up || down
}

// Add inserts a segment. It extends either end of the path or splits the
// segment that shares an endpoint with it. On error the list is unchanged.
func (l *SegmentList) Add(up, down Station, distance int) error {
	if up.ID == down.ID {
		return fmt.Errorf("%w: station %d", ErrInvalidSegment, up.ID)
	}
	if distance <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidDistance, distance)
	}

	seg := NewSegment(l.lineID, up, down, distance)

	if len(l.segments) == 0 {
		l.insertAt(0, &seg)
		return nil
	}

	upOnPath := l.Contains(up.ID)
	downOnPath := l.Contains(down.ID)

	if up.ID == l.last().ID {
		if downOnPath {
			return fmt.Errorf("%w: %d-%d would close a loop", ErrDuplicateSegment, up.ID, down.ID)
		}
		l.insertAt(len(l.segments), &seg)
		return nil
	}

	if down.ID == l.first().ID {
		if upOnPath {
			return fmt.Errorf("%w: %d-%d would close a loop", ErrDuplicateSegment, up.ID, down.ID)
		}
		l.insertAt(0, &seg)
		return nil
	}

	if upOnPath && downOnPath {
		return fmt.Errorf("%w: %d-%d", ErrDuplicateSegment, up.ID, down.ID)
	}

	if existing, ok := l.byUp[up.ID]; ok {
		return l.splitFront(existing, &seg)
	}

	if existing, ok := l.byDown[down.ID]; ok {
		return l.splitBack(existing, &seg)
	}

	return fmt.Errorf("%w: %d-%d", ErrUnconnectedSegment, up.ID, down.ID)
}

// splitFront places seg before existing, which shrinks to seg.Down -> existing.Down
func (l *SegmentList) splitFront(existing, seg *Segment) error {
	remaining := existing.Distance - seg.Distance
	if remaining <= 0 {
		return fmt.Errorf("%w: %d is not shorter than %d", ErrInvalidDistance, seg.Distance, existing.Distance)
	}

	idx := slices.Index(l.segments, existing)

	delete(l.byUp, existing.Up.ID)
	existing.Up = seg.Down
	existing.Distance = remaining
	l.byUp[existing.Up.ID] = existing

	l.insertAt(idx, seg)
	return nil
}

// splitBack places seg after existing, which shrinks to existing.Up -> seg.Up
func (l *SegmentList) splitBack(existing, seg *Segment) error {
	remaining := existing.Distance - seg.Distance
	if remaining <= 0 {
		return fmt.Errorf("%w: %d is not shorter than %d", ErrInvalidDistance, seg.Distance, existing.Distance)
	}

	idx := slices.Index(l.segments, existing)

	delete(l.byDown, existing.Down.ID)
	existing.Down = seg.Up
	existing.Distance = remaining
	l.byDown[existing.Down.ID] = existing

	l.insertAt(idx+1, seg)
	return nil
}

// Remove drops the last station of the line together with its segment
func (l *SegmentList) Remove(stationID int64) error {
	if len(l.segments) <= 1 {
		return ErrSingleSegment
	}
	if l.last().ID != stationID {
		return fmt.Errorf("%w: station %d", ErrNotTerminalStation, stationID)
	}

	tail := l.segments[len(l.segments)-1]
	delete(l.byUp, tail.Up.ID)
	delete(l.byDown, tail.Down.ID)
	l.segments[len(l.segments)-1] = nil
	l.segments = l.segments[:len(l.segments)-1]
	return nil
}

func (l *SegmentList) insertAt(idx int, seg *Segment) {
	l.segments = slices.Insert(l.segments, idx, seg)
	l.byUp[seg.Up.ID] = seg
	l.byDown[seg.Down.ID] = seg
}

func (l *SegmentList) first() Station {
	return l.segments[0].Up
}

func (l *SegmentList) last() Station {
	return l.segments[len(l.segments)-1].Down
}

func (l *SegmentList) setLineID(id int64) {
	l.lineID = id
	for _, seg := range l.segments {
		seg.LineID = id
	}
}
