package subway

import "github.com/google/uuid"

// Station is a stop on one or more lines. Stations are compared by ID.
type Station struct {
	ID   int64
	Name string
}

// Segment is a directed, weighted hop between two stations of one line
type Segment struct {
	ID       uuid.UUID
	LineID   int64
	Up       Station
	Down     Station
	Distance int
}

// NewSegment creates a segment with a fresh ID
func NewSegment(lineID int64, up, down Station, distance int) Segment {
	return Segment{
		ID:       uuid.New(),
		LineID:   lineID,
		Up:       up,
		Down:     down,
		Distance: distance,
	}
}

// Line owns its ordered segment list. Deleting a line deletes its segments.
type Line struct {
	ID       int64
	Name     string
	Color    string
	Segments *SegmentList
}

// NewLine creates a line whose path starts with a single segment
func NewLine(id int64, name, color string, up, down Station, distance int) (*Line, error) {
	line := &Line{
		ID:       id,
		Name:     name,
		Color:    color,
		Segments: NewSegmentList(id),
	}
	if err := line.Segments.Add(up, down, distance); err != nil {
		return nil, err
	}
	return line, nil
}

// Stations returns the line's stations in travel order
func (l *Line) Stations() []Station {
	if l.Segments == nil {
		return nil
	}
	return l.Segments.Stations()
}

// AssignID sets the line ID once storage has allocated one
func (l *Line) AssignID(id int64) {
	l.ID = id
	if l.Segments != nil {
		l.Segments.setLineID(id)
	}
}
