package subway

import (
	"errors"
	"testing"
)

func lineOf(t *testing.T, id int64, segs ...Segment) *Line {
	t.Helper()
	line := &Line{ID: id, Name: "line", Segments: NewSegmentList(id)}
	for _, s := range segs {
		if err := line.Segments.Add(s.Up, s.Down, s.Distance); err != nil {
			t.Fatalf("building line %d: %v", id, err)
		}
	}
	return line
}

func seg(up, down Station, distance int) Segment {
	return Segment{Up: up, Down: down, Distance: distance}
}

func TestShortestPath_AcrossLines(t *testing.T) {
	line1 := lineOf(t, 1, seg(stationA, stationB, 2), seg(stationB, stationC, 2))
	line2 := lineOf(t, 2, seg(stationC, stationD, 3))

	finder := NewPathFinder([]*Line{line1, line2})
	path, err := finder.ShortestPath(stationA, stationD)
	if err != nil {
		t.Fatalf("ShortestPath failed: %v", err)
	}

	want := []string{"A", "B", "C", "D"}
	got := stationNames(path.Stations)
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if path.Distance != 7 {
		t.Errorf("expected distance 7, got %d", path.Distance)
	}
}

func TestShortestPath_PrefersShorterLine(t *testing.T) {
	// A-B-C-D on one line (3+3+3), A-E-D on another (4+4)
	slow := lineOf(t, 1, seg(stationA, stationB, 3), seg(stationB, stationC, 3), seg(stationC, stationD, 3))
	fast := lineOf(t, 2, seg(stationA, stationE, 4), seg(stationE, stationD, 4))

	path, err := NewPathFinder([]*Line{slow, fast}).ShortestPath(stationA, stationD)
	if err != nil {
		t.Fatalf("ShortestPath failed: %v", err)
	}
	if path.Distance != 8 {
		t.Errorf("expected distance 8, got %d", path.Distance)
	}
	if got := stationNames(path.Stations); len(got) != 3 || got[1] != "E" {
		t.Errorf("expected route via E, got %v", got)
	}
}

func TestShortestPath_ParallelSegments(t *testing.T) {
	express := lineOf(t, 1, seg(stationA, stationB, 10))
	local := lineOf(t, 2, seg(stationA, stationB, 4))

	finder := NewPathFinder([]*Line{express, local})
	if finder.VertexCount() != 2 || finder.EdgeCount() != 2 {
		t.Fatalf("expected 2 vertices and 2 edges, got %d and %d", finder.VertexCount(), finder.EdgeCount())
	}

	path, err := finder.ShortestPath(stationA, stationB)
	if err != nil {
		t.Fatalf("ShortestPath failed: %v", err)
	}
	if path.Distance != 4 {
		t.Errorf("expected the shorter parallel segment (4), got %d", path.Distance)
	}
}

func TestShortestPath_SameStation(t *testing.T) {
	finder := NewPathFinder([]*Line{lineOf(t, 1, seg(stationA, stationB, 1))})
	for _, s := range []Station{stationA, stationB, stationE} {
		if _, err := finder.ShortestPath(s, s); !errors.Is(err, ErrSameStation) {
			t.Errorf("ShortestPath(%s, %s): expected ErrSameStation, got %v", s.Name, s.Name, err)
		}
	}
}

func TestShortestPath_NoPath(t *testing.T) {
	x := Station{ID: 10, Name: "X"}
	y := Station{ID: 11, Name: "Y"}

	tests := []struct {
		name           string
		lines          []*Line
		source, target Station
	}{
		{
			name:   "disconnected lines",
			lines:  []*Line{lineOf(t, 1, seg(stationA, stationB, 5)), lineOf(t, 2, seg(x, y, 5))},
			source: stationA,
			target: y,
		},
		{
			name:   "against direction",
			lines:  []*Line{lineOf(t, 1, seg(stationA, stationB, 5))},
			source: stationB,
			target: stationA,
		},
		{
			name:   "unknown source",
			lines:  []*Line{lineOf(t, 1, seg(stationA, stationB, 5))},
			source: stationE,
			target: stationB,
		},
		{
			name:   "empty network",
			source: stationA,
			target: stationB,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPathFinder(tc.lines).ShortestPath(tc.source, tc.target)
			if !errors.Is(err, ErrNoPath) {
				t.Errorf("expected ErrNoPath, got %v", err)
			}
		})
	}
}

func TestShortestPath_ReflectsSplits(t *testing.T) {
	line := lineOf(t, 1, seg(stationA, stationB, 3), seg(stationB, stationC, 4))
	if err := line.Segments.Add(stationB, stationD, 2); err != nil {
		t.Fatalf("split failed: %v", err)
	}

	path, err := NewPathFinder([]*Line{line}).ShortestPath(stationA, stationD)
	if err != nil {
		t.Fatalf("ShortestPath failed: %v", err)
	}
	if path.Distance != 5 {
		t.Errorf("expected distance 5, got %d", path.Distance)
	}
}
