package seed

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mini-rodalies-3d/subway/internal/subway"
	"github.com/mini-rodalies-3d/subway/repository"
)

const barcelona = `
stations:
  - Sants Estació
  - Plaça de Sants
  - Espanya
  - Paral·lel
  - Drassanes
lines:
  - name: L3
    color: "#00A650"
    segments:
      - {up: Sants Estació, down: Espanya, distance: 1500}
      - {up: Espanya, down: Drassanes, distance: 2100}
      - {up: Espanya, down: Paral·lel, distance: 900}
  - name: L1
    color: "#E2001A"
    segments:
      - {up: Plaça de Sants, down: Espanya, distance: 1100}
`

func newService(t *testing.T) *subway.Service {
	t.Helper()
	store, err := repository.NewSQLiteStore(filepath.Join(t.TempDir(), "seed.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return subway.NewService(store)
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	network, err := Decode(strings.NewReader(barcelona))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	res, err := Apply(ctx, svc, network)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if res.StationsCreated != 5 || res.LinesCreated != 2 {
		t.Errorf("unexpected result %+v", res)
	}

	lines, err := svc.ListLines(ctx)
	if err != nil {
		t.Fatalf("ListLines failed: %v", err)
	}
	var l3 *subway.Line
	for _, l := range lines {
		if l.Name == "L3" {
			l3 = l
		}
	}
	if l3 == nil {
		t.Fatal("L3 not created")
	}

	var names []string
	for _, st := range l3.Stations() {
		names = append(names, st.Name)
	}
	want := "Sants Estació,Espanya,Paral·lel,Drassanes"
	if got := strings.Join(names, ","); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
	if l3.Segments.TotalDistance() != 3600 {
		t.Errorf("expected total 3600, got %d", l3.Segments.TotalDistance())
	}

	stations, _ := svc.ListStations(ctx)
	ids := make(map[string]int64)
	for _, st := range stations {
		ids[st.Name] = st.ID
	}
	path, err := svc.FindPath(ctx, ids["Plaça de Sants"], ids["Drassanes"])
	if err != nil {
		t.Fatalf("FindPath failed: %v", err)
	}
	if path.Distance != 1100+900+1200 {
		t.Errorf("expected 3200, got %d", path.Distance)
	}
}

func TestApply_Twice(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	network, err := Decode(strings.NewReader(barcelona))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if _, err := Apply(ctx, svc, network); err != nil {
		t.Fatalf("first Apply failed: %v", err)
	}
	res, err := Apply(ctx, svc, network)
	if err != nil {
		t.Fatalf("second Apply failed: %v", err)
	}
	if res.StationsCreated != 0 || res.StationsReused != 5 || res.LinesSkipped != 2 {
		t.Errorf("expected everything reused, got %+v", res)
	}
}

func TestApply_RejectedSegment(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	network := &Network{
		Stations: []string{"A", "B", "C"},
		Lines: []Line{{
			Name: "L9",
			Segments: []Segment{
				{Up: "A", Down: "B", Distance: 5},
				{Up: "A", Down: "C", Distance: 5},
			},
		}},
	}

	for run := 1; run <= 2; run++ {
		_, err := Apply(ctx, svc, network)
		if !errors.Is(err, subway.ErrInvalidDistance) {
			t.Fatalf("run %d: expected ErrInvalidDistance, got %v", run, err)
		}

		lines, err := svc.ListLines(ctx)
		if err != nil {
			t.Fatalf("ListLines failed: %v", err)
		}
		if len(lines) != 0 {
			t.Fatalf("run %d: rejected line must not be stored, found %d lines", run, len(lines))
		}
	}
}

// failingSegments stores lines normally but fails every AddSegment
type failingSegments struct {
	*subway.Service
}

func (f failingSegments) AddSegment(context.Context, int64, int64, int64, int) (*subway.Line, error) {
	return nil, errors.New("database is locked")
}

func TestApply_RollsBackPartialLine(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	network, err := Decode(strings.NewReader(barcelona))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if _, err := Apply(ctx, failingSegments{svc}, network); err == nil {
		t.Fatal("expected AddSegment failure to surface")
	}

	lines, err := svc.ListLines(ctx)
	if err != nil {
		t.Fatalf("ListLines failed: %v", err)
	}
	for _, l := range lines {
		if l.Name == "L3" {
			t.Fatalf("partially applied L3 was left with %d segments", l.Segments.Len())
		}
	}

	res, err := Apply(ctx, svc, network)
	if err != nil {
		t.Fatalf("retry Apply failed: %v", err)
	}
	if res.LinesCreated != 2 || res.LinesSkipped != 0 {
		t.Errorf("expected both lines created on retry, got %+v", res)
	}
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown station", "stations: [A]\nlines:\n  - name: L1\n    segments:\n      - {up: A, down: B, distance: 1}\n"},
		{"duplicate station", "stations: [A, A]\n"},
		{"line without segments", "stations: [A]\nlines:\n  - name: L1\n"},
		{"unknown field", "stations: [A]\ndepots: [X]\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Decode(strings.NewReader(tc.doc)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestEncodeDecode(t *testing.T) {
	network, err := Decode(strings.NewReader(barcelona))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	var buf bytes.Buffer
	if err := network.Encode(&buf); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	again, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode of encoded network failed: %v", err)
	}
	if len(again.Stations) != 5 || len(again.Lines) != 2 || len(again.Lines[0].Segments) != 3 {
		t.Errorf("network changed across encode: %+v", again)
	}
}
