package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/mini-rodalies-3d/subway/internal/subway"
)

type testStore interface {
	subway.Store
	EnsureSchema(ctx context.Context) error
	Close() error
}

// runStoreContract exercises a store through the network service
func runStoreContract(t *testing.T, store testStore) {
	ctx := context.Background()
	svc := subway.NewService(store)

	ids := make(map[string]int64)
	for _, name := range []string{"Catalunya", "Passeig de Gràcia", "Diagonal", "Fontana", "Sants"} {
		st, err := svc.CreateStation(ctx, name)
		if err != nil {
			t.Fatalf("CreateStation(%s) failed: %v", name, err)
		}
		ids[name] = st.ID
	}

	line, err := svc.CreateLine(ctx, "L3", "#00A651", ids["Catalunya"], ids["Diagonal"], 1200)
	if err != nil {
		t.Fatalf("CreateLine failed: %v", err)
	}
	if line.ID == 0 {
		t.Fatal("expected line to receive an id")
	}

	if _, err := svc.AddSegment(ctx, line.ID, ids["Catalunya"], ids["Passeig de Gràcia"], 500); err != nil {
		t.Fatalf("AddSegment split failed: %v", err)
	}
	if _, err := svc.AddSegment(ctx, line.ID, ids["Diagonal"], ids["Fontana"], 800); err != nil {
		t.Fatalf("AddSegment append failed: %v", err)
	}
	if _, err := svc.AddSegment(ctx, line.ID, ids["Sants"], ids["Catalunya"], 2500); err != nil {
		t.Fatalf("AddSegment prepend failed: %v", err)
	}

	stored, err := store.GetLine(ctx, line.ID)
	if err != nil {
		t.Fatalf("GetLine failed: %v", err)
	}
	want := []string{"Sants", "Catalunya", "Passeig de Gràcia", "Diagonal", "Fontana"}
	got := stored.Stations()
	if len(got) != len(want) {
		t.Fatalf("expected %d stations, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].Name != want[i] {
			t.Errorf("station %d: expected %s, got %s", i, want[i], got[i].Name)
		}
	}
	if stored.Segments.TotalDistance() != 2500+1200+800 {
		t.Errorf("unexpected total distance %d", stored.Segments.TotalDistance())
	}

	if _, err := svc.AddSegment(ctx, line.ID, ids["Sants"], ids["Fontana"], 10); !errors.Is(err, subway.ErrDuplicateSegment) {
		t.Errorf("expected ErrDuplicateSegment, got %v", err)
	}

	path, err := svc.FindPath(ctx, ids["Sants"], ids["Fontana"])
	if err != nil {
		t.Fatalf("FindPath failed: %v", err)
	}
	if path.Distance != 4500 || len(path.Stations) != 5 {
		t.Errorf("expected 5 stations over 4500m, got %d over %dm", len(path.Stations), path.Distance)
	}

	if err := svc.RemoveStation(ctx, line.ID, ids["Fontana"]); err != nil {
		t.Fatalf("RemoveStation failed: %v", err)
	}
	if err := svc.DeleteStation(ctx, ids["Fontana"]); err != nil {
		t.Errorf("DeleteStation of unused station failed: %v", err)
	}
	if err := svc.DeleteStation(ctx, ids["Sants"]); !errors.Is(err, subway.ErrStationInUse) {
		t.Errorf("expected ErrStationInUse, got %v", err)
	}

	if _, err := svc.UpdateLine(ctx, line.ID, "L3 Zona Universitària", "#00A651"); err != nil {
		t.Errorf("UpdateLine failed: %v", err)
	}

	lines, err := svc.ListLines(ctx)
	if err != nil {
		t.Fatalf("ListLines failed: %v", err)
	}
	if len(lines) != 1 || lines[0].Name != "L3 Zona Universitària" || lines[0].Segments.Len() != 3 {
		t.Errorf("unexpected lines after update: %+v", lines)
	}

	if err := svc.DeleteLine(ctx, line.ID); err != nil {
		t.Fatalf("DeleteLine failed: %v", err)
	}
	if _, err := svc.GetLine(ctx, line.ID); !errors.Is(err, subway.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	inUse, err := store.StationInUse(ctx, ids["Sants"])
	if err != nil {
		t.Fatalf("StationInUse failed: %v", err)
	}
	if inUse {
		t.Error("expected segments to be deleted with their line")
	}
	if err := svc.DeleteLine(ctx, line.ID); !errors.Is(err, subway.ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
}
