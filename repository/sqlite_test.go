package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/mini-rodalies-3d/subway/internal/subway"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "subway.db"))
	if err != nil {
		t.Fatalf("Failed to open SQLite store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if err := store.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}
	return store
}

func TestSQLiteStore_Contract(t *testing.T) {
	runStoreContract(t, newTestSQLite(t))
}

func TestSQLiteStore_EnsureSchemaIsIdempotent(t *testing.T) {
	store := newTestSQLite(t)
	if err := store.EnsureSchema(context.Background()); err != nil {
		t.Errorf("second EnsureSchema failed: %v", err)
	}
}

func TestSQLiteStore_NotFound(t *testing.T) {
	store := newTestSQLite(t)
	ctx := context.Background()

	if _, err := store.GetStation(ctx, 42); !errors.Is(err, subway.ErrNotFound) {
		t.Errorf("GetStation: expected ErrNotFound, got %v", err)
	}
	if _, err := store.GetLine(ctx, 42); !errors.Is(err, subway.ErrNotFound) {
		t.Errorf("GetLine: expected ErrNotFound, got %v", err)
	}
	if err := store.UpdateLine(ctx, 42, "x", ""); !errors.Is(err, subway.ErrNotFound) {
		t.Errorf("UpdateLine: expected ErrNotFound, got %v", err)
	}
	if err := store.DeleteStation(ctx, 42); !errors.Is(err, subway.ErrNotFound) {
		t.Errorf("DeleteStation: expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteStore_SegmentIdentitySurvivesRoundTrip(t *testing.T) {
	store := newTestSQLite(t)
	ctx := context.Background()

	a, _ := store.CreateStation(ctx, "A")
	b, _ := store.CreateStation(ctx, "B")
	line, err := subway.NewLine(0, "L1", "", a, b, 10)
	if err != nil {
		t.Fatalf("NewLine failed: %v", err)
	}
	if err := store.CreateLine(ctx, line); err != nil {
		t.Fatalf("CreateLine failed: %v", err)
	}

	want := line.Segments.Segments()[0]
	stored, err := store.GetLine(ctx, line.ID)
	if err != nil {
		t.Fatalf("GetLine failed: %v", err)
	}
	got := stored.Segments.Segments()[0]
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}
