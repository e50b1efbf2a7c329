package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mini-rodalies-3d/subway/internal/config"
)

func TestOpen_SQLiteWithoutDatabaseURL(t *testing.T) {
	cfg := &config.Config{DatabasePath: filepath.Join(t.TempDir(), "open.db")}
	if cfg.UsePostgres() {
		t.Fatal("config without DATABASE_URL must not select PostgreSQL")
	}

	store, err := Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	if _, ok := store.(*SQLiteStore); !ok {
		t.Fatalf("expected *SQLiteStore, got %T", store)
	}

	// schema must already exist
	if _, err := store.CreateStation(context.Background(), "Catalunya"); err != nil {
		t.Errorf("CreateStation after Open failed: %v", err)
	}
}
