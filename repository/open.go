package repository

import (
	"context"
	"fmt"
	"log"

	"github.com/mini-rodalies-3d/subway/internal/config"
	"github.com/mini-rodalies-3d/subway/internal/subway"
)

// Store is a subway.Store that owns its connection and schema
type Store interface {
	subway.Store
	EnsureSchema(ctx context.Context) error
	Close() error
}

// Open connects to PostgreSQL when cfg has a DATABASE_URL, otherwise to the
// SQLite file at cfg.DatabasePath, and makes sure the schema exists.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	var (
		store Store
		err   error
	)
	if cfg.UsePostgres() {
		log.Println("Connecting to PostgreSQL database")
		store, err = NewPostgresStore(ctx, cfg.DatabaseURL)
	} else {
		log.Printf("Connecting to SQLite database: %s", cfg.DatabasePath)
		store, err = NewSQLiteStore(cfg.DatabasePath)
	}
	if err != nil {
		return nil, err
	}

	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}
	return store, nil
}
