package main

import (
	"context"
	"flag"
	"log"

	"github.com/mini-rodalies-3d/subway/internal/config"
	"github.com/mini-rodalies-3d/subway/internal/seed"
	"github.com/mini-rodalies-3d/subway/internal/subway"
	"github.com/mini-rodalies-3d/subway/repository"
)

func main() {
	config.LoadEnvFiles(".")
	cfg := config.Load()

	dbPath := flag.String("db", cfg.DatabasePath, "Path to SQLite database (ignored when DATABASE_URL is set)")
	file := flag.String("file", "data/seed.yaml", "YAML network description")
	flag.Parse()

	network, err := seed.LoadFile(*file)
	if err != nil {
		log.Fatalf("Failed to load %s: %v", *file, err)
	}
	log.Printf("Loaded %s: %d stations, %d lines", *file, len(network.Stations), len(network.Lines))

	ctx := context.Background()
	cfg.DatabasePath = *dbPath
	store, err := repository.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	res, err := seed.Apply(ctx, subway.NewService(store), network)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seed complete: %d stations created, %d reused, %d lines created, %d skipped",
		res.StationsCreated, res.StationsReused, res.LinesCreated, res.LinesSkipped)
}
