package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mini-rodalies-3d/subway/internal/config"
	"github.com/mini-rodalies-3d/subway/internal/gtfs"
	"github.com/mini-rodalies-3d/subway/internal/seed"
	"github.com/mini-rodalies-3d/subway/internal/subway"
	"github.com/mini-rodalies-3d/subway/repository"
)

func main() {
	config.LoadEnvFiles(".")
	cfg := config.Load()

	// Command line flags
	dbPath := flag.String("db", cfg.DatabasePath, "Path to SQLite database (ignored when DATABASE_URL is set)")
	gtfsDir := flag.String("gtfs-dir", "data/gtfs", "Directory containing GTFS zip files")
	routeTypes := flag.String("route-types", "0,1,2", "Comma-separated GTFS route types to import")
	exportPath := flag.String("export", "", "If set, also write the derived network as a YAML seed file")
	download := flag.Bool("download", false, "Download the TMB GTFS feed (TMB_GTFS_URL) into the cache before importing")
	flag.Parse()

	types, err := parseRouteTypes(*routeTypes)
	if err != nil {
		log.Fatalf("Invalid -route-types: %v", err)
	}

	ctx := context.Background()
	cfg.DatabasePath = *dbPath
	store, err := repository.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	svc := subway.NewService(store)

	var zipPaths []string
	if *download {
		fetcher := gtfs.NewFetcher(cfg.CacheDir, time.Duration(cfg.StaticRefreshDays)*24*time.Hour)
		fetcher.AppID, fetcher.AppKey = cfg.TMBAppID, cfg.TMBAppKey
		path, err := fetcher.Fetch(ctx, cfg.GTFSURL, "tmb_gtfs.zip")
		if err != nil {
			log.Fatalf("Failed to download GTFS feed: %v", err)
		}
		zipPaths = append(zipPaths, path)
	}

	// Find all GTFS zip files
	entries, err := os.ReadDir(*gtfsDir)
	if err != nil && len(zipPaths) == 0 {
		log.Fatalf("Failed to read GTFS directory: %v", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".zip") {
			zipPaths = append(zipPaths, filepath.Join(*gtfsDir, entry.Name()))
		}
	}

	merged := &seed.Network{}
	for _, zipPath := range zipPaths {
		name := filepath.Base(zipPath)
		log.Printf("Processing %s...", name)

		data, err := gtfs.Parse(zipPath)
		if err != nil {
			log.Printf("ERROR parsing %s: %v", name, err)
			continue
		}

		network := gtfs.BuildNetwork(data, gtfs.BuildOptions{RouteTypes: types})
		res, err := seed.Apply(ctx, svc, network)
		if err != nil {
			log.Printf("ERROR importing %s: %v", name, err)
			continue
		}
		log.Printf("SUCCESS: %s imported (%d stations created, %d reused, %d lines created, %d skipped)",
			name, res.StationsCreated, res.StationsReused, res.LinesCreated, res.LinesSkipped)

		mergeNetwork(merged, network)
	}

	if *exportPath != "" {
		if err := writeSeed(*exportPath, merged); err != nil {
			log.Fatalf("Failed to export seed: %v", err)
		}
		log.Printf("Wrote %d stations and %d lines to %s", len(merged.Stations), len(merged.Lines), *exportPath)
	}

	log.Println("Import complete!")
}

func parseRouteTypes(s string) ([]int, error) {
	var types []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		types = append(types, n)
	}
	return types, nil
}

// mergeNetwork appends src's stations and lines to dst, skipping stations
// and line names dst already has
func mergeNetwork(dst, src *seed.Network) {
	stations := make(map[string]bool, len(dst.Stations))
	for _, name := range dst.Stations {
		stations[name] = true
	}
	for _, name := range src.Stations {
		if !stations[name] {
			stations[name] = true
			dst.Stations = append(dst.Stations, name)
		}
	}

	lines := make(map[string]bool, len(dst.Lines))
	for _, l := range dst.Lines {
		lines[l.Name] = true
	}
	for _, l := range src.Lines {
		if !lines[l.Name] {
			lines[l.Name] = true
			dst.Lines = append(dst.Lines, l)
		}
	}
}

func writeSeed(path string, n *seed.Network) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := n.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
