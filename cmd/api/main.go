package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mini-rodalies-3d/subway/handlers"
	"github.com/mini-rodalies-3d/subway/internal/config"
	"github.com/mini-rodalies-3d/subway/internal/subway"
	"github.com/mini-rodalies-3d/subway/repository"
)

func main() {
	envDir := flag.String("env-dir", ".", "Directory containing .env and .env.local")
	flag.Parse()

	// Load base .env first, then .env.local (which overrides for local development)
	config.LoadEnvFiles(*envDir)
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := repository.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	log.Println("Database connection established")

	svc := subway.NewService(store)
	router := handlers.NewRouter(svc, handlers.RouterOptions{
		AllowedOrigins: cfg.AllowedOrigins,
		RequestTimeout: cfg.RequestTimeout,
		StaticDir:      cfg.StaticDir,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("API server starting on :%s", cfg.Port)
	routes, err := handlers.Routes(router)
	if err != nil {
		log.Fatalf("Failed to list routes: %v", err)
	}
	log.Println("Endpoints:")
	for _, route := range routes {
		log.Printf("  %s", route)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	case <-ctx.Done():
		log.Println("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Graceful shutdown failed: %v", err)
		}
	}
}
