package handlers

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NetworkService is everything the HTTP layer needs from the subway network
type NetworkService interface {
	StationService
	LineService
	PathService
	Ping(ctx context.Context) error
}

// RouterOptions configures cross-cutting HTTP behaviour
type RouterOptions struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
	// StaticDir is served under / when set
	StaticDir string
}

// NewRouter wires all API routes onto a chi router
func NewRouter(svc NetworkService, opts RouterOptions) chi.Router {
	stations := NewStationHandler(svc)
	lines := NewLineHandler(svc)
	paths := NewPathHandler(svc)
	health := NewHealthHandler(svc)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.RequestTimeout))
	}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Location"},
		AllowCredentials: true,
	}))

	r.Get("/health", health.GetHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/stations", func(r chi.Router) {
			r.Post("/", stations.CreateStation)
			r.Get("/", stations.ListStations)
			r.Delete("/{stationId}", stations.DeleteStation)
		})

		r.Route("/lines", func(r chi.Router) {
			r.Post("/", lines.CreateLine)
			r.Get("/", lines.ListLines)
			r.Route("/{lineId}", func(r chi.Router) {
				r.Get("/", lines.GetLine)
				r.Put("/", lines.UpdateLine)
				r.Delete("/", lines.DeleteLine)
				r.Post("/sections", lines.AddSection)
				r.Delete("/sections", lines.RemoveSection)
			})
		})

		r.Get("/paths", paths.FindPath)
	})

	if opts.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(opts.StaticDir)))
	}

	return r
}

// Routes lists the endpoints registered on r as "METHOD /pattern"
func Routes(r chi.Routes) ([]string, error) {
	var routes []string
	err := chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if len(route) > 1 {
			route = strings.TrimSuffix(route, "/")
		}
		routes = append(routes, fmt.Sprintf("%-6s %s", method, route))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(routes)
	return routes, nil
}
