package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/infocus-dev/showcase/internal/listing"
)

// Deps holds all dependencies required to build the HTTP router.
type Deps struct {
	Registry    *listing.Registry
	PrimaryLang string
	Languages   []string
	Logger      *slog.Logger
}

// NewRouter assembles the full chi router with all middleware and routes.
func NewRouter(deps Deps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Get("/healthz", healthz(deps.Registry))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(jsonContentType)
		registerListingRoutes(r, deps)
	})

	return r
}

// healthz reports ready once every registered collection has a loaded corpus.
func healthz(registry *listing.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, c := range registry.All() {
			if !c.Loaded() {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "loading"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// jsonContentType is a middleware that sets Content-Type: application/json on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}
