package api

import (
	"net/http"
	"photo-location-service/internal/api/handlers"
	"photo-location-service/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(batches *handlers.BatchHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(
		requestIDMiddleware,
		loggingMiddleware,
		metrics.Middleware,
		middleware.Recoverer,
	)

	r.Get("/health", handlers.Health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/batches", func(r chi.Router) {
		r.Get("/", batches.List)
		r.Post("/", batches.Create)
		r.Get("/{id}", batches.Get)
		r.Get("/{id}/geojson", batches.GeoJSON)
		r.Get("/{id}/bands", batches.Bands)
	})

	return r
}
