package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates a chi router with the artifact file, health checks,
// metrics and the /api routes mounted. origins lists the dashboard origins
// allowed by CORS.
func NewRouter(h *Handler, origins []string) chi.Router {
	r := chi.NewRouter()
	r.Use(CORSMiddleware(origins))

	// Health.
	r.Get("/health/live", h.Live)
	r.Get("/health/ready", h.Ready)

	// Artifact file for the presentation layer.
	r.Get("/correlations.json", h.Artifact)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/operations", h.Operations)
		r.Post("/query/{operation}", h.Query)
		r.Get("/dashboard", h.Dashboard)
		r.Get("/status", h.Status)
		r.Post("/reload", h.Reload)

		if h.broker != nil {
			r.Get("/events", h.broker.ServeHTTP)
		}
	})

	return r
}
