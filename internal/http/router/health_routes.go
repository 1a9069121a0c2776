package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterHealthRoutes registra /, /health y /metrics. Sin logging: son muy frecuentes.
func RegisterHealthRoutes(r chi.Router, deps Deps) {
	if deps.Health != nil {
		r.Get("/", deps.Health.Root)
		r.Get("/health", deps.Health.Health)
	}
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}
}
