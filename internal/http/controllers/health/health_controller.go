// Package health contiene el controller de /health y del banner en /.
package health

import (
	"encoding/json"
	"net/http"
	"time"

	dto "github.com/dropDatabas3/steambridge/internal/http/dto/health"
	"github.com/dropDatabas3/steambridge/internal/observability/logger"
)

const (
	StatusConfigured = "configured"
	StatusMissing    = "missing"
)

// Deps del controller de health.
type Deps struct {
	// Config reporta cada setting requerido como configured|missing.
	Config  func() map[string]string
	Version string
	Now     func() time.Time
}

// HealthController maneja GET /health.
type HealthController struct {
	deps Deps
}

func NewHealthController(d Deps) *HealthController {
	if d.Now == nil {
		d.Now = time.Now
	}
	return &HealthController{deps: d}
}

// Health responde healthy (200) si todos los settings requeridos están
// configurados, unhealthy (503) si falta alguno.
func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	log := logger.From(r.Context()).With(logger.Layer("controller"), logger.Op("HealthController.Health"))

	cfg := map[string]string{}
	if c.deps.Config != nil {
		cfg = c.deps.Config()
	}
	status, code := "healthy", http.StatusOK
	for _, v := range cfg {
		if v != StatusConfigured {
			status, code = "unhealthy", http.StatusServiceUnavailable
			break
		}
	}

	log.Debug("health check completed", logger.String("status", status))

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if c.deps.Version != "" {
		w.Header().Set("X-Service-Version", c.deps.Version)
	}
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(dto.HealthResponse{
		Status:    status,
		Timestamp: c.deps.Now().UTC().Format(time.RFC3339Nano),
		Version:   c.deps.Version,
		Config:    cfg,
	})
}

// Root es el banner de liveness en GET /.
func (c *HealthController) Root(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Steam Auth API is running"))
}
