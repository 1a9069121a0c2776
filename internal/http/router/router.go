// Package router arma el árbol de rutas chi del bridge.
package router

import (
	"net/http"

	bridgectrl "github.com/dropDatabas3/steambridge/internal/http/controllers/bridge"
	healthctrl "github.com/dropDatabas3/steambridge/internal/http/controllers/health"
	httperrors "github.com/dropDatabas3/steambridge/internal/http/errors"
	mw "github.com/dropDatabas3/steambridge/internal/http/middlewares"
	"github.com/go-chi/chi/v5"
)

// BasePath de las rutas del bridge.
const BasePath = "/auth/steam"

// Deps contiene los controllers y el handler de métricas.
type Deps struct {
	Bridge  *bridgectrl.Controller
	Health  *healthctrl.HealthController
	Metrics http.Handler // opcional
}

// New devuelve el handler raíz con la cadena de middlewares base.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithMetrics(),
	)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	RegisterHealthRoutes(r, deps)
	if deps.Bridge != nil {
		r.Route(BasePath, func(r chi.Router) {
			RegisterBridgeRoutes(r, deps.Bridge)
		})
	}
	return r
}
