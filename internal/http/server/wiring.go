// Package server arma el bridge a partir de la config: store, adapter de Steam,
// issuer, motor, controllers y router.
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dropDatabas3/steambridge/internal/config"
	bridgectrl "github.com/dropDatabas3/steambridge/internal/http/controllers/bridge"
	healthctrl "github.com/dropDatabas3/steambridge/internal/http/controllers/health"
	"github.com/dropDatabas3/steambridge/internal/http/router"
	bridgesvc "github.com/dropDatabas3/steambridge/internal/http/services/bridge"
	"github.com/dropDatabas3/steambridge/internal/idgen"
	"github.com/dropDatabas3/steambridge/internal/jwt"
	"github.com/dropDatabas3/steambridge/internal/metrics"
	"github.com/dropDatabas3/steambridge/internal/session"
	"github.com/dropDatabas3/steambridge/internal/steam"
	"github.com/prometheus/client_golang/prometheus"
)

// Options son las dependencias opcionales del wiring.
type Options struct {
	Version string
	// Registry para las métricas. nil = registry global.
	Registry *prometheus.Registry
	// HTTPClient para hablar con Steam. nil = uno por adapter con su timeout.
	HTTPClient *http.Client
	Now        func() time.Time
}

// App es el bridge armado.
type App struct {
	Handler http.Handler
	Store   *session.MemoryStore
}

// Build construye el handler HTTP con todas las dependencias.
func Build(cfg *config.Config, opts Options) (*App, error) {
	store := session.NewMemory(session.MemoryConfig{
		MaxEntries:      cfg.Session.MaxEntries,
		CleanupInterval: cfg.Session.CleanupInterval,
	})

	openid, err := steam.NewOpenID(steam.OpenIDConfig{
		Realm:      cfg.Steam.Realm,
		ReturnURL:  cfg.Steam.ReturnURL,
		Endpoint:   cfg.Steam.OpenIDEndpoint,
		Timeout:    cfg.Steam.VerifyTimeout,
		HTTPClient: opts.HTTPClient,
	})
	if err != nil {
		return nil, fmt.Errorf("openid adapter: %w", err)
	}

	profiles, err := steam.NewProfileClient(steam.ProfileConfig{
		APIKey:     cfg.Steam.APIKey,
		APIBaseURL: cfg.Steam.APIBaseURL,
		CDNBaseURL: cfg.Steam.CDNBaseURL,
		Timeout:    cfg.Steam.APITimeout,
		HTTPClient: opts.HTTPClient,
	})
	if err != nil {
		return nil, fmt.Errorf("profile client: %w", err)
	}

	issuer, err := jwt.NewIssuer(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL)
	if err != nil {
		return nil, fmt.Errorf("jwt issuer: %w", err)
	}
	if opts.Now != nil {
		issuer.Now = opts.Now
	}

	service := bridgesvc.NewService(bridgesvc.Deps{
		Store:               store,
		Provider:            openid,
		Profiles:            profiles,
		Issuer:              issuer,
		IDs:                 idgen.Random{},
		ClientID:            cfg.Client.ID,
		ClientSecret:        cfg.Client.Secret,
		AllowedRedirectURIs: cfg.Client.RedirectURIs,
		CallbackTTL:         cfg.Session.CallbackTTL,
		CodeTTL:             cfg.Session.CodeTTL,
	})

	var (
		reg prometheus.Registerer = prometheus.DefaultRegisterer
		gat prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if opts.Registry != nil {
		reg, gat = opts.Registry, opts.Registry
	}
	if err := metrics.Register(reg, store.Len); err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	handler := router.New(router.Deps{
		Bridge: bridgectrl.NewController(service),
		Health: healthctrl.NewHealthController(healthctrl.Deps{
			Config:  cfg.Health,
			Version: opts.Version,
			Now:     opts.Now,
		}),
		Metrics: metrics.Handler(gat),
	})

	return &App{Handler: handler, Store: store}, nil
}

// NewHTTPServer envuelve el handler con los timeouts configurados.
func NewHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           h,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       2 * cfg.Server.WriteTimeout,
	}
}
