package bridge

import (
	"context"
	"strings"

	dto "github.com/dropDatabas3/steambridge/internal/http/dto/bridge"
	"github.com/dropDatabas3/steambridge/internal/metrics"
	"github.com/dropDatabas3/steambridge/internal/observability/logger"
	"github.com/dropDatabas3/steambridge/internal/session"
)

// Authorize registra un PendingCallback y devuelve la URL de login de Steam.
func (s *service) Authorize(ctx context.Context, req dto.AuthorizeRequest) (dto.RedirectResult, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("bridge"), logger.Op("Authorize"))

	redirectURI := strings.TrimSpace(req.RedirectURI)
	state := req.State
	if redirectURI == "" || strings.TrimSpace(state) == "" {
		metrics.ObserveBridge("authorize", "bad_request")
		return dto.RedirectResult{}, ErrMissingParams
	}
	if !s.validRedirectURI(redirectURI) {
		log.Debug("redirect_uri rejected", logger.RedirectURI(redirectURI))
		metrics.ObserveBridge("authorize", "bad_request")
		return dto.RedirectResult{}, ErrInvalidRedirectURI
	}

	id, err := s.ids.NewID()
	if err != nil {
		log.Error("correlation id generation failed", logger.Err(err))
		metrics.ObserveBridge("authorize", "storage_error")
		return dto.RedirectResult{}, ErrStorage
	}

	// Una colisión indica un problema en la fuente de aleatoriedad: no se reintenta.
	rec := session.PendingCallback{RedirectURI: redirectURI, State: state}
	if err := s.store.Create(keyPrefixCallback+id, rec, s.callbackTTL); err != nil {
		log.Error("pending callback not stored", logger.SessionKey(id), logger.Err(err))
		metrics.ObserveBridge("authorize", "storage_error")
		return dto.RedirectResult{}, ErrStorage
	}

	log.Debug("pending callback created", logger.SessionKey(id), logger.RedirectURI(redirectURI))
	metrics.ObserveBridge("authorize", "ok")
	return dto.RedirectResult{RedirectURL: s.provider.BuildRedirect(id)}, nil
}
