package bridge

import (
	"context"
	"errors"
	"strings"

	dto "github.com/dropDatabas3/steambridge/internal/http/dto/bridge"
	"github.com/dropDatabas3/steambridge/internal/metrics"
	"github.com/dropDatabas3/steambridge/internal/observability/logger"
	"github.com/dropDatabas3/steambridge/internal/session"
	"github.com/dropDatabas3/steambridge/internal/steam"
)

// Callback consume el PendingCallback, verifica la assertion y redirige al
// cliente con code+state o con error+error_description+state.
func (s *service) Callback(ctx context.Context, req dto.CallbackRequest) (dto.RedirectResult, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("bridge"), logger.Op("Callback"))

	key := strings.TrimSpace(req.SessionKey)
	if key == "" {
		metrics.ObserveBridge("callback", "invalid_session")
		return dto.RedirectResult{}, ErrInvalidSession
	}

	// Desconocido y ya consumido dan el mismo error.
	rec, ok := s.store.TakeAndRemove(keyPrefixCallback + key)
	if !ok {
		log.Debug("session not found", logger.SessionKey(key))
		metrics.ObserveBridge("callback", "invalid_session")
		return dto.RedirectResult{}, ErrInvalidSession
	}
	pending, ok := rec.(session.PendingCallback)
	if !ok {
		log.Error("unexpected record kind", logger.String("kind", rec.Kind()))
		metrics.ObserveBridge("callback", "invalid_session")
		return dto.RedirectResult{}, ErrInvalidSession
	}

	steamID, err := s.provider.VerifyAssertion(ctx, req.CallbackURL)
	if err != nil {
		desc := "authentication failed"
		var ve *steam.VerificationError
		if errors.As(err, &ve) {
			desc = ve.Error()
			log.Warn("assertion rejected", logger.String("reason", string(ve.Reason)), logger.Err(ve.Err))
		} else {
			log.Warn("assertion rejected", logger.Err(err))
		}
		metrics.ObserveBridge("callback", "verification_failed")

		target, perr := withParams(pending.RedirectURI, map[string]string{
			"error":             "authentication_failed",
			"error_description": desc,
			"state":             pending.State,
		})
		if perr != nil {
			return dto.RedirectResult{}, ErrInvalidSession
		}
		return dto.RedirectResult{RedirectURL: target}, nil
	}

	code, err := s.ids.NewID()
	if err != nil {
		log.Error("code generation failed", logger.Err(err))
		metrics.ObserveBridge("callback", "storage_error")
		return dto.RedirectResult{}, ErrStorage
	}
	if err := s.store.Create(keyPrefixCode+code, session.IssuedCode{Identity: steamID, State: pending.State}, s.codeTTL); err != nil {
		log.Error("issued code not stored", logger.Code(code), logger.Err(err))
		metrics.ObserveBridge("callback", "storage_error")
		return dto.RedirectResult{}, ErrStorage
	}

	target, err := withParams(pending.RedirectURI, map[string]string{
		"code":  code,
		"state": pending.State,
	})
	if err != nil {
		// redirect_uri ya se validó en authorize; no debería pasar.
		metrics.ObserveBridge("callback", "storage_error")
		return dto.RedirectResult{}, ErrStorage
	}

	log.Info("steam login verified", logger.SteamID(steamID), logger.Code(code))
	metrics.ObserveBridge("callback", "ok")
	return dto.RedirectResult{RedirectURL: target}, nil
}
