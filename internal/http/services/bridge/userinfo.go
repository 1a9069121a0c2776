package bridge

import (
	"context"
	"strings"

	"github.com/dropDatabas3/steambridge/internal/metrics"
	"github.com/dropDatabas3/steambridge/internal/observability/logger"
	"github.com/dropDatabas3/steambridge/internal/steam"
)

// UserInfo valida el bearer y devuelve el perfil de Steam del titular.
// Un token inválido es ErrInvalidToken; una falla de Steam es ErrUpstream.
func (s *service) UserInfo(ctx context.Context, bearer string) (*steam.Profile, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("bridge"), logger.Op("UserInfo"))

	bearer = strings.TrimSpace(bearer)
	if bearer == "" {
		metrics.ObserveBridge("userinfo", "invalid_token")
		return nil, ErrInvalidToken
	}
	claims, err := s.issuer.Verify(bearer)
	if err != nil {
		log.Debug("bearer rejected", logger.Err(err))
		metrics.ObserveBridge("userinfo", "invalid_token")
		return nil, ErrInvalidToken
	}

	profile, err := s.profiles.FetchProfile(ctx, claims.SteamID)
	if err != nil {
		log.Warn("profile lookup failed", logger.SteamID(claims.SteamID), logger.Err(err))
		metrics.ObserveBridge("userinfo", "upstream_error")
		return nil, ErrUpstream
	}

	metrics.ObserveBridge("userinfo", "ok")
	return profile, nil
}
