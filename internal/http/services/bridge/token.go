package bridge

import (
	"context"
	"strings"

	dto "github.com/dropDatabas3/steambridge/internal/http/dto/bridge"
	"github.com/dropDatabas3/steambridge/internal/metrics"
	"github.com/dropDatabas3/steambridge/internal/observability/logger"
	"github.com/dropDatabas3/steambridge/internal/session"
)

const grantTypeAuthorizationCode = "authorization_code"

// Token canjea un code por un bearer. Las credenciales del cliente se validan
// antes de tocar el code, así un cliente inválido no lo quema.
func (s *service) Token(ctx context.Context, req dto.TokenRequest) (dto.TokenResponse, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("bridge"), logger.Op("Token"))

	if !s.clients.Verify(req.ClientID, req.ClientSecret) {
		log.Warn("client authentication failed", logger.ClientID(req.ClientID))
		metrics.ObserveBridge("token", "unauthorized")
		return dto.TokenResponse{}, ErrUnauthorized
	}
	if gt := strings.TrimSpace(req.GrantType); gt != "" && gt != grantTypeAuthorizationCode {
		metrics.ObserveBridge("token", "bad_request")
		return dto.TokenResponse{}, ErrUnsupportedGrantType
	}
	code := strings.TrimSpace(req.Code)
	if code == "" {
		metrics.ObserveBridge("token", "bad_request")
		return dto.TokenResponse{}, ErrMissingCode
	}

	rec, ok := s.store.TakeAndRemove(keyPrefixCode + code)
	if !ok {
		log.Debug("code not found", logger.Code(code))
		metrics.ObserveBridge("token", "invalid_grant")
		return dto.TokenResponse{}, ErrInvalidGrant
	}
	issued, ok := rec.(session.IssuedCode)
	if !ok || issued.Identity == "" {
		metrics.ObserveBridge("token", "invalid_grant")
		return dto.TokenResponse{}, ErrInvalidGrant
	}

	token, _, err := s.issuer.Issue(issued.Identity)
	if err != nil {
		log.Error("token signing failed", logger.Err(err))
		metrics.ObserveBridge("token", "internal_error")
		return dto.TokenResponse{}, ErrTokenIssue
	}

	log.Info("token issued", logger.SteamID(issued.Identity), logger.ClientID(req.ClientID))
	metrics.ObserveBridge("token", "ok")
	return dto.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   s.issuer.ExpiresIn(),
	}, nil
}
