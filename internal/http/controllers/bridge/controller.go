// Package bridge expone el motor del bridge por HTTP bajo /auth/steam.
package bridge

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	dto "github.com/dropDatabas3/steambridge/internal/http/dto/bridge"
	httperrors "github.com/dropDatabas3/steambridge/internal/http/errors"
	svc "github.com/dropDatabas3/steambridge/internal/http/services/bridge"
	"github.com/dropDatabas3/steambridge/internal/observability/logger"
)

// Controller maneja /auth/steam/{authorize,callback,token,userinfo}.
type Controller struct {
	service svc.Service
}

// NewController crea el controller.
func NewController(service svc.Service) *Controller {
	return &Controller{service: service}
}

// Authorize maneja GET /auth/steam/authorize?state=&redirect_uri=
func (c *Controller) Authorize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("BridgeController.Authorize"))

	q := r.URL.Query()
	res, err := c.service.Authorize(ctx, dto.AuthorizeRequest{
		RedirectURI: q.Get("redirect_uri"),
		State:       q.Get("state"),
	})
	if err != nil {
		switch {
		case errors.Is(err, svc.ErrInvalidRedirectURI):
			httperrors.WriteError(w, httperrors.ErrInvalidRedirectURI)
		case errors.Is(err, svc.ErrBadRequest):
			httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("state and redirect_uri are required"))
		case errors.Is(err, svc.ErrStorage):
			log.Error("authorize failed", logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrStorage.WithCause(err))
		default:
			log.Error("authorize failed", logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		}
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, res.RedirectURL, http.StatusFound)
}

// Callback maneja GET /auth/steam/callback (vuelta desde Steam).
func (c *Controller) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("BridgeController.Callback"))

	res, err := c.service.Callback(ctx, dto.CallbackRequest{
		SessionKey:  r.URL.Query().Get("session_key"),
		CallbackURL: fullURL(r),
	})
	if err != nil {
		switch {
		case errors.Is(err, svc.ErrInvalidSession):
			httperrors.WriteError(w, httperrors.ErrInvalidSession)
		case errors.Is(err, svc.ErrStorage):
			log.Error("callback failed", logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrStorage.WithCause(err))
		default:
			log.Error("callback failed", logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		}
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	http.Redirect(w, r, res.RedirectURL, http.StatusFound)
}

// Token maneja POST /auth/steam/token. Acepta credenciales por Basic auth o
// en el body (form o JSON).
func (c *Controller) Token(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("BridgeController.Token"))

	req, err := parseTokenRequest(w, r)
	if err != nil {
		log.Debug("token request unreadable", logger.Err(err))
		httperrors.WriteOAuthError(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}

	resp, err := c.service.Token(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, svc.ErrUnauthorized):
			httperrors.WriteOAuthError(w, http.StatusUnauthorized, "invalid_client", "Invalid client credentials")
		case errors.Is(err, svc.ErrUnsupportedGrantType):
			httperrors.WriteOAuthError(w, http.StatusBadRequest, "unsupported_grant_type", "only authorization_code is supported")
		case errors.Is(err, svc.ErrInvalidGrant):
			httperrors.WriteOAuthError(w, http.StatusBadRequest, "invalid_grant", "Invalid or expired code")
		case errors.Is(err, svc.ErrBadRequest):
			httperrors.WriteOAuthError(w, http.StatusBadRequest, "invalid_request", "code is required")
		default:
			log.Error("token failed", logger.Err(err))
			httperrors.WriteOAuthError(w, http.StatusInternalServerError, "server_error", "Internal server error")
		}
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

// UserInfo maneja GET /auth/steam/userinfo.
func (c *Controller) UserInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("BridgeController.UserInfo"))

	profile, err := c.service.UserInfo(ctx, extractBearerToken(r))
	if err != nil {
		switch {
		case errors.Is(err, svc.ErrInvalidToken):
			w.Header().Set("WWW-Authenticate", `Bearer realm="steambridge", error="invalid_token"`)
			httperrors.WriteError(w, httperrors.ErrTokenInvalid)
		case errors.Is(err, svc.ErrUpstream):
			httperrors.WriteError(w, httperrors.ErrBadGateway.WithCause(err))
		default:
			log.Error("userinfo failed", logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		}
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Add("Vary", "Authorization")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(profile)
}

func extractBearerToken(r *http.Request) string {
	ah := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(ah) < len("Bearer ") || !strings.EqualFold(ah[:len("Bearer ")], "bearer ") {
		return ""
	}
	return strings.TrimSpace(ah[len("Bearer "):])
}
