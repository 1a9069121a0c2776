// Package bridge implementa el motor del bridge Steam OpenID -> OAuth2:
// authorize, callback, token y userinfo.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	dto "github.com/dropDatabas3/steambridge/internal/http/dto/bridge"
	"github.com/dropDatabas3/steambridge/internal/idgen"
	"github.com/dropDatabas3/steambridge/internal/jwt"
	"github.com/dropDatabas3/steambridge/internal/session"
	"github.com/dropDatabas3/steambridge/internal/steam"
)

// Prefijos de key en el store. Un code nunca puede consumirse como callback ni al revés.
const (
	keyPrefixCallback = "callback:"
	keyPrefixCode     = "code:"
)

const (
	DefaultCallbackTTL = 10 * time.Minute
	DefaultCodeTTL     = 2 * time.Minute
)

// Errores del motor. Los controllers los mapean con errors.Is.
var (
	ErrBadRequest     = errors.New("bad request")
	ErrInvalidSession = errors.New("invalid or expired session")
	ErrInvalidGrant   = errors.New("invalid or expired code")
	ErrUnauthorized   = errors.New("invalid client credentials")
	ErrInvalidToken   = errors.New("invalid or expired token")
	ErrStorage        = errors.New("session storage failure")
	ErrUpstream       = errors.New("profile lookup failed")
	ErrTokenIssue     = errors.New("token signing failed")

	ErrMissingParams        = fmt.Errorf("%w: missing required parameters", ErrBadRequest)
	ErrInvalidRedirectURI   = fmt.Errorf("%w: redirect_uri not allowed", ErrBadRequest)
	ErrUnsupportedGrantType = fmt.Errorf("%w: unsupported grant_type", ErrBadRequest)
	ErrMissingCode          = fmt.Errorf("%w: code required", ErrBadRequest)
)

// Store es lo que el motor necesita del session store.
type Store interface {
	Create(id string, rec session.Record, ttl time.Duration) error
	TakeAndRemove(id string) (session.Record, bool)
}

// IdentityProvider es el adapter OpenID.
type IdentityProvider interface {
	BuildRedirect(correlationID string) string
	VerifyAssertion(ctx context.Context, callbackURL string) (string, error)
}

// ProfileFetcher resuelve un SteamID64 en un perfil.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, steamID string) (*steam.Profile, error)
}

// TokenIssuer emite y verifica el bearer.
type TokenIssuer interface {
	Issue(identity string) (string, time.Time, error)
	Verify(token string) (*jwt.Claims, error)
	ExpiresIn() int64
}

// Service es el motor del bridge.
type Service interface {
	Authorize(ctx context.Context, req dto.AuthorizeRequest) (dto.RedirectResult, error)
	Callback(ctx context.Context, req dto.CallbackRequest) (dto.RedirectResult, error)
	Token(ctx context.Context, req dto.TokenRequest) (dto.TokenResponse, error)
	UserInfo(ctx context.Context, bearer string) (*steam.Profile, error)
}

// Deps contiene las dependencias del motor.
type Deps struct {
	Store    Store
	Provider IdentityProvider
	Profiles ProfileFetcher
	Issuer   TokenIssuer
	IDs      idgen.Generator // default: idgen.Random{}

	ClientID     string
	ClientSecret string // texto plano o hash bcrypt ($2a$/$2b$/$2y$)
	// Si no está vacío, redirect_uri debe coincidir exactamente con alguna entrada.
	AllowedRedirectURIs []string

	CallbackTTL time.Duration
	CodeTTL     time.Duration
}

type service struct {
	store    Store
	provider IdentityProvider
	profiles ProfileFetcher
	issuer   TokenIssuer
	ids      idgen.Generator

	clients     clientAuthenticator
	redirects   map[string]struct{}
	callbackTTL time.Duration
	codeTTL     time.Duration
}

// NewService crea el motor.
func NewService(d Deps) Service {
	ids := d.IDs
	if ids == nil {
		ids = idgen.Random{}
	}
	callbackTTL := d.CallbackTTL
	if callbackTTL <= 0 {
		callbackTTL = DefaultCallbackTTL
	}
	codeTTL := d.CodeTTL
	if codeTTL <= 0 {
		codeTTL = DefaultCodeTTL
	}
	var redirects map[string]struct{}
	if len(d.AllowedRedirectURIs) > 0 {
		redirects = make(map[string]struct{}, len(d.AllowedRedirectURIs))
		for _, u := range d.AllowedRedirectURIs {
			redirects[u] = struct{}{}
		}
	}
	return &service{
		store:       d.Store,
		provider:    d.Provider,
		profiles:    d.Profiles,
		issuer:      d.Issuer,
		ids:         ids,
		clients:     clientAuthenticator{id: d.ClientID, secret: d.ClientSecret},
		redirects:   redirects,
		callbackTTL: callbackTTL,
		codeTTL:     codeTTL,
	}
}
