// Package jwt emite y verifica el bearer credential del bridge (HS256).
package jwt

import (
	"errors"
	"strings"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

const DefaultTTL = time.Hour

// Claims del bearer. sub y steamId llevan el mismo SteamID64.
type Claims struct {
	SteamID string `json:"steamId"`
	jwtv5.RegisteredClaims
}

// Issuer firma tokens con un secreto compartido.
type Issuer struct {
	Secret []byte           // clave HMAC
	Iss    string           // "iss"
	TTL    time.Duration    // vida del token (default 1h)
	Now    func() time.Time // reloj inyectable para tests
}

func NewIssuer(secret, iss string, ttl time.Duration) (*Issuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwt: secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{
		Secret: []byte(secret),
		Iss:    iss,
		TTL:    ttl,
		Now:    time.Now,
	}, nil
}

func (i *Issuer) now() time.Time {
	if i.Now != nil {
		return i.Now()
	}
	return time.Now()
}

// Issue emite un token para identity. iat se trunca al segundo, así
// exp == iat + TTL exacto.
func (i *Issuer) Issue(identity string) (string, time.Time, error) {
	if identity == "" {
		return "", time.Time{}, errors.New("jwt: empty identity")
	}
	now := i.now().UTC().Truncate(time.Second)
	exp := now.Add(i.TTL)

	claims := Claims{
		SteamID: identity,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Subject:   identity,
			Issuer:    i.Iss,
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(exp),
		},
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	tk.Header["typ"] = "JWT"

	signed, err := tk.SignedString(i.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// ExpiresIn es el expires_in de la respuesta de token, en segundos.
func (i *Issuer) ExpiresIn() int64 {
	return int64(i.TTL / time.Second)
}
