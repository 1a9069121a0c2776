package jwt

import (
	"errors"
	"strings"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestIssuer(t *testing.T, clk *fakeClock) *Issuer {
	t.Helper()
	iss, err := NewIssuer("test-secret-0123456789", "steambridge", time.Hour)
	require.NoError(t, err)
	iss.Now = clk.Now
	return iss
}

func TestNewIssuer_RequiresSecret(t *testing.T) {
	_, err := NewIssuer(" ", "steambridge", 0)
	require.Error(t, err)

	iss, err := NewIssuer("s", "steambridge", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTTL, iss.TTL)
	assert.EqualValues(t, 3600, iss.ExpiresIn())
}

func TestIssueVerify_RoundTripAndExactExpiry(t *testing.T) {
	clk := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 500_000_000, time.UTC)}
	iss := newTestIssuer(t, clk)

	tok, exp, err := iss.Issue("76561198000000001")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC), exp)

	c, err := iss.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "76561198000000001", c.Subject)
	assert.Equal(t, "76561198000000001", c.SteamID)
	assert.Equal(t, "steambridge", c.Issuer)
	assert.Equal(t, exp.Unix()-3600, c.IssuedAt.Unix())

	clk.t = exp.Add(-time.Second)
	_, err = iss.Verify(tok)
	require.NoError(t, err, "one second before exp")

	clk.t = exp
	_, err = iss.Verify(tok)
	require.ErrorIs(t, err, ErrInvalidToken, "at exp")
	require.ErrorIs(t, err, jwtv5.ErrTokenExpired)
}

func TestVerify_RejectsWrongSecret(t *testing.T) {
	clk := &fakeClock{t: time.Now()}
	iss := newTestIssuer(t, clk)
	tok, _, err := iss.Issue("76561198000000001")
	require.NoError(t, err)

	other := newTestIssuer(t, clk)
	other.Secret = []byte("another-secret")
	_, err = other.Verify(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_RejectsWrongIssuer(t *testing.T) {
	clk := &fakeClock{t: time.Now()}
	iss := newTestIssuer(t, clk)
	tok, _, err := iss.Issue("76561198000000001")
	require.NoError(t, err)

	other := newTestIssuer(t, clk)
	other.Iss = "someone-else"
	_, err = other.Verify(tok)
	require.ErrorIs(t, err, ErrInvalidIssuer)
}

func TestVerify_RejectsNoneAndGarbage(t *testing.T) {
	clk := &fakeClock{t: time.Now()}
	iss := newTestIssuer(t, clk)

	claims := jwtv5.MapClaims{
		"sub": "76561198000000001",
		"iss": "steambridge",
		"exp": clk.t.Add(time.Hour).Unix(),
	}
	none, err := jwtv5.NewWithClaims(jwtv5.SigningMethodNone, claims).SignedString(jwtv5.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for _, tok := range []string{"", "abc", "a.b.c", none, strings.Repeat("x", 300)} {
		_, err := iss.Verify(tok)
		assert.True(t, errors.Is(err, ErrInvalidToken), "token %q", tok)
	}
}

func TestVerify_RequiresExp(t *testing.T) {
	clk := &fakeClock{t: time.Now()}
	iss := newTestIssuer(t, clk)

	tok, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, jwtv5.MapClaims{
		"sub": "76561198000000001",
		"iss": "steambridge",
	}).SignedString(iss.Secret)
	require.NoError(t, err)

	_, err = iss.Verify(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}
