package bridge

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	dto "github.com/dropDatabas3/steambridge/internal/http/dto/bridge"
	"github.com/dropDatabas3/steambridge/internal/idgen"
	"github.com/dropDatabas3/steambridge/internal/jwt"
	"github.com/dropDatabas3/steambridge/internal/session"
	"github.com/dropDatabas3/steambridge/internal/steam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testClientID     = "app"
	testClientSecret = "s3cret"
	testSteamID      = "76561198000000000"
)

// fakeProvider simula el adapter OpenID: el login "ocurre" al llamar VerifyAssertion.
type fakeProvider struct {
	identity string
	err      error
	calls    atomic.Int32
}

func (f *fakeProvider) BuildRedirect(id string) string {
	return "https://steam.example/openid/login?session_key=" + url.QueryEscape(id)
}

func (f *fakeProvider) VerifyAssertion(_ context.Context, _ string) (string, error) {
	f.calls.Add(1)
	if f.err != nil {
		return "", f.err
	}
	return f.identity, nil
}

type fakeProfiles struct {
	err error
}

func (f *fakeProfiles) FetchProfile(_ context.Context, steamID string) (*steam.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	p := steam.MergeProfile(steamID, steam.PlayerSummary{PersonaName: "gaben"}, steam.ProfileItems{}, steam.DefaultCDNBaseURL)
	return &p, nil
}

type fixture struct {
	svc      Service
	store    *session.MemoryStore
	provider *fakeProvider
	profiles *fakeProfiles
	issuer   *jwt.Issuer
	now      time.Time
}

func newFixture(t *testing.T, mutate func(*Deps)) *fixture {
	t.Helper()
	f := &fixture{
		store:    session.NewMemory(session.MemoryConfig{}),
		provider: &fakeProvider{identity: testSteamID},
		profiles: &fakeProfiles{},
		now:      time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	iss, err := jwt.NewIssuer("jwt-secret-for-tests", "steambridge", time.Hour)
	require.NoError(t, err)
	iss.Now = func() time.Time { return f.now }
	f.issuer = iss

	d := Deps{
		Store:        f.store,
		Provider:     f.provider,
		Profiles:     f.profiles,
		Issuer:       iss,
		ClientID:     testClientID,
		ClientSecret: testClientSecret,
	}
	if mutate != nil {
		mutate(&d)
	}
	f.svc = NewService(d)
	return f
}

// authorize devuelve el session key que viajó en el redirect.
func (f *fixture) authorize(t *testing.T, redirectURI, state string) string {
	t.Helper()
	res, err := f.svc.Authorize(context.Background(), dto.AuthorizeRequest{RedirectURI: redirectURI, State: state})
	require.NoError(t, err)
	u, err := url.Parse(res.RedirectURL)
	require.NoError(t, err)
	key := u.Query().Get("session_key")
	require.NotEmpty(t, key)
	return key
}

func (f *fixture) callback(sessionKey string) (dto.RedirectResult, error) {
	return f.svc.Callback(context.Background(), dto.CallbackRequest{
		SessionKey:  sessionKey,
		CallbackURL: "https://bridge.example/auth/steam/callback?session_key=" + sessionKey,
	})
}

func redirectParams(t *testing.T, raw string) url.Values {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u.Query()
}

func TestBridge_EndToEnd(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	key := f.authorize(t, "https://app.example/cb", "abc")
	_, err := uuidShape(key)
	require.NoError(t, err)

	res, err := f.callback(key)
	require.NoError(t, err)
	assert.Contains(t, res.RedirectURL, "https://app.example/cb?")
	q := redirectParams(t, res.RedirectURL)
	assert.Equal(t, "abc", q.Get("state"))
	code := q.Get("code")
	require.NotEmpty(t, code)

	tok, err := f.svc.Token(ctx, dto.TokenRequest{ClientID: testClientID, ClientSecret: testClientSecret, Code: code})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.EqualValues(t, 3600, tok.ExpiresIn)

	profile, err := f.svc.UserInfo(ctx, tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, testSteamID, profile.SteamID)
	assert.Equal(t, testSteamID, profile.Sub)

	assert.Equal(t, 0, f.store.Len())
}

func uuidShape(s string) (string, error) {
	if len(s) != 36 || s[8] != '-' || s[13] != '-' || s[18] != '-' || s[23] != '-' {
		return "", errors.New("not a uuid-shaped id: " + s)
	}
	return s, nil
}

func TestAuthorize_RequiresRedirectAndState(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	for _, req := range []dto.AuthorizeRequest{
		{RedirectURI: "", State: "abc"},
		{RedirectURI: "https://app.example/cb", State: ""},
		{RedirectURI: "  ", State: "  "},
	} {
		_, err := f.svc.Authorize(ctx, req)
		require.ErrorIs(t, err, ErrBadRequest)
	}
	assert.Equal(t, 0, f.store.Len())
}

func TestAuthorize_RedirectURIValidation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	for _, bad := range []string{"/relative", "javascript:alert(1)", "ftp://app.example/cb", "https://app.example/cb#frag"} {
		_, err := f.svc.Authorize(ctx, dto.AuthorizeRequest{RedirectURI: bad, State: "s"})
		require.ErrorIs(t, err, ErrInvalidRedirectURI, bad)
	}

	allow := newFixture(t, func(d *Deps) { d.AllowedRedirectURIs = []string{"https://app.example/cb"} })
	_, err := allow.svc.Authorize(ctx, dto.AuthorizeRequest{RedirectURI: "https://other.example/cb", State: "s"})
	require.ErrorIs(t, err, ErrInvalidRedirectURI)
	allow.authorize(t, "https://app.example/cb", "s")
}

func TestAuthorize_IDCollisionIsStorageError(t *testing.T) {
	f := newFixture(t, func(d *Deps) {
		d.IDs = idgen.Func(func() (string, error) { return "00000000-0000-0000-0000-000000000001", nil })
	})
	ctx := context.Background()

	_, err := f.svc.Authorize(ctx, dto.AuthorizeRequest{RedirectURI: "https://app.example/cb", State: "first"})
	require.NoError(t, err)

	_, err = f.svc.Authorize(ctx, dto.AuthorizeRequest{RedirectURI: "https://evil.example/cb", State: "second"})
	require.ErrorIs(t, err, ErrStorage)

	rec, ok := f.store.Peek(keyPrefixCallback + "00000000-0000-0000-0000-000000000001")
	require.True(t, ok)
	assert.Equal(t, session.PendingCallback{RedirectURI: "https://app.example/cb", State: "first"}, rec)
}

func TestCallback_UnknownAndConsumedAreIndistinguishable(t *testing.T) {
	f := newFixture(t, nil)

	_, errUnknown := f.callback("never-issued")
	require.ErrorIs(t, errUnknown, ErrInvalidSession)

	key := f.authorize(t, "https://app.example/cb", "abc")
	_, err := f.callback(key)
	require.NoError(t, err)

	_, errConsumed := f.callback(key)
	require.ErrorIs(t, errConsumed, ErrInvalidSession)
	assert.Equal(t, errUnknown, errConsumed)

	_, errEmpty := f.callback("")
	assert.Equal(t, errUnknown, errEmpty)
}

func TestCallback_VerificationFailureRedirectsWithError(t *testing.T) {
	f := newFixture(t, nil)
	f.provider.err = &steam.VerificationError{Reason: steam.ReasonProviderRejected}

	key := f.authorize(t, "https://app.example/cb?tenant=a", "xyz")
	res, err := f.callback(key)
	require.NoError(t, err)

	q := redirectParams(t, res.RedirectURL)
	assert.Equal(t, "authentication_failed", q.Get("error"))
	assert.Equal(t, "Steam rejected the assertion", q.Get("error_description"))
	assert.Equal(t, "xyz", q.Get("state"))
	assert.Equal(t, "a", q.Get("tenant"))
	assert.Empty(t, q.Get("code"))

	// la sesión se consumió igual
	_, err = f.callback(key)
	require.ErrorIs(t, err, ErrInvalidSession)
	assert.Equal(t, 0, f.store.Len())
}

func TestCallback_StateRoundTripsVerbatim(t *testing.T) {
	f := newFixture(t, nil)
	state := "a b&c=d/é?"

	key := f.authorize(t, "https://app.example/cb", state)
	res, err := f.callback(key)
	require.NoError(t, err)
	q := redirectParams(t, res.RedirectURL)
	assert.Equal(t, state, q.Get("state"))

	rec, ok := f.store.Peek(keyPrefixCode + q.Get("code"))
	require.True(t, ok)
	assert.Equal(t, session.IssuedCode{Identity: testSteamID, State: state}, rec)
}

func TestCallback_ConcurrentSameSessionIssuesOneCode(t *testing.T) {
	for round := 0; round < 20; round++ {
		f := newFixture(t, nil)
		key := f.authorize(t, "https://app.example/cb", "abc")

		const n = 8
		var (
			wg      sync.WaitGroup
			start   = make(chan struct{})
			codes   atomic.Int32
			invalid atomic.Int32
		)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				res, err := f.callback(key)
				switch {
				case err == nil && strings.Contains(res.RedirectURL, "code="):
					codes.Add(1)
				case errors.Is(err, ErrInvalidSession):
					invalid.Add(1)
				}
			}()
		}
		close(start)
		wg.Wait()

		require.EqualValues(t, 1, codes.Load())
		require.EqualValues(t, n-1, invalid.Load())
		require.EqualValues(t, 1, f.provider.calls.Load())
	}
}

func TestCallback_StorageFailureOnCodeCollision(t *testing.T) {
	var n atomic.Int32
	f := newFixture(t, func(d *Deps) {
		d.IDs = idgen.Func(func() (string, error) {
			if n.Add(1) == 1 {
				return "session-id", nil
			}
			return "same-code", nil
		})
	})
	require.NoError(t, f.store.Create(keyPrefixCode+"same-code", session.IssuedCode{Identity: "1"}, time.Minute))

	key := f.authorize(t, "https://app.example/cb", "abc")
	_, err := f.callback(key)
	require.ErrorIs(t, err, ErrStorage)
}

func issueCode(t *testing.T, f *fixture) string {
	t.Helper()
	key := f.authorize(t, "https://app.example/cb", "abc")
	res, err := f.callback(key)
	require.NoError(t, err)
	return redirectParams(t, res.RedirectURL).Get("code")
}

func TestToken_BadCredentialsDoNotBurnCode(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	code := issueCode(t, f)

	for _, c := range [][2]string{{testClientID, "wrong"}, {"other", testClientSecret}, {"", ""}} {
		_, err := f.svc.Token(ctx, dto.TokenRequest{ClientID: c[0], ClientSecret: c[1], Code: code})
		require.ErrorIs(t, err, ErrUnauthorized)
	}

	_, err := f.svc.Token(ctx, dto.TokenRequest{ClientID: testClientID, ClientSecret: testClientSecret, Code: code})
	require.NoError(t, err)

	_, err = f.svc.Token(ctx, dto.TokenRequest{ClientID: testClientID, ClientSecret: testClientSecret, Code: code})
	require.ErrorIs(t, err, ErrInvalidGrant)
}

func TestToken_InputValidation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	code := issueCode(t, f)

	_, err := f.svc.Token(ctx, dto.TokenRequest{ClientID: testClientID, ClientSecret: testClientSecret, GrantType: "refresh_token", Code: code})
	require.ErrorIs(t, err, ErrUnsupportedGrantType)
	require.ErrorIs(t, err, ErrBadRequest)

	_, err = f.svc.Token(ctx, dto.TokenRequest{ClientID: testClientID, ClientSecret: testClientSecret})
	require.ErrorIs(t, err, ErrMissingCode)

	_, err = f.svc.Token(ctx, dto.TokenRequest{ClientID: testClientID, ClientSecret: testClientSecret, Code: "unknown"})
	require.ErrorIs(t, err, ErrInvalidGrant)

	// el code sigue vivo después de los intentos fallidos
	_, err = f.svc.Token(ctx, dto.TokenRequest{ClientID: testClientID, ClientSecret: testClientSecret, GrantType: "authorization_code", Code: code})
	require.NoError(t, err)
}

func TestToken_SessionKeyIsNotACode(t *testing.T) {
	f := newFixture(t, nil)
	key := f.authorize(t, "https://app.example/cb", "abc")

	_, err := f.svc.Token(context.Background(), dto.TokenRequest{ClientID: testClientID, ClientSecret: testClientSecret, Code: key})
	require.ErrorIs(t, err, ErrInvalidGrant)

	// y la sesión no se tocó
	_, err = f.callback(key)
	require.NoError(t, err)
}

func TestToken_BcryptClientSecret(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte(testClientSecret), bcrypt.MinCost)
	require.NoError(t, err)
	f := newFixture(t, func(d *Deps) { d.ClientSecret = string(hash) })
	ctx := context.Background()
	code := issueCode(t, f)

	_, err = f.svc.Token(ctx, dto.TokenRequest{ClientID: testClientID, ClientSecret: string(hash), Code: code})
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = f.svc.Token(ctx, dto.TokenRequest{ClientID: testClientID, ClientSecret: testClientSecret, Code: code})
	require.NoError(t, err)
}

func TestUserInfo_TokenValidity(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	code := issueCode(t, f)
	tok, err := f.svc.Token(ctx, dto.TokenRequest{ClientID: testClientID, ClientSecret: testClientSecret, Code: code})
	require.NoError(t, err)

	for _, bad := range []string{"", "garbage", tok.AccessToken + "x"} {
		_, err := f.svc.UserInfo(ctx, bad)
		require.ErrorIs(t, err, ErrInvalidToken)
	}

	issuedAt := f.now
	f.now = issuedAt.Add(time.Hour - time.Second)
	_, err = f.svc.UserInfo(ctx, tok.AccessToken)
	require.NoError(t, err)

	f.now = issuedAt.Add(time.Hour)
	_, err = f.svc.UserInfo(ctx, tok.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestUserInfo_UpstreamFailureIsDistinct(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	code := issueCode(t, f)
	tok, err := f.svc.Token(ctx, dto.TokenRequest{ClientID: testClientID, ClientSecret: testClientSecret, Code: code})
	require.NoError(t, err)

	f.profiles.err = &steam.UpstreamError{Op: "player_summaries", Status: 503}
	_, err = f.svc.UserInfo(ctx, tok.AccessToken)
	require.ErrorIs(t, err, ErrUpstream)
	assert.False(t, errors.Is(err, ErrInvalidToken))
}
