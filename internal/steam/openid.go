// Package steam habla con Steam: el handshake OpenID 2.0 (OpenID) y la Web API
// para armar el perfil del usuario (ProfileClient).
package steam

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dropDatabas3/steambridge/internal/metrics"
)

const (
	OpenIDNS         = "http://specs.openid.net/auth/2.0"
	IdentifierSelect = "http://specs.openid.net/auth/2.0/identifier_select"
	DefaultEndpoint  = "https://steamcommunity.com/openid/login"
	ClaimedIDPrefix  = "https://steamcommunity.com/openid/id/"

	// SessionKeyParam es el query param que viaja dentro de openid.return_to.
	SessionKeyParam = "session_key"

	DefaultVerifyTimeout = 10 * time.Second

	maxVerifyBody = 64 << 10
)

var claimedIDRE = regexp.MustCompile(`^https?://steamcommunity\.com/openid/id/(\d+)$`)

// OpenIDConfig configura el adapter OpenID.
type OpenIDConfig struct {
	Realm     string
	ReturnURL string
	// Endpoint del OP. Default: DefaultEndpoint.
	Endpoint string
	// Timeout de check_authentication. Default: DefaultVerifyTimeout.
	Timeout    time.Duration
	HTTPClient *http.Client
}

// OpenID construye el redirect hacia Steam y verifica la assertion de vuelta.
type OpenID struct {
	realm     string
	returnURL *url.URL
	endpoint  string
	timeout   time.Duration
	http      *http.Client
}

// NewOpenID valida la configuración y crea el adapter.
func NewOpenID(cfg OpenIDConfig) (*OpenID, error) {
	if strings.TrimSpace(cfg.Realm) == "" {
		return nil, errors.New("steam: realm is required")
	}
	ru, err := url.Parse(strings.TrimSpace(cfg.ReturnURL))
	if err != nil || !ru.IsAbs() {
		return nil, fmt.Errorf("steam: return url must be absolute: %q", cfg.ReturnURL)
	}
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultVerifyTimeout
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	return &OpenID{
		realm:     cfg.Realm,
		returnURL: ru,
		endpoint:  endpoint,
		timeout:   timeout,
		http:      hc,
	}, nil
}

// ReturnTo arma el openid.return_to para un session key: la ReturnURL
// configurada con session_key agregado a su query.
func (o *OpenID) ReturnTo(sessionKey string) string {
	u := *o.returnURL
	q := u.Query()
	q.Set(SessionKeyParam, sessionKey)
	u.RawQuery = q.Encode()
	return u.String()
}

// BuildRedirect arma la URL de login de Steam para un identificador de correlación.
// Es determinística: mismo id, misma URL.
func (o *OpenID) BuildRedirect(correlationID string) string {
	params := url.Values{}
	params.Set("openid.ns", OpenIDNS)
	params.Set("openid.mode", "checkid_setup")
	params.Set("openid.return_to", o.ReturnTo(correlationID))
	params.Set("openid.realm", o.realm)
	params.Set("openid.identity", IdentifierSelect)
	params.Set("openid.claimed_id", IdentifierSelect)
	return o.endpoint + "?" + params.Encode()
}

// VerifyAssertion re-deriva los parámetros de la URL de callback, le pide a Steam
// que confirme la assertion (check_authentication) y devuelve el SteamID64.
// Cualquier falla es un *VerificationError.
func (o *OpenID) VerifyAssertion(ctx context.Context, callbackURL string) (string, error) {
	u, err := url.Parse(callbackURL)
	if err != nil {
		return "", verifyErr(ReasonMissingParameter, "unparseable callback url", err)
	}
	q := u.Query()

	switch mode := q.Get("openid.mode"); mode {
	case "id_res":
	case "cancel":
		return "", verifyErr(ReasonCancelled, "", nil)
	case "":
		return "", verifyErr(ReasonMissingParameter, "openid.mode", nil)
	default:
		return "", verifyErr(ReasonProviderRejected, "unexpected openid.mode "+strconv.Quote(mode), nil)
	}

	for _, p := range []string{SessionKeyParam, "openid.claimed_id", "openid.return_to", "openid.sig", "openid.signed", "openid.assoc_handle"} {
		if strings.TrimSpace(q.Get(p)) == "" {
			return "", verifyErr(ReasonMissingParameter, p, nil)
		}
	}

	if got, want := q.Get("openid.return_to"), o.ReturnTo(q.Get(SessionKeyParam)); got != want {
		return "", verifyErr(ReasonReturnToMismatch, "", nil)
	}
	if ep := q.Get("openid.op_endpoint"); ep != "" && ep != o.endpoint {
		return "", verifyErr(ReasonProviderRejected, "unexpected openid.op_endpoint", nil)
	}

	steamID, err := parseClaimedID(q.Get("openid.claimed_id"))
	if err != nil {
		return "", err
	}
	if id := q.Get("openid.identity"); id != "" && id != q.Get("openid.claimed_id") {
		return "", verifyErr(ReasonMalformedIdentity, "openid.identity differs from openid.claimed_id", nil)
	}

	if err := o.checkAuthentication(ctx, q); err != nil {
		return "", err
	}
	return steamID, nil
}

// checkAuthentication reenvía todos los openid.* con mode=check_authentication.
func (o *OpenID) checkAuthentication(ctx context.Context, q url.Values) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveUpstream("check_authentication", err, time.Since(start)) }()

	form := url.Values{}
	for k, vs := range q {
		if strings.HasPrefix(k, "openid.") {
			form[k] = vs
		}
	}
	form.Set("openid.mode", "check_authentication")

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return verifyErr(ReasonProviderUnreachable, "", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := o.http.Do(req)
	if err != nil {
		return verifyErr(ReasonProviderUnreachable, "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return verifyErr(ReasonProviderUnreachable, "", fmt.Errorf("check_authentication status %d", resp.StatusCode))
	}

	kv, err := parseKeyValueForm(io.LimitReader(resp.Body, maxVerifyBody))
	if err != nil {
		return verifyErr(ReasonProviderUnreachable, "", err)
	}
	if kv["is_valid"] != "true" {
		return verifyErr(ReasonProviderRejected, "", nil)
	}
	return nil
}

// parseClaimedID valida la forma de la identidad y extrae el SteamID64.
func parseClaimedID(claimedID string) (string, error) {
	m := claimedIDRE.FindStringSubmatch(claimedID)
	if m == nil {
		return "", verifyErr(ReasonMalformedIdentity, "", nil)
	}
	if _, err := strconv.ParseUint(m[1], 10, 64); err != nil {
		return "", verifyErr(ReasonMalformedIdentity, "steamid out of range", err)
	}
	return m[1], nil
}

// parseKeyValueForm parsea el "Key-Value Form Encoding" de OpenID 2.0 (key:value\n).
func parseKeyValueForm(r io.Reader) (map[string]string, error) {
	out := make(map[string]string)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		k, v, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out, sc.Err()
}
