package bridge

import (
	"net/url"
	"strings"
)

// validRedirectURI exige URL absoluta http(s) sin fragment y, si hay allowlist,
// coincidencia exacta.
func (s *service) validRedirectURI(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" || u.Fragment != "" {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return false
	}
	if s.redirects != nil {
		_, ok := s.redirects[raw]
		return ok
	}
	return true
}

// withParams agrega params al query existente de redirectURI.
func withParams(redirectURI string, params map[string]string) (string, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
