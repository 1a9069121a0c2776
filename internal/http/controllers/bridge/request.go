package bridge

import (
	"encoding/json"
	"mime"
	"net/http"
	"strings"

	dto "github.com/dropDatabas3/steambridge/internal/http/dto/bridge"
)

const maxTokenBody = 64 << 10

// parseTokenRequest lee el body (JSON o form) y completa las credenciales con
// Basic auth, que tiene prioridad sobre el body.
func parseTokenRequest(w http.ResponseWriter, r *http.Request) (dto.TokenRequest, error) {
	var req dto.TokenRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxTokenBody)

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return dto.TokenRequest{}, err
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return dto.TokenRequest{}, err
		}
		req = dto.TokenRequest{
			GrantType:    r.PostForm.Get("grant_type"),
			Code:         r.PostForm.Get("code"),
			ClientID:     r.PostForm.Get("client_id"),
			ClientSecret: r.PostForm.Get("client_secret"),
			RedirectURI:  r.PostForm.Get("redirect_uri"),
		}
	}

	if id, secret, ok := r.BasicAuth(); ok {
		if id != "" {
			req.ClientID = id
		}
		if secret != "" {
			req.ClientSecret = secret
		}
	}
	return req, nil
}

// fullURL reconstruye la URL que vio el cliente, respetando X-Forwarded-Proto
// y X-Forwarded-Host detrás de un proxy.
func fullURL(r *http.Request) string {
	scheme := "https"
	if r.TLS == nil {
		scheme = "http"
	}
	if proto := strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")); proto != "" {
		scheme = strings.ToLower(strings.Split(proto, ",")[0])
	}
	host := r.Host
	if fh := strings.TrimSpace(r.Header.Get("X-Forwarded-Host")); fh != "" {
		host = strings.Split(fh, ",")[0]
	}
	return scheme + "://" + strings.TrimSpace(host) + r.URL.RequestURI()
}
