// Package bridge contiene los DTOs de /auth/steam/*.
package bridge

// AuthorizeRequest son los query params de GET /auth/steam/authorize.
type AuthorizeRequest struct {
	RedirectURI string `json:"redirect_uri"`
	State       string `json:"state"`
}

// CallbackRequest es lo que llega de Steam en GET /auth/steam/callback.
// CallbackURL es la URL completa (esquema + host + path + query) tal como
// la recibió el bridge; el adapter la usa para verificar la assertion.
type CallbackRequest struct {
	SessionKey  string
	CallbackURL string
}

// TokenRequest es el body de POST /auth/steam/token (form o JSON).
// Las credenciales pueden venir también por Basic auth.
type TokenRequest struct {
	GrantType    string `json:"grant_type"`
	Code         string `json:"code"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RedirectURI  string `json:"redirect_uri,omitempty"`
}

// TokenResponse es la respuesta exitosa de /token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// RedirectResult es el destino del 302 de authorize y callback.
type RedirectResult struct {
	RedirectURL string
}
