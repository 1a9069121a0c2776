package bridge

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// clientAuthenticator valida las credenciales del único cliente configurado.
type clientAuthenticator struct {
	id     string
	secret string
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

// Verify compara en tiempo constante. Sin cliente configurado, nada pasa.
func (c clientAuthenticator) Verify(clientID, clientSecret string) bool {
	if c.id == "" || c.secret == "" || clientID == "" || clientSecret == "" {
		return false
	}
	idOK := subtle.ConstantTimeCompare([]byte(clientID), []byte(c.id)) == 1

	var secretOK bool
	if isBcryptHash(c.secret) {
		secretOK = bcrypt.CompareHashAndPassword([]byte(c.secret), []byte(clientSecret)) == nil
	} else {
		secretOK = subtle.ConstantTimeCompare([]byte(clientSecret), []byte(c.secret)) == 1
	}
	return idOK && secretOK
}
