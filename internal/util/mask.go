package util

import (
	"net/url"
	"strings"
)

// MaskToken deja visibles los primeros 4 y últimos 2 caracteres de un
// identificador opaco (session_key, code). Suficiente para correlacionar logs
// sin que el valor sea reutilizable.
func MaskToken(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return ""
	case len(s) <= 8:
		return "***"
	default:
		return s[:4] + "…" + s[len(s)-2:]
	}
}

// StripQuery quita query y fragment de una URL. Si no parsea, la enmascara entera.
func StripQuery(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "***"
	}
	u.RawQuery = ""
	u.Fragment = ""
	u.User = nil
	return u.String()
}
