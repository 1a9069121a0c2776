// Package idgen genera identificadores opacos de correlación.
package idgen

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// Generator produce identificadores de correlación.
type Generator interface {
	NewID() (string, error)
}

// Random genera 128 bits de entropía de crypto/rand en formato texto UUID.
// No se fijan los bits de versión/variante de RFC 4122: los 128 bits son aleatorios.
type Random struct {
	// Reader por defecto crypto/rand.Reader (inyectable en tests).
	Reader io.Reader
}

func (g Random) NewID() (string, error) {
	r := g.Reader
	if r == nil {
		r = rand.Reader
	}
	var id uuid.UUID
	if _, err := io.ReadFull(r, id[:]); err != nil {
		return "", fmt.Errorf("idgen: read entropy: %w", err)
	}
	return id.String(), nil
}

// Func adapta una función a Generator.
type Func func() (string, error)

func (f Func) NewID() (string, error) { return f() }
