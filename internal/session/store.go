package session

import (
	"errors"
	"time"
)

var (
	// ErrExists: el id ya está presente. El store nunca sobreescribe.
	ErrExists = errors.New("session: id already exists")
	// ErrFull: se alcanzó el límite de registros vivos.
	ErrFull = errors.New("session: store is full")
	// ErrInvalidID: id vacío.
	ErrInvalidID = errors.New("session: empty id")
)

// Store es el contrato del store de correlación. Todas las operaciones son
// seguras para uso concurrente y no fallan salvo en Create.
type Store interface {
	// Create inserta rec bajo id con el TTL dado (ttl <= 0: sin vencimiento).
	Create(id string, rec Record, ttl time.Duration) error
	// Peek lee sin consumir.
	Peek(id string) (Record, bool)
	// TakeAndRemove lee y borra atómicamente. Es la única forma de consumir.
	TakeAndRemove(id string) (Record, bool)
	Remove(id string) bool
	Clear()
	// Len devuelve la cantidad de registros vivos (no vencidos).
	Len() int
}
