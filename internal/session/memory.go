package session

import (
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultCleanupInterval es el intervalo del janitor de go-cache.
const DefaultCleanupInterval = time.Minute

// MemoryConfig configura el MemoryStore.
type MemoryConfig struct {
	// MaxEntries limita los registros vivos. 0 = sin límite.
	MaxEntries int
	// CleanupInterval del barrido de vencidos. Default: 1m.
	CleanupInterval time.Duration
}

// MemoryStore implementa Store in-process sobre go-cache.
// go-cache resuelve TTL y barrido; el mutex propio hace atómico get+delete y
// el chequeo de capacidad + insert.
type MemoryStore struct {
	mu  sync.Mutex
	c   *gocache.Cache
	max int
}

var _ Store = (*MemoryStore)(nil)

// NewMemory crea un MemoryStore.
func NewMemory(cfg MemoryConfig) *MemoryStore {
	interval := cfg.CleanupInterval
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	return &MemoryStore{
		c:   gocache.New(gocache.NoExpiration, interval),
		max: cfg.MaxEntries,
	}
}

func (s *MemoryStore) Create(id string, rec Record, ttl time.Duration) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidID
	}
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.max > 0 && s.c.ItemCount() >= s.max {
		// ItemCount cuenta vencidos que el janitor todavía no barrió
		s.c.DeleteExpired()
		if s.c.ItemCount() >= s.max {
			return ErrFull
		}
	}
	// Add falla si la key existe y no venció: nunca sobreescribe
	if err := s.c.Add(id, rec, ttl); err != nil {
		return ErrExists
	}
	return nil
}

func (s *MemoryStore) Peek(id string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(id)
}

func (s *MemoryStore) TakeAndRemove(id string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.get(id)
	if !ok {
		return nil, false
	}
	s.c.Delete(id)
	return rec, true
}

func (s *MemoryStore) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.get(id); !ok {
		return false
	}
	s.c.Delete(id)
	return true
}

func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.c.Flush()
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.c.DeleteExpired()
	return s.c.ItemCount()
}

// get asume s.mu tomado.
func (s *MemoryStore) get(id string) (Record, bool) {
	v, ok := s.c.Get(id)
	if !ok {
		return nil, false
	}
	rec, ok := v.(Record)
	return rec, ok
}
