package memory

import (
	"context"
	"sync"

	"github.com/lunaredge/storefront/internal/app/storage"
)

// Store is an in-memory implementation of the key-value contract. It is safe
// for concurrent use and is primarily intended for tests and ephemeral
// sessions.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ storage.KV = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	s.data[key] = stored
	return nil
}

func (s *Store) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	return nil
}
