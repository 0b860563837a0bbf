package memory

import (
	"fmt"
	"sync"

	"github.com/custodia-labs/contentbuilder/internal/core/domain"
	"github.com/custodia-labs/contentbuilder/internal/core/ports/driven"
)

// Ensure LocalStore implements the interface.
var _ driven.LocalStore = (*LocalStore)(nil)

// LocalStore is an in-memory implementation of driven.LocalStore.
type LocalStore struct {
	mu    sync.RWMutex
	items map[string][]byte
	used  int
	quota int
}

// LocalStoreOption configures a LocalStore.
type LocalStoreOption func(*LocalStore)

// WithQuota limits the total stored bytes. Zero means unlimited.
func WithQuota(bytes int) LocalStoreOption {
	return func(s *LocalStore) {
		s.quota = bytes
	}
}

// NewLocalStore creates a new in-memory local store.
func NewLocalStore(opts ...LocalStoreOption) *LocalStore {
	s := &LocalStore{items: make(map[string][]byte)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetItem returns the bytes stored under key.
func (s *LocalStore) GetItem(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.items[key]
	if !ok {
		return nil, fmt.Errorf("local item %s: %w", key, domain.ErrNotFound)
	}
	return append([]byte(nil), data...), nil
}

// SetItem stores bytes under key.
func (s *LocalStore) SetItem(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	used := s.used - len(s.items[key]) + len(value)
	if s.quota > 0 && used > s.quota {
		return fmt.Errorf("local item %s (%d bytes): %w", key, len(value), domain.ErrQuotaExceeded)
	}
	s.items[key] = append([]byte(nil), value...)
	s.used = used
	return nil
}

// RemoveItem deletes a key.
func (s *LocalStore) RemoveItem(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.used -= len(s.items[key])
	delete(s.items, key)
	return nil
}

// Has reports whether key is present.
func (s *LocalStore) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.items[key]
	return ok
}
