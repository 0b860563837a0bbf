package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/contentbuilder/internal/adapters/driven/storage"
	"github.com/custodia-labs/contentbuilder/internal/core/domain"
	"github.com/custodia-labs/contentbuilder/internal/core/ports/driven"
)

// Ensure Backend implements the interface.
var _ driven.StorageBackend = (*Backend)(nil)

// Backend is an in-memory implementation of driven.StorageBackend.
// It is the fallback when no durable backend can be opened and the
// default backend in tests.
type Backend struct {
	mu      sync.RWMutex
	records map[string]*domain.Record
	closed  bool
	now     func() time.Time
}

// NewBackend creates a new in-memory storage backend.
func NewBackend() *Backend {
	return &Backend{
		records: make(map[string]*domain.Record),
		now:     time.Now,
	}
}

// GetItem retrieves a record by key.
func (b *Backend) GetItem(_ context.Context, key string) (*domain.Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, domain.ErrStorageUnavailable
	}
	rec, ok := b.records[key]
	if !ok {
		return nil, fmt.Errorf("record %s: %w", key, domain.ErrNotFound)
	}
	return storage.CloneRecord(rec), nil
}

// SetItem sanitises and stores a value.
func (b *Backend) SetItem(_ context.Context, key string, value any, kind domain.RecordKind) error {
	rec, err := storage.NewRecord(key, value, kind, b.now())
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return domain.ErrStorageUnavailable
	}
	b.records[key] = rec
	return nil
}

// RemoveItem deletes a record.
func (b *Backend) RemoveItem(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return domain.ErrStorageUnavailable
	}
	delete(b.records, key)
	return nil
}

// Keys returns the keys of all records of the given kind.
func (b *Backend) Keys(_ context.Context, kind domain.RecordKind) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, domain.ErrStorageUnavailable
	}
	keys := make([]string, 0, len(b.records))
	for key, rec := range b.records {
		if storage.MatchKind(rec.Kind, kind) {
			keys = append(keys, key)
		}
	}
	return storage.SortedKeys(keys), nil
}

// Close marks the backend closed. Later calls fail with ErrStorageUnavailable.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// Len returns the number of stored records.
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.records)
}
