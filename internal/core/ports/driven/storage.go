package driven

import (
	"context"

	"github.com/custodia-labs/contentbuilder/internal/core/domain"
)

// StorageBackend persists sanitised records keyed by string.
// Implementations sanitise values before writing, so anything placed in
// a record can be decoded back as plain JSON.
type StorageBackend interface {
	// GetItem retrieves a record by key.
	// Returns domain.ErrNotFound if the key does not exist.
	GetItem(ctx context.Context, key string) (*domain.Record, error)

	// SetItem sanitises and stores a value under key with the given kind.
	SetItem(ctx context.Context, key string, value any, kind domain.RecordKind) error

	// RemoveItem deletes a record. A missing key is not an error.
	RemoveItem(ctx context.Context, key string) error

	// Keys returns the keys of all records of the given kind, sorted.
	// An empty kind returns every key.
	Keys(ctx context.Context, kind domain.RecordKind) ([]string, error)

	// Close releases backend resources.
	Close() error
}

// LocalStore is a small synchronous key/value store holding raw bytes.
// It backs the autosave fallback, the emergency save and legacy data.
type LocalStore interface {
	// GetItem returns the bytes stored under key.
	// Returns domain.ErrNotFound if the key does not exist.
	GetItem(key string) ([]byte, error)

	// SetItem stores bytes under key.
	// Returns domain.ErrQuotaExceeded if the store is full.
	SetItem(key string, value []byte) error

	// RemoveItem deletes a key. A missing key is not an error.
	RemoveItem(key string) error
}
