// Package badger provides the durable native StorageBackend on BadgerDB.
package badger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/custodia-labs/contentbuilder/internal/adapters/driven/storage"
	"github.com/custodia-labs/contentbuilder/internal/core/domain"
	"github.com/custodia-labs/contentbuilder/internal/core/ports/driven"
	"github.com/custodia-labs/contentbuilder/internal/logger"
)

// Ensure Backend implements the interface.
var _ driven.StorageBackend = (*Backend)(nil)

// recordPrefix namespaces record keys inside the database.
const recordPrefix = "record:"

// Backend stores one marshalled record per key.
type Backend struct {
	db   *badger.DB
	path string
	now  func() time.Time

	mu     sync.RWMutex
	closed bool
}

// Open opens or creates a database in dir.
func Open(dir string) (*Backend, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	opts.SyncWrites = true
	return open(opts, dir)
}

// OpenInMemory opens a database that lives only in memory.
func OpenInMemory() (*Backend, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return open(opts, ":memory:")
}

func open(opts badger.Options, path string) (*Backend, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: open badger at %s: %v", domain.ErrStorageUnavailable, path, err)
	}
	logger.Debug("badger backend opened at %s", path)
	return &Backend{db: db, path: path, now: time.Now}, nil
}

// Path returns the database directory.
func (b *Backend) Path() string {
	return b.path
}

func (b *Backend) checkOpen() error {
	if b.closed {
		return domain.ErrStorageUnavailable
	}
	return nil
}

// GetItem retrieves a record by key.
func (b *Backend) GetItem(_ context.Context, key string) (*domain.Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}

	var rec *domain.Record
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(recordPrefix + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("record %s: %w", key, domain.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("get %s: %w", key, err)
		}
		return item.Value(func(val []byte) error {
			rec, err = storage.UnmarshalRecord(val)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// SetItem sanitises and stores a value.
func (b *Backend) SetItem(_ context.Context, key string, value any, kind domain.RecordKind) error {
	rec, err := storage.NewRecord(key, value, kind, b.now())
	if err != nil {
		return err
	}
	data, err := storage.MarshalRecord(rec)
	if err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkOpen(); err != nil {
		return err
	}

	err = b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(recordPrefix+key), data)
	})
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// RemoveItem deletes a record.
func (b *Backend) RemoveItem(_ context.Context, key string) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkOpen(); err != nil {
		return err
	}

	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(recordPrefix + key))
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// Keys returns the keys of all records of the given kind. Undecodable
// records are skipped with a warning.
func (b *Backend) Keys(ctx context.Context, kind domain.RecordKind) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkOpen(); err != nil {
		return nil, err
	}

	var keys []string
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(recordPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			var rec *domain.Record
			err := item.Value(func(val []byte) error {
				var err error
				rec, err = storage.UnmarshalRecord(val)
				return err
			})
			if err != nil {
				logger.Warn("skipping record %s: %v", item.Key(), err)
				continue
			}
			if storage.MatchKind(rec.Kind, kind) {
				keys = append(keys, rec.Key)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	if keys == nil {
		keys = []string{}
	}
	return storage.SortedKeys(keys), nil
}

// Close closes the database. Later calls fail with ErrStorageUnavailable.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.db.Close()
}
