// Package fsys stores records as files on a hackpadfs file system. In the
// browser the file system is IndexedDB; elsewhere it is usually in memory.
package fsys

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/hack-pad/hackpadfs"

	"github.com/custodia-labs/contentbuilder/internal/adapters/driven/storage"
	"github.com/custodia-labs/contentbuilder/internal/core/domain"
	"github.com/custodia-labs/contentbuilder/internal/core/ports/driven"
	"github.com/custodia-labs/contentbuilder/internal/logger"
)

// Ensure Backend implements the interface.
var _ driven.StorageBackend = (*Backend)(nil)

const (
	recordsDir = "records"
	recordExt  = ".json"
)

// Backend writes one JSON file per record under records/.
type Backend struct {
	fsys hackpadfs.FS
	now  func() time.Time

	mu     sync.RWMutex
	closed bool
}

// NewBackend creates a backend on fsys, creating the records directory.
func NewBackend(fsys hackpadfs.FS) (*Backend, error) {
	if err := hackpadfs.MkdirAll(fsys, recordsDir, 0700); err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", domain.ErrStorageUnavailable, recordsDir, err)
	}
	return &Backend{fsys: fsys, now: time.Now}, nil
}

func recordPath(key string) string {
	return path.Join(recordsDir, key+recordExt)
}

// GetItem retrieves a record by key.
func (b *Backend) GetItem(_ context.Context, key string) (*domain.Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, domain.ErrStorageUnavailable
	}
	if err := storage.ValidateKey(key); err != nil {
		return nil, fmt.Errorf("record %s: %w", key, domain.ErrNotFound)
	}

	data, err := hackpadfs.ReadFile(b.fsys, recordPath(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("record %s: %w", key, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return storage.UnmarshalRecord(data)
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

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return domain.ErrStorageUnavailable
	}
	if err := hackpadfs.WriteFullFile(b.fsys, recordPath(key), data, 0600); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// RemoveItem deletes a record.
func (b *Backend) RemoveItem(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return domain.ErrStorageUnavailable
	}
	if storage.ValidateKey(key) != nil {
		return nil
	}
	err := hackpadfs.Remove(b.fsys, recordPath(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// Keys returns the keys of all records of the given kind. Files that do not
// decode are skipped with a warning.
func (b *Backend) Keys(ctx context.Context, kind domain.RecordKind) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, domain.ErrStorageUnavailable
	}

	entries, err := hackpadfs.ReadDir(b.fsys, recordsDir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", recordsDir, err)
	}

	keys := []string{}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, recordExt) {
			continue
		}
		data, err := hackpadfs.ReadFile(b.fsys, path.Join(recordsDir, name))
		if err != nil {
			logger.Warn("skipping record file %s: %v", name, err)
			continue
		}
		rec, err := storage.UnmarshalRecord(data)
		if err != nil {
			logger.Warn("skipping record file %s: %v", name, err)
			continue
		}
		if storage.MatchKind(rec.Kind, kind) {
			keys = append(keys, rec.Key)
		}
	}
	return storage.SortedKeys(keys), nil
}

// Close marks the backend closed. The file system is owned by the caller.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}
