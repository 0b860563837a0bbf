// Package local provides the on-disk LocalStore holding autosave fallbacks,
// emergency saves and legacy data.
package local

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/contentbuilder/internal/adapters/driven/storage"
	"github.com/custodia-labs/contentbuilder/internal/core/domain"
	"github.com/custodia-labs/contentbuilder/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.LocalStore = (*Store)(nil)

// DefaultQuota mirrors the size budget of browser local storage.
const DefaultQuota = 5 << 20

// Store keeps one file per key in a directory. Total size is capped by
// the quota.
type Store struct {
	mu    sync.Mutex
	dir   string
	quota int64
}

// Option configures a Store.
type Option func(*Store)

// WithQuota sets the byte budget. Zero or less disables the limit.
func WithQuota(bytes int64) Option {
	return func(s *Store) {
		s.quota = bytes
	}
}

// NewStore opens the store in dir, creating it if needed.
func NewStore(dir string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating local store directory: %w", err)
	}
	s := &Store{dir: dir, quota: DefaultQuota}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dir returns the store directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key)
}

// GetItem returns the bytes stored under key.
func (s *Store) GetItem(key string) ([]byte, error) {
	if storage.ValidateKey(key) != nil {
		return nil, fmt.Errorf("local item %s: %w", key, domain.ErrNotFound)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("local item %s: %w", key, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read local item %s: %w", key, err)
	}
	return data, nil
}

// SetItem stores bytes under key through a temporary file and a rename.
// Returns domain.ErrQuotaExceeded when the write would exceed the quota.
func (s *Store) SetItem(key string, value []byte) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.quota > 0 {
		used, err := s.usageExcluding(key)
		if err != nil {
			return err
		}
		if used+int64(len(value)) > s.quota {
			return fmt.Errorf("local item %s (%d bytes): %w", key, len(value), domain.ErrQuotaExceeded)
		}
	}

	target := s.path(key)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, value, 0600); err != nil {
		return fmt.Errorf("write local item %s: %w", key, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace local item %s: %w", key, err)
	}
	return nil
}

// RemoveItem deletes a key.
func (s *Store) RemoveItem(key string) error {
	if storage.ValidateKey(key) != nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove local item %s: %w", key, err)
	}
	return nil
}

// Usage returns the bytes held by every key.
func (s *Store) Usage() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usageExcluding("")
}

// usageExcluding sums file sizes, skipping except. Caller must hold the lock.
func (s *Store) usageExcluding(except string) (int64, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("read local store: %w", err)
	}
	var total int64
	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == except {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		total += info.Size()
	}
	return total, nil
}
