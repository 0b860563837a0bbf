package fsys

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sync"

	"github.com/hack-pad/hackpadfs"

	"github.com/custodia-labs/contentbuilder/internal/adapters/driven/storage"
	"github.com/custodia-labs/contentbuilder/internal/core/domain"
	"github.com/custodia-labs/contentbuilder/internal/core/ports/driven"
)

// Ensure LocalStore implements the interface.
var _ driven.LocalStore = (*LocalStore)(nil)

const localDir = "local"

// LocalStore keeps raw bytes in files under local/.
type LocalStore struct {
	mu   sync.Mutex
	fsys hackpadfs.FS
}

// NewLocalStore creates a local store on fsys.
func NewLocalStore(fsys hackpadfs.FS) (*LocalStore, error) {
	if err := hackpadfs.MkdirAll(fsys, localDir, 0700); err != nil {
		return nil, fmt.Errorf("create %s: %w", localDir, err)
	}
	return &LocalStore{fsys: fsys}, nil
}

// GetItem returns the bytes stored under key.
func (s *LocalStore) GetItem(key string) ([]byte, error) {
	if storage.ValidateKey(key) != nil {
		return nil, fmt.Errorf("local item %s: %w", key, domain.ErrNotFound)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := hackpadfs.ReadFile(s.fsys, path.Join(localDir, key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("local item %s: %w", key, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read local item %s: %w", key, err)
	}
	return data, nil
}

// SetItem stores bytes under key.
func (s *LocalStore) SetItem(key string, value []byte) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := hackpadfs.WriteFullFile(s.fsys, path.Join(localDir, key), value, 0600); err != nil {
		return fmt.Errorf("write local item %s: %w", key, err)
	}
	return nil
}

// RemoveItem deletes a key.
func (s *LocalStore) RemoveItem(key string) error {
	if storage.ValidateKey(key) != nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	err := hackpadfs.Remove(s.fsys, path.Join(localDir, key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove local item %s: %w", key, err)
	}
	return nil
}
