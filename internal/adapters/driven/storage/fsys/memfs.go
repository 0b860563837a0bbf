package fsys

import (
	"fmt"

	"github.com/hack-pad/hackpadfs/mem"
)

// OpenMemory returns a backend and local store sharing a fresh in-memory
// file system.
func OpenMemory() (*Backend, *LocalStore, error) {
	fsys, err := mem.NewFS()
	if err != nil {
		return nil, nil, fmt.Errorf("create memory fs: %w", err)
	}
	backend, err := NewBackend(fsys)
	if err != nil {
		return nil, nil, err
	}
	local, err := NewLocalStore(fsys)
	if err != nil {
		return nil, nil, err
	}
	return backend, local, nil
}
