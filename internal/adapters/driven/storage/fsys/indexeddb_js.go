//go:build js && wasm

package fsys

import (
	"context"
	"fmt"

	"github.com/hack-pad/hackpadfs/indexeddb"
)

// DatabaseName is the IndexedDB database holding every record.
const DatabaseName = "contentbuilder"

// OpenIndexedDB opens the browser database and returns the record backend
// and local store that share it.
func OpenIndexedDB(ctx context.Context) (*Backend, *LocalStore, error) {
	idb, err := indexeddb.NewFS(ctx, DatabaseName, indexeddb.Options{})
	if err != nil {
		return nil, nil, fmt.Errorf("open indexeddb %s: %w", DatabaseName, err)
	}
	backend, err := NewBackend(idb)
	if err != nil {
		return nil, nil, err
	}
	local, err := NewLocalStore(idb)
	if err != nil {
		return nil, nil, err
	}
	return backend, local, nil
}
