//go:build js && wasm

package fsys

import "context"

// Open returns the IndexedDB backed backend.
func Open(ctx context.Context) (*Backend, *LocalStore, error) {
	return OpenIndexedDB(ctx)
}
