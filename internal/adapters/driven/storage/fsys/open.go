//go:build !(js && wasm)

package fsys

import "context"

// Open returns the platform file system backend. Outside the browser
// there is no persistent hackpadfs target, so records live in memory.
func Open(_ context.Context) (*Backend, *LocalStore, error) {
	return OpenMemory()
}
