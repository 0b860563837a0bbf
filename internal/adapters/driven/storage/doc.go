// Package storage holds the record codec shared by every StorageBackend
// adapter. Backends live in subpackages:
//
//   - memory: map-backed backend and local store, also the in-memory fallback
//   - badger: durable native default (BadgerDB)
//   - sqlite: durable alternative with embedded migrations (modernc SQLite)
//   - fsys: hackpadfs-backed backend and local store (IndexedDB under js/wasm)
//   - local: file-per-key local store with a quota
//   - breaker: circuit-breaking decorator
package storage
