// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - StorageBackend: Asynchronous record persistence (Badger, SQLite, hackpadfs, memory)
//   - LocalStore: Synchronous key/value store for fallback and emergency copies
//   - ConfigStore: Application configuration
//   - Normaliser: Extracts text from imported files
//   - NormaliserRegistry: Selects the appropriate normaliser
//   - ChunkSplitter: Splits text into content chunks
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - Notifier: User-facing toasts. Without it, failures are only logged.
//   - AutosaveObserver: Save metrics. Without it, only in-process stats are kept.
//   - VersionObserver: Version history metrics.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, normaliser or postprocessor package
package driven
