package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown normaliser, backend or export format.
	ErrUnsupportedType = errors.New("unsupported type")

	// Persistence Errors.

	// ErrStorageUnavailable indicates the storage backend cannot serve requests.
	// Returned by an open circuit breaker or a closed backend.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrQuotaExceeded indicates a store refused a write because it is full.
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// ErrPayloadTooLarge indicates a fallback write was refused because the
	// serialised payload exceeds the fallback size cap.
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrSaveInProgress indicates an operation was refused because a save
	// is queued or running.
	ErrSaveInProgress = errors.New("save in progress")

	// ErrCorruptRecord indicates persisted data could not be decoded.
	ErrCorruptRecord = errors.New("corrupt record")
)
