// Package breaker wraps a StorageBackend in a circuit breaker so a failing
// backend is skipped quickly and the autosave fallback takes over.
package breaker

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/custodia-labs/contentbuilder/internal/core/domain"
	"github.com/custodia-labs/contentbuilder/internal/core/ports/driven"
	"github.com/custodia-labs/contentbuilder/internal/logger"
)

// Ensure Backend implements the interface.
var _ driven.StorageBackend = (*Backend)(nil)

// Config tunes the breaker.
type Config struct {
	Name string

	// FailureThreshold is the number of consecutive failures that opens
	// the breaker.
	FailureThreshold uint32

	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration

	// MaxRequests is the number of probes allowed while half-open.
	MaxRequests uint32
}

// DefaultConfig returns the production breaker settings.
func DefaultConfig() Config {
	return Config{
		Name:             "storage",
		FailureThreshold: 5,
		Timeout:          30 * time.Second,
		MaxRequests:      1,
	}
}

// Backend forwards every call to the wrapped backend through the breaker.
type Backend struct {
	next driven.StorageBackend
	cb   *gobreaker.CircuitBreaker[any]
}

// New wraps next.
func New(next driven.StorageBackend, cfg Config) *Backend {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = DefaultConfig().FailureThreshold
	}
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		// Caller errors say nothing about backend health.
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, domain.ErrNotFound) ||
				errors.Is(err, domain.ErrInvalidInput) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker %s: %s -> %s", name, from, to)
		},
	}
	return &Backend{next: next, cb: gobreaker.NewCircuitBreaker[any](settings)}
}

// State returns the breaker state name.
func (b *Backend) State() string {
	return b.cb.State().String()
}

func (b *Backend) execute(fn func() (any, error)) (any, error) {
	out, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return out, err
}

// GetItem retrieves a record by key.
func (b *Backend) GetItem(ctx context.Context, key string) (*domain.Record, error) {
	out, err := b.execute(func() (any, error) {
		return b.next.GetItem(ctx, key)
	})
	if err != nil {
		return nil, err
	}
	return out.(*domain.Record), nil
}

// SetItem sanitises and stores a value.
func (b *Backend) SetItem(ctx context.Context, key string, value any, kind domain.RecordKind) error {
	_, err := b.execute(func() (any, error) {
		return nil, b.next.SetItem(ctx, key, value, kind)
	})
	return err
}

// RemoveItem deletes a record.
func (b *Backend) RemoveItem(ctx context.Context, key string) error {
	_, err := b.execute(func() (any, error) {
		return nil, b.next.RemoveItem(ctx, key)
	})
	return err
}

// Keys returns the keys of all records of the given kind.
func (b *Backend) Keys(ctx context.Context, kind domain.RecordKind) ([]string, error) {
	out, err := b.execute(func() (any, error) {
		return b.next.Keys(ctx, kind)
	})
	if err != nil {
		return nil, err
	}
	return out.([]string), nil
}

// Close closes the wrapped backend.
func (b *Backend) Close() error {
	return b.next.Close()
}
