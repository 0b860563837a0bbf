package services

import (
	"sort"
	"sync"
)

// Signal is a change counter with subscribers. Mutations mark it changed;
// observers run outside the lock, after the change is visible.
type Signal struct {
	mu        sync.Mutex
	version   uint64
	nextID    int
	observers map[int]func(uint64)
	depth     int
	dirty     bool
}

// NewSignal creates a signal with no subscribers.
func NewSignal() *Signal {
	return &Signal{observers: make(map[int]func(uint64))}
}

// Subscribe registers fn and returns a function that removes it.
func (s *Signal) Subscribe(fn func(version uint64)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.observers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.observers, id)
		})
	}
}

// Version returns the number of notifications emitted so far.
func (s *Signal) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Notify announces a change, or defers it to the end of the current batch.
func (s *Signal) Notify() {
	s.mu.Lock()
	if s.depth > 0 {
		s.dirty = true
		s.mu.Unlock()
		return
	}
	s.emitLocked()
}

// Batch runs fn with notifications suppressed. If anything notified during
// fn, exactly one notification is emitted afterwards. Batches nest.
func (s *Signal) Batch(fn func()) {
	s.mu.Lock()
	s.depth++
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.depth--
		if s.depth > 0 || !s.dirty {
			s.mu.Unlock()
			return
		}
		s.dirty = false
		s.emitLocked()
	}()

	fn()
}

// emitLocked bumps the version and calls observers in subscription order.
// It is entered with mu held and releases it.
func (s *Signal) emitLocked() {
	s.version++
	version := s.version
	ids := make([]int, 0, len(s.observers))
	for id := range s.observers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(uint64), len(ids))
	for i, id := range ids {
		fns[i] = s.observers[id]
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(version)
	}
}
