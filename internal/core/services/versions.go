package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"github.com/custodia-labs/contentbuilder/internal/core/domain"
	"github.com/custodia-labs/contentbuilder/internal/core/ports/driven"
	"github.com/custodia-labs/contentbuilder/internal/core/ports/driving"
	"github.com/custodia-labs/contentbuilder/internal/logger"
	"github.com/custodia-labs/contentbuilder/internal/sanitize"
)

// Ensure VersionStore implements the interface.
var _ driving.VersionService = (*VersionStore)(nil)

// VersionOption configures a VersionStore.
type VersionOption func(*VersionStore)

// WithVersionObserver sets the observer told about history size changes.
func WithVersionObserver(o driven.VersionObserver) VersionOption {
	return func(s *VersionStore) {
		s.observer = o
	}
}

// VersionStore keeps the newest-first version history, capped at
// domain.MaxVersions. The whole list is persisted under one key.
type VersionStore struct {
	backend  driven.StorageBackend
	local    driven.LocalStore
	observer driven.VersionObserver
	now      func() time.Time

	// mu serialises writers across the persist call.
	mu       sync.Mutex
	versions []domain.Version
	loaded   bool
}

// NewVersionStore creates a version store. local holds legacy histories to
// migrate on first use and may be nil.
func NewVersionStore(backend driven.StorageBackend, local driven.LocalStore, opts ...VersionOption) *VersionStore {
	s := &VersionStore{
		backend: backend,
		local:   local,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ensureLoadedLocked loads the history once. Must be called with mu held.
// An unavailable backend leaves the store unloaded so the next call retries;
// starting empty then would overwrite the durable history on the next save.
func (s *VersionStore) ensureLoadedLocked(ctx context.Context) error {
	if s.loaded {
		return nil
	}

	rec, err := s.backend.GetItem(ctx, domain.KeyVersions)
	if errors.Is(err, domain.ErrStorageUnavailable) {
		return fmt.Errorf("failed to load version history: %w", err)
	}
	s.loaded = true
	if err == nil {
		var versions []domain.Version
		if decodeErr := json.Unmarshal(rec.Value, &versions); decodeErr == nil {
			s.versions = capVersions(versions)
			return nil
		}
		logger.Warn("version history is corrupt, trying legacy copy")
	} else if !errors.Is(err, domain.ErrNotFound) {
		logger.Warn("load version history: %v", err)
	}

	s.versions = s.migrateLegacyLocked(ctx)
	return nil
}

// migrateLegacyLocked moves a flat version array from the local store into
// the backend. Any failure leaves an empty history.
func (s *VersionStore) migrateLegacyLocked(ctx context.Context) []domain.Version {
	if s.local == nil {
		return nil
	}
	raw, err := s.local.GetItem(domain.KeyVersions)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("read legacy versions: %v", err)
		}
		return nil
	}

	var legacy []domain.Version
	if err := json.Unmarshal(raw, &legacy); err != nil {
		logger.Warn("legacy versions are corrupt, starting empty: %v", err)
		return nil
	}
	legacy = capVersions(legacy)

	if err := s.backend.SetItem(ctx, domain.KeyVersions, legacy, domain.RecordKindVersion); err != nil {
		logger.Warn("persist migrated versions, starting empty: %v", err)
		return nil
	}
	if err := s.local.RemoveItem(domain.KeyVersions); err != nil {
		logger.Warn("remove legacy versions: %v", err)
	}
	logger.Info("migrated %d legacy versions", len(legacy))
	return legacy
}

func capVersions(versions []domain.Version) []domain.Version {
	if len(versions) > domain.MaxVersions {
		return versions[:domain.MaxVersions]
	}
	return versions
}

// build creates a version holding deep copies of the payload.
func (s *VersionStore) build(payload domain.VersionPayload, name string, isAutoSave bool) domain.Version {
	ts := s.now().UTC().Truncate(time.Millisecond)
	v := domain.Version{
		ID:         newID(),
		Name:       name,
		Type:       payload.InferType(),
		Timestamp:  ts,
		IsAutoSave: isAutoSave,
	}
	fill(&v, payload)
	if v.Name == "" {
		if isAutoSave {
			v.Name = "Auto-save " + ts.Local().Format("2006-01-02 15:04:05")
		} else {
			v.Name = fmt.Sprintf("Version %d", len(s.versions)+1)
		}
	}
	return v
}

// fill copies payload content and counts into v.
func fill(v *domain.Version, payload domain.VersionPayload) {
	v.Categories = domain.CloneCategories(payload.Categories)
	v.Chunks = domain.CloneChunks(payload.Chunks)
	v.ExportedData = nil
	if payload.ExportedData != nil {
		v.ExportedData = sanitize.Value(payload.ExportedData)
	}

	v.QuestionCount, v.CategoryCount, v.ChunkCount, v.SourceCount = 0, 0, 0, 0
	if payload.Categories != nil {
		v.CategoryCount = len(payload.Categories)
		v.QuestionCount = domain.CountQuestions(payload.Categories)
	}
	if payload.Chunks != nil {
		v.ChunkCount = len(payload.Chunks)
		v.SourceCount = domain.CountSources(payload.Chunks)
	}
}

func cloneVersion(v *domain.Version) domain.Version {
	out := *v
	out.Categories = domain.CloneCategories(v.Categories)
	out.Chunks = domain.CloneChunks(v.Chunks)
	if v.ExportedData != nil {
		out.ExportedData = sanitize.Value(v.ExportedData)
	}
	return out
}

// persistLocked writes the whole history. Must be called with mu held.
func (s *VersionStore) persistLocked(ctx context.Context) error {
	if err := s.backend.SetItem(ctx, domain.KeyVersions, s.versions, domain.RecordKindVersion); err != nil {
		logger.Warn("persist version history: %v", err)
		return fmt.Errorf("persist versions: %w", err)
	}
	return nil
}

func (s *VersionStore) observeLocked() {
	if s.observer == nil {
		return
	}
	auto := 0
	for i := range s.versions {
		if s.versions[i].IsAutoSave {
			auto++
		}
	}
	s.observer.ObserveVersions(len(s.versions), auto)
}

// SaveVersion prepends a new version and trims the history to the cap.
// A persist failure is returned but the version stays in memory.
func (s *VersionStore) SaveVersion(
	ctx context.Context,
	payload domain.VersionPayload,
	name string,
	isAutoSave bool,
) (*domain.Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}

	v := s.build(payload, name, isAutoSave)
	s.versions = capVersions(append([]domain.Version{v}, s.versions...))
	s.observeLocked()

	out := cloneVersion(&v)
	return &out, s.persistLocked(ctx)
}

// UpdateVersion replaces a version's content in place with a new timestamp.
// It returns nil if no version has the ID.
func (s *VersionStore) UpdateVersion(
	ctx context.Context,
	id string,
	payload domain.VersionPayload,
	name string,
) (*domain.Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}

	i := s.indexLocked(id)
	if i < 0 {
		return nil, nil
	}
	v := &s.versions[i]
	v.Type = payload.InferType()
	v.Timestamp = s.now().UTC().Truncate(time.Millisecond)
	if name != "" {
		v.Name = name
	}
	fill(v, payload)

	out := cloneVersion(v)
	return &out, s.persistLocked(ctx)
}

func (s *VersionStore) indexLocked(id string) int {
	for i := range s.versions {
		if s.versions[i].ID == id {
			return i
		}
	}
	return -1
}

// LoadVersion returns a deep copy of a version, or nil if absent.
func (s *VersionStore) LoadVersion(ctx context.Context, id string) (*domain.Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}

	i := s.indexLocked(id)
	if i < 0 {
		return nil, nil
	}
	out := cloneVersion(&s.versions[i])
	return &out, nil
}

// DeleteVersion removes a version and reports whether one was removed.
func (s *VersionStore) DeleteVersion(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return false, err
	}

	i := s.indexLocked(id)
	if i < 0 {
		return false, nil
	}
	s.versions = append(s.versions[:i:i], s.versions[i+1:]...)
	s.observeLocked()
	return true, s.persistLocked(ctx)
}

// Versions returns deep copies of the history, newest first.
func (s *VersionStore) Versions(ctx context.Context) ([]domain.Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}

	out := make([]domain.Version, len(s.versions))
	for i := range s.versions {
		out[i] = cloneVersion(&s.versions[i])
	}
	return out, nil
}

// Stats summarises the history.
func (s *VersionStore) Stats(ctx context.Context) (domain.VersionStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return domain.VersionStats{}, err
	}

	stats := domain.VersionStats{Total: len(s.versions)}
	for i := range s.versions {
		v := &s.versions[i]
		if v.IsAutoSave {
			stats.Auto++
		} else {
			stats.Manual++
		}
		ts := v.Timestamp
		if stats.Oldest == nil || ts.Before(*stats.Oldest) {
			stats.Oldest = &ts
		}
		if stats.Newest == nil || ts.After(*stats.Newest) {
			newest := ts
			stats.Newest = &newest
		}
	}
	return stats, nil
}
