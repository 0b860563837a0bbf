package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"github.com/custodia-labs/contentbuilder/internal/core/domain"
	"github.com/custodia-labs/contentbuilder/internal/core/ports/driven"
	"github.com/custodia-labs/contentbuilder/internal/core/ports/driving"
	"github.com/custodia-labs/contentbuilder/internal/logger"
	"github.com/custodia-labs/contentbuilder/internal/sanitize"
)

// Ensure AutosaveService implements the interface.
var _ driving.AutosaveService = (*AutosaveService)(nil)

// AutosaveConfig tunes the persistence engine.
type AutosaveConfig struct {
	// Debounce is the quiet period before a triggered save runs.
	Debounce time.Duration

	// MaxRetries is the number of primary write attempts.
	MaxRetries int

	// RetryDelay is the base back-off; attempt n waits RetryDelay*n.
	RetryDelay time.Duration

	// MaxFallbackBytes caps the local fallback copy.
	MaxFallbackBytes int
}

// DefaultAutosaveConfig returns the default engine configuration.
func DefaultAutosaveConfig() AutosaveConfig {
	return AutosaveConfig{
		Debounce:         domain.DefaultDebounceMs * time.Millisecond,
		MaxRetries:       domain.DefaultMaxRetries,
		RetryDelay:       domain.DefaultRetryDelayMs * time.Millisecond,
		MaxFallbackBytes: domain.MaxFallbackBytes,
	}
}

// AutosaveConfigFromSettings converts persisted settings to an engine config.
func AutosaveConfigFromSettings(s domain.AutosaveSettings) AutosaveConfig {
	cfg := DefaultAutosaveConfig()
	cfg.Debounce = time.Duration(s.DebounceMs) * time.Millisecond
	cfg.RetryDelay = time.Duration(s.RetryDelayMs) * time.Millisecond
	if s.MaxRetries > 0 {
		cfg.MaxRetries = s.MaxRetries
	}
	return cfg
}

// AutosaveOption configures an AutosaveService.
type AutosaveOption func(*AutosaveService)

// WithNotifier sets the notifier used to report unrecoverable failures.
func WithNotifier(n driven.Notifier) AutosaveOption {
	return func(s *AutosaveService) {
		s.notifier = n
	}
}

// WithAutosaveObserver sets the observer that receives save events.
func WithAutosaveObserver(o driven.AutosaveObserver) AutosaveOption {
	return func(s *AutosaveService) {
		s.observer = o
	}
}

// pendingSave is one scheduled debounce.
type pendingSave struct {
	timer *time.Timer
	data  any
}

// AutosaveService is the persistence engine. Saves are serialised: at most
// one runs at a time and they apply in submission order.
type AutosaveService struct {
	backend  driven.StorageBackend
	local    driven.LocalStore
	notifier driven.Notifier
	observer driven.AutosaveObserver
	cfg      AutosaveConfig
	now      func() time.Time

	mu       sync.Mutex
	pending  map[string]*pendingSave
	states   map[string]domain.AutosaveState
	tail     chan struct{}
	inflight int
	stats    domain.AutosaveStats
	closed   bool
}

// NewAutosaveService creates a persistence engine writing to backend and
// falling back to local.
func NewAutosaveService(
	backend driven.StorageBackend,
	local driven.LocalStore,
	cfg AutosaveConfig,
	opts ...AutosaveOption,
) *AutosaveService {
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	if cfg.MaxFallbackBytes <= 0 {
		cfg.MaxFallbackBytes = domain.MaxFallbackBytes
	}
	s := &AutosaveService{
		backend: backend,
		local:   local,
		cfg:     cfg,
		now:     time.Now,
		pending: make(map[string]*pendingSave),
		states:  make(map[string]domain.AutosaveState),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TriggerAutosave schedules a debounced save of data under key.
func (s *AutosaveService) TriggerAutosave(data any, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	if p, ok := s.pending[key]; ok {
		p.timer.Stop()
	}
	p := &pendingSave{data: data}
	p.timer = time.AfterFunc(s.cfg.Debounce, func() { s.fire(key, p) })
	s.pending[key] = p
	if s.states[key] == "" || s.states[key] == domain.AutosaveIdle {
		s.states[key] = domain.AutosaveDebouncing
	}
}

// fire runs a debounced save unless it was superseded or cancelled.
func (s *AutosaveService) fire(key string, p *pendingSave) {
	s.mu.Lock()
	if s.pending[key] != p {
		s.mu.Unlock()
		return
	}
	delete(s.pending, key)
	s.mu.Unlock()

	if err := s.PerformAutosave(context.Background(), p.data, key); err != nil {
		logger.Error("autosave %s failed: %v", key, err)
	}
}

// CancelPending drops the pending debounce for key.
func (s *AutosaveService) CancelPending(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(key)
}

func (s *AutosaveService) cancelLocked(key string) {
	p, ok := s.pending[key]
	if !ok {
		return
	}
	p.timer.Stop()
	delete(s.pending, key)
	if s.states[key] == domain.AutosaveDebouncing {
		delete(s.states, key)
	}
}

// ForceSave cancels the pending debounce for key and saves data now.
func (s *AutosaveService) ForceSave(ctx context.Context, data any, key string) error {
	s.CancelPending(key)
	return s.PerformAutosave(ctx, data, key)
}

// Flush runs every pending debounce immediately, in key order.
func (s *AutosaveService) Flush(ctx context.Context) error {
	s.mu.Lock()
	keys := make([]string, 0, len(s.pending))
	saves := make(map[string]any, len(s.pending))
	for key, p := range s.pending {
		p.timer.Stop()
		keys = append(keys, key)
		saves[key] = p.data
		delete(s.pending, key)
	}
	s.mu.Unlock()

	sort.Strings(keys)
	var errs []error
	for _, key := range keys {
		if err := s.PerformAutosave(ctx, saves[key], key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PerformAutosave saves data under key, waiting for earlier saves first.
// Once queued the save runs to completion even if ctx is cancelled.
func (s *AutosaveService) PerformAutosave(ctx context.Context, data any, key string) error {
	s.mu.Lock()
	prev := s.tail
	done := make(chan struct{})
	s.tail = done
	s.inflight++
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inflight--
		if s.tail == done {
			s.tail = nil
		}
		s.mu.Unlock()
		close(done)
	}()

	if prev != nil {
		<-prev
	}
	return s.execute(context.WithoutCancel(ctx), data, key)
}

// execute writes one payload with retries and the local fallback.
func (s *AutosaveService) execute(ctx context.Context, data any, key string) error {
	start := s.now()
	payload := sanitize.Object(data)
	payload["timestamp"] = float64(start.UnixMilli())
	payload["version"] = domain.SchemaVersion

	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode autosave %s: %w", key, err)
	}

	s.setState(key, domain.AutosaveSaving)
	defer s.settle(key)

	var lastErr error
	for attempt := 1; attempt <= s.cfg.MaxRetries; attempt++ {
		lastErr = s.backend.SetItem(ctx, key, payload, domain.RecordKindAutosave)
		if lastErr == nil {
			s.record(key, driven.SaveOutcomeSaved, attempt, start, len(encoded))
			logger.Debug("autosave %s saved (%d bytes, attempt %d)", key, len(encoded), attempt)
			return nil
		}
		logger.Warn("autosave %s attempt %d/%d failed: %v", key, attempt, s.cfg.MaxRetries, lastErr)
		if attempt < s.cfg.MaxRetries {
			s.setState(key, domain.AutosaveRetrying)
			time.Sleep(s.cfg.RetryDelay * time.Duration(attempt))
		}
	}

	s.setState(key, domain.AutosaveFallbackSaving)
	if err := s.saveFallback(key, encoded); err != nil {
		s.record(key, driven.SaveOutcomeFailed, s.cfg.MaxRetries, start, len(encoded))
		if s.notifier != nil {
			s.notifier.Notify(driven.Notification{
				Title:    "Autosave failed",
				Message:  "Your changes could not be saved. Export your work to avoid losing it.",
				Severity: driven.SeverityCritical,
			})
		}
		return fmt.Errorf("autosave %s: %w", key, errors.Join(lastErr, err))
	}

	s.record(key, driven.SaveOutcomeFallback, s.cfg.MaxRetries, start, len(encoded))
	logger.Warn("autosave %s written to local fallback", key)
	return nil
}

func (s *AutosaveService) saveFallback(key string, encoded []byte) error {
	if len(encoded) > s.cfg.MaxFallbackBytes {
		return fmt.Errorf("fallback %s is %d bytes, limit %d: %w",
			key, len(encoded), s.cfg.MaxFallbackBytes, domain.ErrPayloadTooLarge)
	}
	if err := s.local.SetItem(domain.FallbackKey(key), encoded); err != nil {
		return fmt.Errorf("write fallback %s: %w", key, err)
	}
	return nil
}

func (s *AutosaveService) setState(key string, state domain.AutosaveState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[key] = state
}

// settle returns key to Idle, or Debouncing if a newer trigger is pending.
func (s *AutosaveService) settle(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pending[key]; ok {
		s.states[key] = domain.AutosaveDebouncing
		return
	}
	delete(s.states, key)
}

func (s *AutosaveService) record(key string, outcome driven.SaveOutcome, attempts int, start time.Time, size int) {
	elapsed := s.now().Sub(start)

	s.mu.Lock()
	switch outcome {
	case driven.SaveOutcomeSaved:
		s.stats.SaveCount++
	case driven.SaveOutcomeFallback:
		s.stats.FailureCount++
		s.stats.FallbackCount++
	case driven.SaveOutcomeFailed:
		s.stats.FailureCount++
	}
	s.stats.TotalDuration += elapsed
	if runs := s.stats.SaveCount + s.stats.FailureCount; runs > 0 {
		s.stats.AverageDuration = s.stats.TotalDuration / time.Duration(runs)
	}
	s.stats.LastDuration = elapsed
	s.stats.LastSaveSize = size
	s.stats.LastSaveTime = start
	s.mu.Unlock()

	if s.observer != nil {
		s.observer.ObserveSave(driven.SaveEvent{
			Key:      key,
			Outcome:  outcome,
			Attempts: attempts,
			Duration: elapsed,
			Bytes:    size,
		})
	}
}

// LoadData returns the saved payload for key. It returns nil while any save
// is queued or in progress, and nil when nothing can be restored.
func (s *AutosaveService) LoadData(ctx context.Context, key string) (map[string]any, error) {
	data, _, err := s.Recover(ctx, key)
	return data, err
}

// Recover is LoadData that also reports where the payload came from. A
// RestoreFallback payload has been consumed from the local store and must
// be saved again to survive.
func (s *AutosaveService) Recover(ctx context.Context, key string) (map[string]any, domain.RestoreSource, error) {
	s.mu.Lock()
	busy := s.inflight > 0
	s.mu.Unlock()
	if busy {
		logger.Debug("autosave %s load skipped: save in progress", key)
		return nil, domain.RestoreNone, nil
	}

	rec, err := s.backend.GetItem(ctx, key)
	switch {
	case err == nil:
		var out map[string]any
		if decodeErr := json.Unmarshal(rec.Value, &out); decodeErr == nil && out != nil {
			return out, domain.RestoreAutosave, nil
		}
		logger.Warn("autosave %s: primary record is corrupt, trying fallback", key)
	case errors.Is(err, domain.ErrNotFound):
		logger.Debug("autosave %s: no primary record", key)
	default:
		logger.Warn("autosave %s: primary load failed: %v", key, err)
	}

	if out := s.takeLocal(domain.FallbackKey(key)); out != nil {
		return out, domain.RestoreFallback, nil
	}
	return nil, domain.RestoreNone, nil
}

// takeLocal reads, removes and decodes a local entry. Missing or corrupt
// entries yield nil.
func (s *AutosaveService) takeLocal(key string) map[string]any {
	raw, err := s.local.GetItem(key)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("local %s: read failed: %v", key, err)
		}
		return nil
	}
	if err := s.local.RemoveItem(key); err != nil {
		logger.Warn("local %s: remove failed: %v", key, err)
	}

	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		logger.Warn("local %s: corrupt data discarded", key)
		return nil
	}
	return out
}

// EmergencySave writes data synchronously to the local store. It bypasses
// the queue so it can run from an exit handler.
func (s *AutosaveService) EmergencySave(data any) error {
	payload := sanitize.Object(data)
	payload["timestamp"] = float64(s.now().UnixMilli())
	payload["version"] = domain.SchemaVersion

	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode emergency save: %w", err)
	}
	if err := s.local.SetItem(domain.KeyEmergencySave, encoded); err != nil {
		return fmt.Errorf("write emergency save: %w", err)
	}
	return nil
}

// LoadEmergencyData returns and consumes the emergency payload.
func (s *AutosaveService) LoadEmergencyData() (map[string]any, error) {
	return s.takeLocal(domain.KeyEmergencySave), nil
}

// State returns the lifecycle state of key.
func (s *AutosaveService) State(key string) domain.AutosaveState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.states[key]; ok {
		return st
	}
	return domain.AutosaveIdle
}

// Stats returns a copy of the rolling statistics.
func (s *AutosaveService) Stats() domain.AutosaveStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Close cancels every pending debounce. Saves already queued still run.
func (s *AutosaveService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.pending {
		s.cancelLocked(key)
	}
	s.closed = true
}

// DecodePayload converts a loaded payload into a typed value.
func DecodePayload(payload map[string]any, out any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCorruptRecord, err)
	}
	return nil
}
