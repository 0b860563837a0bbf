package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/contentbuilder/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/contentbuilder/internal/core/domain"
	"github.com/custodia-labs/contentbuilder/internal/core/ports/driven"
)

var errBackendDown = errors.New("backend down")

// recordingBackend wraps the memory backend, counting writes and optionally
// failing or blocking them.
type recordingBackend struct {
	*memory.Backend

	mu       sync.Mutex
	writes   []any
	failures int   // remaining writes to fail; -1 fails forever
	readErr  error // returned by GetItem when set

	active    atomic.Int32
	maxActive atomic.Int32

	// gate, when set, blocks each write until a value is received.
	gate    chan struct{}
	entered chan struct{}
}

func newRecordingBackend() *recordingBackend {
	return &recordingBackend{Backend: memory.NewBackend()}
}

func (b *recordingBackend) GetItem(ctx context.Context, key string) (*domain.Record, error) {
	b.mu.Lock()
	err := b.readErr
	b.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return b.Backend.GetItem(ctx, key)
}

func (b *recordingBackend) SetItem(ctx context.Context, key string, value any, kind domain.RecordKind) error {
	n := b.active.Add(1)
	defer b.active.Add(-1)
	for {
		m := b.maxActive.Load()
		if n <= m || b.maxActive.CompareAndSwap(m, n) {
			break
		}
	}

	if b.entered != nil {
		b.entered <- struct{}{}
	}
	if b.gate != nil {
		<-b.gate
	}

	b.mu.Lock()
	b.writes = append(b.writes, value)
	fail := b.failures != 0
	if b.failures > 0 {
		b.failures--
	}
	b.mu.Unlock()

	if fail {
		return errBackendDown
	}
	return b.Backend.SetItem(ctx, key, value, kind)
}

func (b *recordingBackend) writeCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.writes)
}

func (b *recordingBackend) lastWrite() map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.writes) == 0 {
		return nil
	}
	m, _ := b.writes[len(b.writes)-1].(map[string]any)
	return m
}

// failingLocalStore rejects every write.
type failingLocalStore struct {
	*memory.LocalStore
}

func (failingLocalStore) SetItem(string, []byte) error {
	return domain.ErrQuotaExceeded
}

// recordingNotifier captures notifications.
type recordingNotifier struct {
	mu    sync.Mutex
	notes []driven.Notification
}

func (n *recordingNotifier) Notify(note driven.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, note)
}

func (n *recordingNotifier) all() []driven.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]driven.Notification(nil), n.notes...)
}

// recordingObserver captures save events and version counts.
type recordingObserver struct {
	mu       sync.Mutex
	events   []driven.SaveEvent
	versions []int
}

func (o *recordingObserver) ObserveSave(e driven.SaveEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func (o *recordingObserver) ObserveVersions(total, _ int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.versions = append(o.versions, total)
}

func (o *recordingObserver) outcomes() []driven.SaveOutcome {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]driven.SaveOutcome, len(o.events))
	for i, e := range o.events {
		out[i] = e.Outcome
	}
	return out
}

// fakeRegistry returns a fixed MIME type and splits content on blank lines
// through fakeSplitter.
type fakeRegistry struct {
	mimeType string
	err      error
	seen     []*domain.RawDocument
}

func (r *fakeRegistry) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.NormalisedDocument, error) {
	r.seen = append(r.seen, raw)
	if r.err != nil {
		return nil, r.err
	}
	return &domain.NormalisedDocument{Title: "Doc title", Content: string(raw.Content)}, nil
}

func (r *fakeRegistry) Register(driven.Normaliser) {}

func (r *fakeRegistry) SupportedMIMETypes() []string { return []string{r.mimeType} }

func (r *fakeRegistry) DetectMIMEType(string, []byte) string { return r.mimeType }

// fakeSplitter yields one chunk per blank-line separated paragraph.
type fakeSplitter struct {
	err error
}

func (fakeSplitter) Name() string { return "fake" }

func (s fakeSplitter) Split(_ context.Context, doc *domain.NormalisedDocument) ([]domain.ContentChunk, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []domain.ContentChunk
	for i, p := range strings.Split(doc.Content, "\n\n") {
		if strings.TrimSpace(p) == "" {
			continue
		}
		pos := i
		out = append(out, domain.ContentChunk{Content: p, Metadata: domain.ChunkMetadata{Position: &pos}})
	}
	return out, nil
}
