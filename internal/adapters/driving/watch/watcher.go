// Package watch imports files as they appear or change in a directory.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/contentbuilder/internal/core/domain"
	"github.com/custodia-labs/contentbuilder/internal/core/ports/driving"
	"github.com/custodia-labs/contentbuilder/internal/logger"
)

// DefaultSettle is how long a path must stay quiet before it is imported.
const DefaultSettle = 250 * time.Millisecond

// Report describes one import attempt.
type Report struct {
	Path   string
	Result *domain.ImportResult
	Err    error
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithSettle sets the quiet period. Editors often emit several writes for
// one save; they collapse into a single import.
func WithSettle(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.settle = d
		}
	}
}

// WithExtensions restricts imports to the given extensions (".md", "txt").
func WithExtensions(exts ...string) Option {
	return func(w *Watcher) {
		for _, ext := range exts {
			ext = strings.ToLower(strings.TrimSpace(ext))
			if ext == "" {
				continue
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			w.exts[ext] = struct{}{}
		}
	}
}

// WithReporter receives every import attempt.
func WithReporter(fn func(Report)) Option {
	return func(w *Watcher) {
		w.report = fn
	}
}

// Watcher feeds created and modified files in one directory to an importer.
type Watcher struct {
	dir      string
	importer driving.ImportService
	settle   time.Duration
	exts     map[string]struct{}
	report   func(Report)

	mu      sync.Mutex
	pending map[string]*time.Timer
	wg      sync.WaitGroup
}

// New creates a watcher for dir.
func New(dir string, importer driving.ImportService, opts ...Option) *Watcher {
	w := &Watcher{
		dir:      dir,
		importer: importer,
		settle:   DefaultSettle,
		exts:     make(map[string]struct{}),
		pending:  make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches until ctx is cancelled. Imports already scheduled when ctx
// ends are dropped; one in progress is waited for.
func (w *Watcher) Run(ctx context.Context) error {
	info, err := os.Stat(w.dir)
	if err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, w.dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	logger.Info("watching %s", w.dir)

	defer w.stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if path, ok := w.handleEvent(event); ok {
				w.schedule(ctx, path)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				logger.Warn("watch %s: events dropped", w.dir)
				continue
			}
			logger.Error("watch %s: %v", w.dir, err)
		}
	}
}

// handleEvent returns the path to import for event, if any.
func (w *Watcher) handleEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return "", false
	}
	if !w.accepts(event.Name) {
		return "", false
	}
	info, err := os.Stat(event.Name)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return event.Name, true
}

func (w *Watcher) accepts(path string) bool {
	if len(w.exts) == 0 {
		return true
	}
	_, ok := w.exts[strings.ToLower(filepath.Ext(path))]
	return ok
}

// schedule (re)starts the settle timer for path.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok {
		if t.Stop() {
			w.wg.Done()
		}
	}
	w.wg.Add(1)
	var timer *time.Timer
	timer = time.AfterFunc(w.settle, func() {
		defer w.wg.Done()
		w.mu.Lock()
		if w.pending[path] == timer {
			delete(w.pending, path)
		}
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		w.importPath(ctx, path)
	})
	w.pending[path] = timer
}

func (w *Watcher) importPath(ctx context.Context, path string) {
	result, err := w.importer.ImportFile(ctx, path)
	if err != nil {
		logger.Warn("import %s: %v", path, err)
	} else {
		logger.Info("imported %d chunks from %s", len(result.Chunks), path)
	}
	if w.report != nil {
		w.report(Report{Path: path, Result: result, Err: err})
	}
}

// stop cancels pending timers and waits for running imports.
func (w *Watcher) stop() {
	w.mu.Lock()
	for path, t := range w.pending {
		if t.Stop() {
			w.wg.Done()
		}
		delete(w.pending, path)
	}
	w.mu.Unlock()
	w.wg.Wait()
}
