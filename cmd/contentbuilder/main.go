// Command contentbuilder curates content chunks and Q&A categories from the
// terminal, persisting the workspace between runs.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/custodia-labs/contentbuilder/internal/adapters/driven/config/file"
	"github.com/custodia-labs/contentbuilder/internal/adapters/driven/metrics"
	"github.com/custodia-labs/contentbuilder/internal/adapters/driven/notify"
	"github.com/custodia-labs/contentbuilder/internal/adapters/driven/storage/badger"
	"github.com/custodia-labs/contentbuilder/internal/adapters/driven/storage/breaker"
	"github.com/custodia-labs/contentbuilder/internal/adapters/driven/storage/fsys"
	"github.com/custodia-labs/contentbuilder/internal/adapters/driven/storage/local"
	"github.com/custodia-labs/contentbuilder/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/contentbuilder/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/contentbuilder/internal/adapters/driving/cli"
	"github.com/custodia-labs/contentbuilder/internal/core/domain"
	"github.com/custodia-labs/contentbuilder/internal/core/ports/driven"
	"github.com/custodia-labs/contentbuilder/internal/core/services"
	"github.com/custodia-labs/contentbuilder/internal/logger"
	"github.com/custodia-labs/contentbuilder/internal/normalisers"
	"github.com/custodia-labs/contentbuilder/internal/postprocessors"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configStore, err := file.NewConfigStore("")
	if err != nil {
		logger.Error("failed to open config: %v", err)
		return 1
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		logger.Warn("failed to load settings, using defaults: %v", err)
		defaults := settingsService.GetDefaults()
		settings = &defaults
	}
	logger.Init(logger.Config{Level: settings.Log.Level, Format: settings.Log.Format})

	dataDir, err := resolveDataDir(settings.Storage.DataDir)
	if err != nil {
		logger.Error("failed to resolve data directory: %v", err)
		return 1
	}

	backend, localStore := openStorage(ctx, settings.Storage.Backend, dataDir)
	backend = breaker.New(backend, breaker.DefaultConfig())
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Warn("failed to close storage: %v", err)
		}
	}()

	m := metrics.New()
	notifier := notify.Multi{notify.NewLogNotifier(), notify.NewRecorder(notify.DefaultCapacity)}

	chunks := services.NewChunkStore()
	categories := services.NewCategoryStore()
	versions := services.NewVersionStore(backend, localStore, services.WithVersionObserver(m))
	autosave := services.NewAutosaveService(backend, localStore,
		services.AutosaveConfigFromSettings(settings.Autosave),
		services.WithNotifier(notifier),
		services.WithAutosaveObserver(m),
	)
	defer autosave.Close()
	workspace := services.NewWorkspaceService(chunks, categories, autosave)

	splitter, err := postprocessors.NewSplitter(settings.Chunking)
	if err != nil {
		logger.Warn("invalid chunking settings, using defaults: %v", err)
		splitter, _ = postprocessors.NewSplitter(domain.DefaultAppSettings().Chunking)
	}
	rules, err := services.ParseTagRules(settings.Tagging.Rules)
	if err != nil {
		logger.Warn("ignoring tagging rules: %v", err)
		rules = nil
	}

	cli.SetServices(cli.Services{
		Chunks:     chunks,
		Categories: categories,
		Versions:   versions,
		Autosave:   autosave,
		Workspace:  workspace,
		Import:     services.NewImportService(normalisers.NewDefaultRegistry(), splitter, chunks),
		Export:     services.NewExportService(chunks, categories, versions),
		AutoTag:    services.NewAutoTagService(chunks, rules),
		Settings:   settingsService,
		Backend:    backend,
		Metrics:    m,
	})

	err = cli.ExecuteContext(ctx)
	if ctx.Err() != nil {
		// Interrupted mid-command: keep whatever is in memory for the next run.
		if saveErr := workspace.EmergencySave(); saveErr != nil {
			logger.Error("emergency save failed: %v", saveErr)
		}
	}
	if err != nil {
		return 1
	}
	return 0
}

func resolveDataDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	base, err := file.DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "data"), nil
}

// openStorage opens the configured backend and its local fallback store.
// A backend that fails to open degrades to memory so the session still works.
func openStorage(ctx context.Context, kind domain.StorageBackendType, dataDir string) (driven.StorageBackend, driven.LocalStore) {
	if kind == domain.StorageBackendFS {
		backend, localStore, err := fsys.Open(ctx)
		if err == nil {
			return backend, localStore
		}
		logger.Warn("failed to open file system storage, using memory: %v", err)
		return memory.NewBackend(), memory.NewLocalStore()
	}

	var localStore driven.LocalStore
	if store, err := local.NewStore(filepath.Join(dataDir, "local")); err == nil {
		localStore = store
	} else {
		logger.Warn("failed to open local store, using memory: %v", err)
		localStore = memory.NewLocalStore()
	}

	var (
		backend driven.StorageBackend
		err     error
	)
	switch kind {
	case domain.StorageBackendSQLite:
		backend, err = sqlite.NewStore(dataDir)
	case domain.StorageBackendMemory:
		backend = memory.NewBackend()
	default:
		backend, err = badger.Open(filepath.Join(dataDir, "badger"))
	}
	if err != nil {
		logger.Warn("failed to open %s storage, using memory: %v", kind, err)
		return memory.NewBackend(), localStore
	}
	logger.Debug("opened %s storage in %s", kind, dataDir)
	return backend, localStore
}
