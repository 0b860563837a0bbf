// Package cli provides the cobra command tree of the contentbuilder binary.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/contentbuilder/internal/core/domain"
	"github.com/custodia-labs/contentbuilder/internal/core/ports/driven"
	"github.com/custodia-labs/contentbuilder/internal/core/ports/driving"
	"github.com/custodia-labs/contentbuilder/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=...".
var version = "dev"

// skipRestore marks commands that never touch the workspace.
const skipRestore = "skip-restore"

// MetricsServer serves the Prometheus endpoint.
type MetricsServer interface {
	Serve(ctx context.Context, addr string) error
}

// Services holds everything the commands call into.
// Only Chunks and Workspace are needed by most commands; the rest
// may be nil and the commands using them report that.
type Services struct {
	Chunks     driving.ChunkService
	Categories driving.CategoryService
	Versions   driving.VersionService
	Autosave   driving.AutosaveService
	Workspace  driving.WorkspaceService
	Import     driving.ImportService
	Export     driving.ExportService
	AutoTag    driving.AutoTagService
	Settings   driving.SettingsService

	// Backend is the record store, used by the storage commands.
	Backend driven.StorageBackend

	// Metrics serves /metrics for the metrics command.
	Metrics MetricsServer
}

var (
	chunkService     driving.ChunkService
	categoryService  driving.CategoryService
	versionService   driving.VersionService
	autosaveService  driving.AutosaveService
	workspaceService driving.WorkspaceService
	importService    driving.ImportService
	exportService    driving.ExportService
	autoTagService   driving.AutoTagService
	settingsService  driving.SettingsService
	storageBackend   driven.StorageBackend
	metricsServer    MetricsServer

	// restoredFrom records where the startup restore found the workspace.
	restoredFrom = domain.RestoreNone
)

// SetServices installs the services used by every command.
func SetServices(s Services) {
	chunkService = s.Chunks
	categoryService = s.Categories
	versionService = s.Versions
	autosaveService = s.Autosave
	workspaceService = s.Workspace
	importService = s.Import
	exportService = s.Export
	autoTagService = s.AutoTag
	settingsService = s.Settings
	storageBackend = s.Backend
	metricsServer = s.Metrics
	restoredFrom = domain.RestoreNone
}

var rootCmd = &cobra.Command{
	Use:   "contentbuilder",
	Short: "Build and curate content chunks for AI pipelines",
	Long: `contentbuilder imports documents, splits them into tagged content
chunks and keeps the workspace safe with debounced autosaves, a local
fallback copy and a capped version history.

Chunks can be browsed in a terminal UI, exported as JSON, JSON Lines or
YAML, and served to AI assistants over MCP.`,
	SilenceUsage:      true,
	PersistentPreRunE: restoreWorkspace,
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// Version returns the build version.
func Version() string {
	return version
}

// restoreWorkspace loads the saved workspace into the stores before any
// command that works on it. An emergency restore is saved straight away
// because reading it consumes it.
func restoreWorkspace(cmd *cobra.Command, _ []string) error {
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logger.SetVerbose(true)
	}
	if skipsRestore(cmd) || workspaceService == nil || restoredFrom != domain.RestoreNone {
		return nil
	}

	source, err := workspaceService.RestoreOnStartup(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to restore workspace: %w", err)
	}
	restoredFrom = source
	logger.Debug("workspace restored from %s", source)

	// Emergency and fallback copies are single use.
	if source.Consumed() {
		if err := workspaceService.SaveNow(cmd.Context()); err != nil {
			return fmt.Errorf("failed to save recovered workspace: %w", err)
		}
	}
	return nil
}

func skipsRestore(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[skipRestore] == "true" {
			return true
		}
	}
	return cmd.Name() == "help" || cmd.Name() == "completion"
}

// persist force-saves the workspace after a mutating command.
func persist(cmd *cobra.Command) error {
	if workspaceService == nil {
		return errors.New("workspace service not configured")
	}
	if err := workspaceService.SaveNow(cmd.Context()); err != nil {
		return fmt.Errorf("failed to save workspace: %w", err)
	}
	return nil
}

func requireChunks() error {
	if chunkService == nil {
		return errors.New("chunk service not configured")
	}
	return nil
}

func requireCategories() error {
	if categoryService == nil {
		return errors.New("category service not configured")
	}
	return nil
}

func requireVersions() error {
	if versionService == nil {
		return errors.New("version service not configured")
	}
	return nil
}
