package cli

import (
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/contentbuilder/internal/core/domain"
)

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "Manage the version history",
	Long: `Save, inspect and restore snapshots of the workspace. The history keeps
the newest 50 versions; older ones are dropped as new ones are saved.`,
}

var versionsSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save the workspace as a new version",
	Long: `Save the workspace as a new version.

--type selects what the version holds:
  chunks      - chunks and categories (default)
  categories  - categories only`,
	RunE: runVersionsSave,
}

var versionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List versions, newest first",
	RunE:  runVersionsList,
}

var versionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a version",
	Args:  cobra.ExactArgs(1),
	RunE:  runVersionsShow,
}

var versionsRestoreCmd = &cobra.Command{
	Use:   "restore <id>",
	Short: "Restore the workspace from a version",
	Long: `Replace the workspace with the content of a version. Parts the version
does not hold are left as they are.`,
	Args: cobra.ExactArgs(1),
	RunE: runVersionsRestore,
}

var versionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a version",
	Args:  cobra.ExactArgs(1),
	RunE:  runVersionsDelete,
}

var versionsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarise the version history",
	RunE:  runVersionsStats,
}

func init() {
	versionsSaveCmd.Flags().StringP("name", "n", "", "Version name (default \"Version N\")")
	versionsSaveCmd.Flags().String("type", string(domain.VersionTypeChunks), "Version type: chunks or categories")
	versionsSaveCmd.Flags().Bool("auto", false, "Mark the version as an auto-save")

	versionsListCmd.Flags().Bool("auto", false, "Only list auto-saves")
	versionsListCmd.Flags().Bool("json", false, "Output as JSON")

	versionsShowCmd.Flags().Bool("json", false, "Output as JSON")
	versionsStatsCmd.Flags().Bool("json", false, "Output as JSON")

	versionsCmd.AddCommand(versionsSaveCmd, versionsListCmd, versionsShowCmd,
		versionsRestoreCmd, versionsDeleteCmd, versionsStatsCmd)
	rootCmd.AddCommand(versionsCmd)
}

func runVersionsSave(cmd *cobra.Command, _ []string) error {
	if err := requireVersions(); err != nil {
		return err
	}
	if workspaceService == nil {
		return errors.New("workspace service not configured")
	}

	name, _ := cmd.Flags().GetString("name")
	kind, _ := cmd.Flags().GetString("type")
	auto, _ := cmd.Flags().GetBool("auto")

	ws := workspaceService.Snapshot()
	payload := domain.VersionPayload{Categories: nonNilCategories(ws.Categories)}
	switch domain.VersionType(kind) {
	case domain.VersionTypeChunks:
		payload.Chunks = nonNilChunks(ws.Chunks)
	case domain.VersionTypeCategories:
	default:
		return fmt.Errorf("%w: unknown version type %q", domain.ErrInvalidInput, kind)
	}

	v, err := versionService.SaveVersion(cmd.Context(), payload, name, auto)
	if err != nil {
		return fmt.Errorf("failed to save version: %w", err)
	}
	cmd.Printf("Saved %s (%s, %s)\n", v.Name, v.ID, v.Type)
	return nil
}

func runVersionsList(cmd *cobra.Command, _ []string) error {
	if err := requireVersions(); err != nil {
		return err
	}

	versions, err := versionService.Versions(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list versions: %w", err)
	}
	if onlyAuto, _ := cmd.Flags().GetBool("auto"); onlyAuto {
		auto := versions[:0]
		for _, v := range versions {
			if v.IsAutoSave {
				auto = append(auto, v)
			}
		}
		versions = auto
	}

	if jsonFlag(cmd) {
		return printJSON(cmd, versions)
	}

	if len(versions) == 0 {
		cmd.Println("No versions saved.")
		return nil
	}
	for _, v := range versions {
		marker := " "
		if v.IsAutoSave {
			marker = "*"
		}
		cmd.Printf("%s %s  %-10s  %s  %s\n", marker, v.ID, v.Type, formatTime(v.Timestamp), v.Name)
		cmd.Printf("    %s\n", versionSummary(&v))
	}
	cmd.Printf("\n%d versions (* = auto-save)\n", len(versions))
	return nil
}

func runVersionsShow(cmd *cobra.Command, args []string) error {
	v, err := loadVersion(cmd, args[0])
	if err != nil {
		return err
	}

	if jsonFlag(cmd) {
		return printJSON(cmd, v)
	}

	cmd.Printf("ID:        %s\n", v.ID)
	cmd.Printf("Name:      %s\n", v.Name)
	cmd.Printf("Type:      %s\n", v.Type)
	cmd.Printf("Saved:     %s\n", formatTime(v.Timestamp))
	cmd.Printf("Auto-save: %t\n", v.IsAutoSave)
	cmd.Printf("Content:   %s\n", versionSummary(v))
	return nil
}

func runVersionsRestore(cmd *cobra.Command, args []string) error {
	v, err := loadVersion(cmd, args[0])
	if err != nil {
		return err
	}
	if workspaceService == nil {
		return errors.New("workspace service not configured")
	}

	ws := workspaceService.Snapshot()
	switch v.Type {
	case domain.VersionTypeExported:
		bundle, err := decodeBundle(v.ExportedData)
		if err != nil {
			return fmt.Errorf("failed to restore version: %w", err)
		}
		ws.Categories = bundle.Categories
		ws.Chunks = bundle.Chunks
	default:
		if v.Categories != nil {
			ws.Categories = v.Categories
		}
		if v.Chunks != nil {
			ws.Chunks = v.Chunks
		}
	}
	workspaceService.Restore(ws)
	if err := persist(cmd); err != nil {
		return err
	}

	cmd.Printf("Restored %s: %d chunks, %d categories\n", v.Name, len(ws.Chunks), len(ws.Categories))
	return nil
}

func runVersionsDelete(cmd *cobra.Command, args []string) error {
	if err := requireVersions(); err != nil {
		return err
	}

	deleted, err := versionService.DeleteVersion(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to delete version: %w", err)
	}
	if !deleted {
		return fmt.Errorf("failed to delete version %s: %w", args[0], domain.ErrNotFound)
	}
	cmd.Printf("Deleted version %s\n", args[0])
	return nil
}

func runVersionsStats(cmd *cobra.Command, _ []string) error {
	if err := requireVersions(); err != nil {
		return err
	}

	stats, err := versionService.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get version stats: %w", err)
	}
	if jsonFlag(cmd) {
		return printJSON(cmd, stats)
	}

	cmd.Println("Version History")
	cmd.Println("===============")
	cmd.Printf("  Total:   %d (max %d)\n", stats.Total, domain.MaxVersions)
	cmd.Printf("  Manual:  %d\n", stats.Manual)
	cmd.Printf("  Auto:    %d\n", stats.Auto)
	if stats.Oldest != nil {
		cmd.Printf("  Oldest:  %s\n", formatTime(*stats.Oldest))
	}
	if stats.Newest != nil {
		cmd.Printf("  Newest:  %s\n", formatTime(*stats.Newest))
	}
	return nil
}

func loadVersion(cmd *cobra.Command, id string) (*domain.Version, error) {
	if err := requireVersions(); err != nil {
		return nil, err
	}
	v, err := versionService.LoadVersion(cmd.Context(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to load version: %w", err)
	}
	if v == nil {
		return nil, fmt.Errorf("version %s: %w", id, domain.ErrNotFound)
	}
	return v, nil
}

func versionSummary(v *domain.Version) string {
	switch v.Type {
	case domain.VersionTypeChunks:
		return fmt.Sprintf("%d chunks from %d sources, %d categories", v.ChunkCount, v.SourceCount, v.CategoryCount)
	case domain.VersionTypeCategories:
		return fmt.Sprintf("%d categories, %d questions", v.CategoryCount, v.QuestionCount)
	default:
		return "export bundle"
	}
}

// decodeBundle reads an export bundle back from its stored form.
func decodeBundle(data any) (*domain.ExportBundle, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptRecord, err)
	}
	var bundle domain.ExportBundle
	if err := json.Unmarshal(raw, &bundle); err != nil {
		return nil, fmt.Errorf("%w: export bundle: %v", domain.ErrCorruptRecord, err)
	}
	return &bundle, nil
}

func nonNilChunks(in []domain.ContentChunk) []domain.ContentChunk {
	if in == nil {
		return []domain.ContentChunk{}
	}
	return in
}

func nonNilCategories(in []domain.Category) []domain.Category {
	if in == nil {
		return []domain.Category{}
	}
	return in
}
