package cli

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/contentbuilder/internal/adapters/driving/watch"
)

var importCmd = &cobra.Command{
	Use:   "import [files...]",
	Short: "Import documents as chunks",
	Long: `Import documents into the workspace. Each file is normalised by type
(plain text, Markdown, HTML, DOCX) and split into chunks using the
chunking settings.

With --watch, the directory is watched and every file written to it is
imported as it settles. Stop watching with Ctrl+C.

Examples:
  contentbuilder import notes.md handbook.docx
  contentbuilder import --watch ./inbox --ext .md,.txt`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringP("watch", "w", "", "Watch a directory and import files written to it")
	importCmd.Flags().String("ext", "", "Comma-separated extensions accepted by --watch (default: all supported)")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	if importService == nil {
		return errors.New("import service not configured")
	}

	dir, _ := cmd.Flags().GetString("watch")
	if dir == "" && len(args) == 0 {
		return errors.New("nothing to import: give files or --watch <dir>")
	}

	var failed []error
	imported := 0
	for _, path := range args {
		result, err := importService.ImportFile(cmd.Context(), path)
		if err != nil {
			cmd.PrintErrf("Failed to import %s: %v\n", path, err)
			failed = append(failed, err)
			continue
		}
		imported++
		cmd.Printf("Imported %d chunks from %s (%s)\n", len(result.Chunks), result.Filename, result.MIMEType)
	}
	if imported > 0 {
		if err := persist(cmd); err != nil {
			return err
		}
	}

	if dir != "" {
		if err := watchImports(cmd, dir); err != nil {
			return err
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("failed to import %d of %d files: %w", len(failed), len(args), errors.Join(failed...))
	}
	return nil
}

// watchImports runs the directory watcher until the command context ends,
// autosaving as imports land.
func watchImports(cmd *cobra.Command, dir string) error {
	if workspaceService == nil {
		return errors.New("workspace service not configured")
	}

	var opts []watch.Option
	if exts, _ := cmd.Flags().GetString("ext"); exts != "" {
		opts = append(opts, watch.WithExtensions(strings.Split(exts, ",")...))
	}

	var mu sync.Mutex
	opts = append(opts, watch.WithReporter(func(r watch.Report) {
		mu.Lock()
		defer mu.Unlock()
		if r.Err != nil {
			cmd.PrintErrf("Failed to import %s: %v\n", r.Path, r.Err)
			return
		}
		cmd.Printf("Imported %d chunks from %s\n", len(r.Result.Chunks), r.Result.Filename)
	}))

	stopAutosave := workspaceService.StartAutosave()
	defer stopAutosave()

	cmd.Printf("Watching %s for new documents (Ctrl+C to stop)\n", dir)
	err := watch.New(dir, importService, opts...).Run(cmd.Context())

	if saveErr := finishSession(cmd.Context()); saveErr != nil {
		return errors.Join(err, saveErr)
	}
	return err
}
