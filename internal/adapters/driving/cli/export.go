package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/contentbuilder/internal/core/domain"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the workspace",
	Long: `Write the workspace for downstream pipelines.

Formats:
  json   - one bundle with chunks, categories and counts (default)
  jsonl  - one chunk per line
  yaml   - the json bundle as YAML

Examples:
  contentbuilder export --format jsonl --output chunks.jsonl
  contentbuilder export --query golang --filtered --compress -o go.json.xz
  contentbuilder export --save-version --name "Release 1"`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringP("format", "f", string(domain.ExportFormatJSON), "Output format: json, jsonl or yaml")
	exportCmd.Flags().StringP("output", "o", "", "Output file (default stdout)")
	exportCmd.Flags().Bool("compress", false, "Compress the output with xz")
	exportCmd.Flags().Bool("filtered", false, "Export only chunks matching --query")
	exportCmd.Flags().StringP("query", "q", "", "Filter applied with --filtered")
	exportCmd.Flags().Bool("save-version", false, "Also record the export as a version")
	exportCmd.Flags().StringP("name", "n", "", "Name of the recorded version")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	if exportService == nil {
		return errors.New("export service not configured")
	}

	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")
	compress, _ := cmd.Flags().GetBool("compress")
	filtered, _ := cmd.Flags().GetBool("filtered")
	query, _ := cmd.Flags().GetString("query")
	saveVersion, _ := cmd.Flags().GetBool("save-version")
	name, _ := cmd.Flags().GetString("name")

	opts := domain.ExportOptions{
		Format:       domain.ExportFormat(format),
		Compress:     compress,
		FilteredOnly: filtered,
		SaveVersion:  saveVersion,
		VersionName:  name,
	}
	if !opts.Format.IsValid() {
		return fmt.Errorf("%w: export format %q", domain.ErrUnsupportedType, format)
	}
	if filtered {
		if err := requireChunks(); err != nil {
			return err
		}
		chunkService.FilterChunks(query)
	}

	var w io.Writer = cmd.OutOrStdout()
	if output != "" && output != "-" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", output, err)
		}
		defer f.Close()
		w = f
	}

	if err := exportService.Export(cmd.Context(), w, opts); err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}

	if output != "" && output != "-" {
		cmd.PrintErrf("Exported workspace to %s\n", output)
	}
	return nil
}
