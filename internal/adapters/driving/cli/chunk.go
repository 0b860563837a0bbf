package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/contentbuilder/internal/core/domain"
)

var chunkCmd = &cobra.Command{
	Use:   "chunk",
	Short: "Manage content chunks",
	Long:  `Add, inspect, edit, tag and delete the content chunks of the workspace.`,
}

var chunkAddCmd = &cobra.Command{
	Use:   "add <content>",
	Short: "Add a chunk",
	Long: `Add a manually authored chunk. All arguments are joined with spaces.

Examples:
  contentbuilder chunk add "Goroutines are cheap" --source notes.md --tags go,concurrency`,
	Args: cobra.MinimumNArgs(1),
	RunE: runChunkAdd,
}

var chunkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List chunks",
	Long: `List chunks in insertion order. --query applies the same filter as the
browser: a case-insensitive match on content, source and tags.`,
	RunE: runChunkList,
}

var chunkShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a chunk",
	Args:  cobra.ExactArgs(1),
	RunE:  runChunkShow,
}

var chunkEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a chunk",
	Long:  `Replace the content, source or tags of a chunk. Flags that are not given are left unchanged.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runChunkEdit,
}

var chunkTagCmd = &cobra.Command{
	Use:   "tag <tag> <id>...",
	Short: "Add a tag to chunks",
	Long:  `Add a tag to every listed chunk, or remove it with --remove.`,
	Args:  cobra.MinimumNArgs(2),
	RunE:  runChunkTag,
}

var chunkDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete chunks",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runChunkDelete,
}

var chunkStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show chunk collection statistics",
	RunE:  runChunkStats,
}

func init() {
	chunkAddCmd.Flags().StringP("source", "s", "", "Source name of the chunk")
	chunkAddCmd.Flags().StringP("tags", "t", "", "Comma-separated tags")

	chunkListCmd.Flags().StringP("query", "q", "", "Only list chunks matching the query")
	chunkListCmd.Flags().IntP("limit", "n", 0, "Maximum number of chunks to list (0 = all)")
	chunkListCmd.Flags().Bool("json", false, "Output as JSON")

	chunkShowCmd.Flags().Bool("json", false, "Output as JSON")

	chunkEditCmd.Flags().String("content", "", "New content")
	chunkEditCmd.Flags().String("source", "", "New source")
	chunkEditCmd.Flags().String("tags", "", "New comma-separated tags (empty clears)")

	chunkTagCmd.Flags().Bool("remove", false, "Remove the tag instead of adding it")

	chunkStatsCmd.Flags().Bool("json", false, "Output as JSON")

	chunkCmd.AddCommand(chunkAddCmd, chunkListCmd, chunkShowCmd, chunkEditCmd,
		chunkTagCmd, chunkDeleteCmd, chunkStatsCmd)
	rootCmd.AddCommand(chunkCmd)
}

func runChunkAdd(cmd *cobra.Command, args []string) error {
	if err := requireChunks(); err != nil {
		return err
	}

	content := strings.Join(args, " ")
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: chunk content is empty", domain.ErrInvalidInput)
	}
	source, _ := cmd.Flags().GetString("source")
	tags, _ := cmd.Flags().GetString("tags")

	chunk := chunkService.AddChunk(domain.ContentChunk{
		Content: content,
		Source:  source,
		Tags:    domain.ParseTags(tags),
	})
	if err := persist(cmd); err != nil {
		return err
	}

	cmd.Printf("Added chunk %s (%d words)\n", chunk.ID, chunk.Stats.Words)
	return nil
}

func runChunkList(cmd *cobra.Command, _ []string) error {
	if err := requireChunks(); err != nil {
		return err
	}

	query, _ := cmd.Flags().GetString("query")
	limit, _ := cmd.Flags().GetInt("limit")

	chunks := chunkService.Chunks()
	if query != "" {
		chunkService.FilterChunks(query)
		chunks = chunkService.FilteredChunks()
	}
	total := len(chunks)
	if limit > 0 && len(chunks) > limit {
		chunks = chunks[:limit]
	}

	if jsonFlag(cmd) {
		return printJSON(cmd, chunks)
	}

	if len(chunks) == 0 {
		cmd.Println("No chunks found.")
		return nil
	}
	for _, c := range chunks {
		cmd.Printf("%s  %-24s  %s\n", c.ID, preview(sourceLabel(c.Source), 24), preview(c.Content, 60))
		if len(c.Tags) > 0 {
			cmd.Printf("    tags: %s\n", strings.Join(c.Tags, ", "))
		}
	}
	if len(chunks) < total {
		cmd.Printf("\nShowing %d of %d chunks\n", len(chunks), total)
	} else {
		cmd.Printf("\n%d chunks\n", total)
	}
	return nil
}

func runChunkShow(cmd *cobra.Command, args []string) error {
	if err := requireChunks(); err != nil {
		return err
	}

	chunk, err := chunkService.Get(args[0])
	if err != nil {
		return fmt.Errorf("failed to get chunk: %w", err)
	}

	if jsonFlag(cmd) {
		return printJSON(cmd, chunk)
	}

	cmd.Printf("ID:       %s\n", chunk.ID)
	cmd.Printf("Source:   %s\n", sourceLabel(chunk.Source))
	cmd.Printf("Type:     %s\n", chunk.Metadata.Type)
	if chunk.Metadata.Section != "" {
		cmd.Printf("Section:  %s\n", chunk.Metadata.Section)
	}
	if len(chunk.Tags) > 0 {
		cmd.Printf("Tags:     %s\n", strings.Join(chunk.Tags, ", "))
	}
	cmd.Printf("Stats:    %d words, %d characters, %d sentences\n",
		chunk.Stats.Words, chunk.Stats.Characters, chunk.Stats.Sentences)
	cmd.Println()
	cmd.Println(chunk.Content)
	return nil
}

func runChunkEdit(cmd *cobra.Command, args []string) error {
	if err := requireChunks(); err != nil {
		return err
	}

	var patch domain.ChunkPatch
	if cmd.Flags().Changed("content") {
		content, _ := cmd.Flags().GetString("content")
		patch.Content = &content
	}
	if cmd.Flags().Changed("source") {
		source, _ := cmd.Flags().GetString("source")
		patch.Source = &source
	}
	if cmd.Flags().Changed("tags") {
		tags, _ := cmd.Flags().GetString("tags")
		patch.Tags = domain.ParseTags(tags)
	}
	if patch.Content == nil && patch.Source == nil && patch.Tags == nil {
		return errors.New("nothing to change: use --content, --source or --tags")
	}

	chunk, err := chunkService.UpdateChunk(args[0], patch)
	if err != nil {
		return fmt.Errorf("failed to update chunk: %w", err)
	}
	if err := persist(cmd); err != nil {
		return err
	}

	cmd.Printf("Updated chunk %s\n", chunk.ID)
	return nil
}

func runChunkTag(cmd *cobra.Command, args []string) error {
	if err := requireChunks(); err != nil {
		return err
	}

	tag := strings.TrimSpace(args[0])
	if tag == "" {
		return fmt.Errorf("%w: tag is empty", domain.ErrInvalidInput)
	}
	ids := args[1:]
	remove, _ := cmd.Flags().GetBool("remove")

	var changed int
	if remove {
		changed = chunkService.RemoveTagFromChunks(ids, tag)
	} else {
		changed = chunkService.AddTagToChunks(ids, tag)
	}
	if changed > 0 {
		if err := persist(cmd); err != nil {
			return err
		}
	}

	verb := "Tagged"
	if remove {
		verb = "Untagged"
	}
	cmd.Printf("%s %d of %d chunks with %q\n", verb, changed, len(ids), tag)
	return nil
}

func runChunkDelete(cmd *cobra.Command, args []string) error {
	if err := requireChunks(); err != nil {
		return err
	}

	deleted := chunkService.BulkDeleteChunks(args)
	if deleted == 0 {
		return fmt.Errorf("failed to delete chunks: %w", domain.ErrNotFound)
	}
	if err := persist(cmd); err != nil {
		return err
	}

	cmd.Printf("Deleted %d chunks\n", deleted)
	return nil
}

func runChunkStats(cmd *cobra.Command, _ []string) error {
	if err := requireChunks(); err != nil {
		return err
	}

	stats := chunkService.Stats()
	if jsonFlag(cmd) {
		return printJSON(cmd, stats)
	}

	cmd.Println("Chunk Statistics")
	cmd.Println("================")
	cmd.Printf("  Chunks:          %d\n", stats.TotalChunks)
	cmd.Printf("  Sources:         %d\n", stats.Sources)
	cmd.Printf("  Tags:            %d\n", stats.Tags)
	cmd.Printf("  Words:           %d\n", stats.TotalWords)
	cmd.Printf("  Characters:      %d\n", stats.TotalCharacters)
	cmd.Printf("  Average size:    %.1f characters\n", stats.AverageChunkSize)
	return nil
}
