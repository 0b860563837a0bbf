package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

var autotagCmd = &cobra.Command{
	Use:   "autotag",
	Short: "Tag chunks from keyword rules",
	Long: `Add tags to chunks whose content contains a rule keyword as a whole word.

Rules come from the tagging.rules setting, a list of keyword=tag pairs:
  contentbuilder settings set tagging.rules "goroutine=go,postgres=database"`,
	RunE: runAutotag,
}

func init() {
	autotagCmd.Flags().Bool("dry-run", false, "Show the tags that would be added without changing chunks")
	rootCmd.AddCommand(autotagCmd)
}

func runAutotag(cmd *cobra.Command, _ []string) error {
	if autoTagService == nil {
		return errors.New("auto-tagging not configured")
	}

	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		proposals := autoTagService.Propose()
		if len(proposals) == 0 {
			cmd.Println("No chunks would gain tags.")
			return nil
		}
		for _, p := range proposals {
			cmd.Printf("%s  +%s\n", p.ChunkID, strings.Join(p.Tags, " +"))
		}
		cmd.Printf("\n%d chunks would gain tags\n", len(proposals))
		return nil
	}

	changed := autoTagService.Apply()
	if changed > 0 {
		if err := persist(cmd); err != nil {
			return err
		}
	}
	cmd.Printf("Tagged %d chunks\n", changed)
	return nil
}
