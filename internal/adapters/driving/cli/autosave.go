package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/contentbuilder/internal/core/domain"
)

var autosaveCmd = &cobra.Command{
	Use:   "autosave",
	Short: "Inspect autosave and recovery",
}

var autosaveStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show autosave state and statistics",
	RunE:  runAutosaveStatus,
}

var autosaveRecoverCmd = &cobra.Command{
	Use:   "recover",
	Short: "Recover the workspace from an emergency or fallback copy",
	Long: `Report where the workspace was restored from at startup and write it
back to the primary store. Emergency and fallback copies are single-use:
once recovered they are removed.`,
	RunE: runAutosaveRecover,
}

func init() {
	autosaveStatusCmd.Flags().Bool("json", false, "Output as JSON")
	autosaveCmd.AddCommand(autosaveStatusCmd, autosaveRecoverCmd)
	rootCmd.AddCommand(autosaveCmd)
}

func runAutosaveStatus(cmd *cobra.Command, _ []string) error {
	if autosaveService == nil {
		return errors.New("autosave service not configured")
	}

	state := autosaveService.State(domain.KeyAutosave)
	stats := autosaveService.Stats()

	if jsonFlag(cmd) {
		return printJSON(cmd, struct {
			Key          string               `json:"key"`
			State        domain.AutosaveState `json:"state"`
			RestoredFrom domain.RestoreSource `json:"restoredFrom"`
			Stats        domain.AutosaveStats `json:"stats"`
		}{domain.KeyAutosave, state, restoredFrom, stats})
	}

	cmd.Println("Autosave")
	cmd.Println("========")
	cmd.Printf("  Key:            %s\n", domain.KeyAutosave)
	cmd.Printf("  State:          %s\n", state)
	cmd.Printf("  Restored from:  %s\n", restoredFrom)
	cmd.Printf("  Saves:          %d\n", stats.SaveCount)
	cmd.Printf("  Failures:       %d\n", stats.FailureCount)
	cmd.Printf("  Fallbacks:      %d\n", stats.FallbackCount)
	if stats.SaveCount > 0 {
		cmd.Printf("  Last save:      %s (%d bytes, %s)\n",
			formatTime(stats.LastSaveTime), stats.LastSaveSize, stats.LastDuration)
		cmd.Printf("  Average time:   %s\n", stats.AverageDuration)
	}
	return nil
}

func runAutosaveRecover(cmd *cobra.Command, _ []string) error {
	switch restoredFrom {
	case domain.RestoreNone:
		cmd.Println("Nothing to recover.")
		return nil
	case domain.RestoreEmergency:
		cmd.Println("Recovered workspace from the emergency save.")
	case domain.RestoreFallback:
		cmd.Println("Recovered workspace from the local fallback copy.")
	default:
		cmd.Println("Recovered workspace from the last autosave.")
	}
	if err := persist(cmd); err != nil {
		return err
	}
	if chunkService != nil {
		cmd.Printf("%d chunks restored\n", chunkService.Stats().TotalChunks)
	}
	return nil
}
