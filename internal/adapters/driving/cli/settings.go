package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/contentbuilder/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure autosave, storage, chunking, scrolling, logging and
tagging settings. Settings are stored in ~/.contentbuilder/config.toml.

Storage and logging changes take effect the next time contentbuilder starts.`,
	Annotations: map[string]string{skipRestore: "true"},
	RunE:        runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Long: `Change one setting by its dotted key. tagging.rules takes a
comma-separated list of keyword=tag pairs.

Keys:
  ` + strings.Join(settingKeys, "\n  "),
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to choose the storage backend and chunking options step by step.`,
	RunE:  runSettingsWizard,
}

// settingKeys mirrors the keys accepted by the settings service.
var settingKeys = []string{
	"autosave.debounce_ms", "autosave.max_retries", "autosave.retry_delay_ms",
	"storage.backend", "storage.data_dir",
	"chunking.size", "chunking.overlap", "chunking.mode",
	"scroll.item_height", "scroll.buffer", "scroll.overscan",
	"log.level", "log.format",
	"tagging.rules",
}

var (
	backendChoices = []domain.StorageBackendType{
		domain.StorageBackendBadger,
		domain.StorageBackendSQLite,
		domain.StorageBackendFS,
		domain.StorageBackendMemory,
	}

	modeChoices = []domain.ChunkingMode{
		domain.ChunkingModeCharacters,
		domain.ChunkingModeSentences,
		domain.ChunkingModeParagraphs,
	}
)

func init() {
	settingsShowCmd.Flags().Bool("json", false, "Output as JSON")
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd, settingsWizardCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if jsonFlag(cmd) {
		return printJSON(cmd, settings)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Autosave]")
	cmd.Printf("  Debounce: %dms\n", settings.Autosave.DebounceMs)
	cmd.Printf("  Max retries: %d\n", settings.Autosave.MaxRetries)
	cmd.Printf("  Retry delay: %dms\n", settings.Autosave.RetryDelayMs)
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Backend: %s\n", settings.Storage.Backend)
	if settings.Storage.DataDir != "" {
		cmd.Printf("  Data dir: %s\n", settings.Storage.DataDir)
	} else {
		cmd.Printf("  Data dir: (default)\n")
	}
	if !settings.Storage.Backend.IsDurable() {
		cmd.Println("  Note: data is lost when contentbuilder exits")
	}
	cmd.Println()

	cmd.Println("[Chunking]")
	cmd.Printf("  Mode: %s\n", settings.Chunking.Mode)
	cmd.Printf("  Size: %d\n", settings.Chunking.Size)
	cmd.Printf("  Overlap: %d\n", settings.Chunking.Overlap)
	cmd.Println()

	cmd.Println("[Scroll]")
	cmd.Printf("  Item height: %d rows\n", settings.Scroll.ItemHeight)
	cmd.Printf("  Buffer: %d items\n", settings.Scroll.Buffer)
	cmd.Printf("  Overscan: %d items\n", settings.Scroll.Overscan)
	cmd.Println()

	cmd.Println("[Log]")
	cmd.Printf("  Level: %s\n", settings.Log.Level)
	cmd.Printf("  Format: %s\n", settings.Log.Format)
	cmd.Println()

	cmd.Println("[Tagging]")
	if len(settings.Tagging.Rules) == 0 {
		cmd.Println("  Rules: (none)")
	} else {
		for _, rule := range settings.Tagging.Rules {
			cmd.Printf("  - %s\n", rule)
		}
	}
	cmd.Println()

	if err := settingsService.Validate(settings); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("Set %s = %s\n", args[0], args[1])
	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("contentbuilder Settings Wizard")
	cmd.Println("==============================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	// Step 1: Storage backend
	cmd.Println("Step 1: Select Storage Backend")
	cmd.Println("------------------------------")
	for i, b := range backendChoices {
		cmd.Printf("  %d. %s\n", i+1, b)
	}
	current := choiceIndex(backendChoices, settings.Storage.Backend)
	cmd.Printf("\nEnter choice [%d]: ", current)
	settings.Storage.Backend = backendChoices[parseChoice(readLine(reader), len(backendChoices), current)-1]
	cmd.Printf("Storage backend: %s\n\n", settings.Storage.Backend)

	// Step 2: Chunking
	cmd.Println("Step 2: Select Chunking Mode")
	cmd.Println("----------------------------")
	for i, m := range modeChoices {
		cmd.Printf("  %d. %s\n", i+1, m)
	}
	current = choiceIndex(modeChoices, settings.Chunking.Mode)
	cmd.Printf("\nEnter choice [%d]: ", current)
	settings.Chunking.Mode = modeChoices[parseChoice(readLine(reader), len(modeChoices), current)-1]

	cmd.Printf("Chunk size [%d]: ", settings.Chunking.Size)
	if size, err := strconv.Atoi(readLine(reader)); err == nil && size > 0 {
		settings.Chunking.Size = size
	}
	cmd.Printf("Chunk overlap [%d]: ", settings.Chunking.Overlap)
	if overlap, err := strconv.Atoi(readLine(reader)); err == nil && overlap >= 0 {
		settings.Chunking.Overlap = overlap
	}
	cmd.Println()

	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	cmd.Printf("  Backend: %s\n", settings.Storage.Backend)
	cmd.Printf("  Chunking: %s, size %d, overlap %d\n",
		settings.Chunking.Mode, settings.Chunking.Size, settings.Chunking.Overlap)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// choiceIndex returns the 1-based position of v in choices, or 1.
func choiceIndex[T comparable](choices []T, v T) int {
	for i, c := range choices {
		if c == v {
			return i + 1
		}
	}
	return 1
}
