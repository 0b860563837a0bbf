package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/contentbuilder/internal/core/domain"
)

var storageCmd = &cobra.Command{
	Use:         "storage",
	Short:       "Inspect the record store",
	Annotations: map[string]string{skipRestore: "true"},
}

var storageKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List stored record keys",
	Long: `List the keys held by the storage backend, optionally limited to one
record kind: autosave, version or generic.`,
	RunE: runStorageKeys,
}

func init() {
	storageKeysCmd.Flags().StringP("kind", "k", "", "Only list records of this kind")
	storageCmd.AddCommand(storageKeysCmd)
	rootCmd.AddCommand(storageCmd)
}

func runStorageKeys(cmd *cobra.Command, _ []string) error {
	if storageBackend == nil {
		return errors.New("storage backend not configured")
	}

	kindFlag, _ := cmd.Flags().GetString("kind")
	kind := domain.RecordKind(kindFlag)
	if kind != "" && !kind.IsValid() {
		return fmt.Errorf("%w: unknown record kind %q", domain.ErrInvalidInput, kindFlag)
	}

	keys, err := storageBackend.Keys(cmd.Context(), kind)
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}
	if len(keys) == 0 {
		cmd.Println("No records stored.")
		return nil
	}
	for _, key := range keys {
		cmd.Println(key)
	}
	return nil
}
