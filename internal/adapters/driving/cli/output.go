package cli

import (
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

// printJSON writes v as indented JSON.
func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func jsonFlag(cmd *cobra.Command) bool {
	asJSON, _ := cmd.Flags().GetBool("json")
	return asJSON
}

// preview flattens text onto one line and cuts it to n runes.
func preview(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n-3]) + "..."
}

func sourceLabel(source string) string {
	if source == "" {
		return "(manual)"
	}
	return source
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
