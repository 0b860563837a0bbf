package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/contentbuilder/internal/adapters/driving/tui"
	"github.com/custodia-labs/contentbuilder/internal/core/domain"
	"github.com/custodia-labs/contentbuilder/internal/logger"
)

// isTerminal reports whether stdout is a terminal. Replaced in tests.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse chunks in the terminal UI",
	Long: `Open the interactive chunk browser. Only the chunks in view are
rendered, so large workspaces scroll smoothly.

Controls:
  ↑/k, ↓/j     - Move selection
  PgUp, PgDn   - Move a page
  g, G         - First / last chunk
  /            - Filter chunks
  Enter        - Show chunk details
  Esc          - Back / clear filter
  Mouse wheel  - Scroll
  ?            - Toggle help
  q            - Quit

Changes made while browsing are autosaved.`,
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, _ []string) (err error) {
	if err := requireChunks(); err != nil {
		return err
	}
	if !isTerminal() {
		return errors.New("browse needs an interactive terminal")
	}

	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	ports := &tui.Ports{
		Chunks:      chunkService,
		Autosave:    autosaveService,
		AutosaveKey: domain.KeyAutosave,
	}
	if settingsService != nil {
		if settings, err := settingsService.Get(); err == nil {
			ports.Scroll = settings.Scroll
		}
	}

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	defer app.Close()
	app.WithContext(cmd.Context())

	if workspaceService != nil {
		stop := workspaceService.StartAutosave()
		defer func() {
			stop()
			if saveErr := finishSession(cmd.Context()); saveErr != nil && err == nil {
				err = saveErr
			}
		}()
	}

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// finishSession flushes pending autosaves and writes a final save. It runs
// after the command context may already be done.
func finishSession(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)
	if autosaveService != nil {
		if err := autosaveService.Flush(ctx); err != nil {
			logger.Warn("flush autosave: %v", err)
		}
	}
	if err := workspaceService.SaveNow(ctx); err != nil {
		return fmt.Errorf("failed to save workspace: %w", err)
	}
	return nil
}
