// Package status provides the status bar of the chunk browser.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/contentbuilder/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/contentbuilder/internal/adapters/driving/tui/styles"
)

// Mode is the interaction mode shown in the bar.
type Mode string

const (
	ModeBrowse Mode = "browse"
	ModeFilter Mode = "filter"
	ModeDetail Mode = "detail"
)

// Bar displays collection counts, save state and keybinding hints.
type Bar struct {
	styles *styles.Styles
	keymap *keymap.KeyMap
	mode   Mode

	shown int
	total int
	query string
	save  string
	err   string
	width int
}

// NewBar creates a status bar.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &Bar{
		styles: s,
		keymap: km,
		mode:   ModeBrowse,
		width:  80,
	}
}

// View renders the bar.
func (b *Bar) View() string {
	left := b.renderLeft()
	right := b.renderRight()

	// Two columns go to the style's horizontal padding.
	padding := max(b.width-2-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return b.styles.Status.Width(b.width).Render(left + strings.Repeat(" ", padding) + right)
}

func (b *Bar) renderLeft() string {
	if b.err != "" {
		return b.styles.Error.Render("Error: " + b.err)
	}

	parts := []string{b.Counts()}
	if b.query != "" {
		parts = append(parts, fmt.Sprintf("filter %q", b.query))
	}
	if b.save != "" {
		parts = append(parts, b.save)
	}
	return strings.Join(parts, " · ")
}

func (b *Bar) renderRight() string {
	var bindings []key.Binding
	switch b.mode {
	case ModeFilter:
		bindings = b.keymap.FilterHelp()
	case ModeDetail:
		bindings = b.keymap.DetailHelp()
	default:
		bindings = b.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		h := binding.Help()
		hints = append(hints, h.Key+": "+h.Desc)
	}
	return strings.Join(hints, " | ")
}

// Counts renders the chunk counts.
func (b *Bar) Counts() string {
	if b.shown == b.total {
		return fmt.Sprintf("%d chunks", b.total)
	}
	return fmt.Sprintf("%d of %d chunks", b.shown, b.total)
}

// SetMode sets the interaction mode.
func (b *Bar) SetMode(mode Mode) {
	b.mode = mode
}

// Mode returns the interaction mode.
func (b *Bar) Mode() Mode {
	return b.mode
}

// SetCounts sets the filtered and total chunk counts.
func (b *Bar) SetCounts(shown, total int) {
	b.shown, b.total = shown, total
}

// SetQuery sets the active filter query.
func (b *Bar) SetQuery(query string) {
	b.query = query
}

// SetSaveState sets the autosave state label. Empty hides it.
func (b *Bar) SetSaveState(state string) {
	b.save = state
}

// SetError shows an error instead of the counts. Empty clears it.
func (b *Bar) SetError(msg string) {
	b.err = msg
}

// Error returns the error shown, if any.
func (b *Bar) Error() string {
	return b.err
}

// SetWidth sets the bar width.
func (b *Bar) SetWidth(width int) {
	b.width = width
}

// Width returns the bar width.
func (b *Bar) Width() int {
	return b.width
}
