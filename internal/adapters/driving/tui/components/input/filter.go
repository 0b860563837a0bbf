// Package input provides the filter input of the chunk browser.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/contentbuilder/internal/adapters/driving/tui/styles"
)

// FilterInput wraps a bubbles textinput for the chunk filter.
type FilterInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	width     int
}

// NewFilterInput creates a blurred filter input.
func NewFilterInput(s *styles.Styles) *FilterInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "content, source or tag..."
	ti.CharLimit = 256
	ti.Width = 50

	return &FilterInput{
		textinput: ti,
		styles:    s,
		width:     50,
	}
}

// Update forwards messages to the text input.
func (f *FilterInput) Update(msg tea.Msg) (*FilterInput, tea.Cmd) {
	var cmd tea.Cmd
	f.textinput, cmd = f.textinput.Update(msg)
	return f, cmd
}

// View renders the input with its label.
func (f *FilterInput) View() string {
	label := f.styles.Header.Render("Filter: ")
	field := f.styles.Filter.Render(f.textinput.View())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, field)
}

// Value returns the current input value.
func (f *FilterInput) Value() string {
	return f.textinput.Value()
}

// SetValue sets the input value.
func (f *FilterInput) SetValue(value string) {
	f.textinput.SetValue(value)
}

// Focus sets focus on the input.
func (f *FilterInput) Focus() tea.Cmd {
	return f.textinput.Focus()
}

// Blur removes focus from the input.
func (f *FilterInput) Blur() {
	f.textinput.Blur()
}

// Focused returns whether the input is focused.
func (f *FilterInput) Focused() bool {
	return f.textinput.Focused()
}

// SetWidth sets the total width, label included.
func (f *FilterInput) SetWidth(width int) {
	f.width = width
	f.textinput.Width = max(width-14, 20)
}

// Width returns the current width.
func (f *FilterInput) Width() int {
	return f.width
}

// Reset clears the input.
func (f *FilterInput) Reset() {
	f.textinput.Reset()
}
