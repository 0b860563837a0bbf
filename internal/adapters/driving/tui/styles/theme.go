// Package styles provides the colour theme for the chunk browser.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is the colour palette.
type Theme struct {
	Accent    lipgloss.Color
	Highlight lipgloss.Color
	Text      lipgloss.Color
	Dim       lipgloss.Color
	Tag       lipgloss.Color
	Alert     lipgloss.Color
	Border    lipgloss.Color
	Bar       lipgloss.Color
}

// DefaultTheme returns the default palette.
func DefaultTheme() *Theme {
	return &Theme{
		Accent:    lipgloss.Color("#7C3AED"),
		Highlight: lipgloss.Color("#2A2140"),
		Text:      lipgloss.Color("#CDD6F4"),
		Dim:       lipgloss.Color("#6C7086"),
		Tag:       lipgloss.Color("#06B6D4"),
		Alert:     lipgloss.Color("#F38BA8"),
		Border:    lipgloss.Color("#45475A"),
		Bar:       lipgloss.Color("#181825"),
	}
}

// Styles holds the rendered styles built from a Theme.
type Styles struct {
	theme *Theme

	Header   lipgloss.Style
	Source   lipgloss.Style
	Tag      lipgloss.Style
	Preview  lipgloss.Style
	Selected lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
	Filter   lipgloss.Style
	Detail   lipgloss.Style
	Status   lipgloss.Style
}

// NewStyles creates styles from a theme. A nil theme means DefaultTheme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme:    theme,
		Header:   lipgloss.NewStyle().Bold(true).Foreground(theme.Accent),
		Source:   lipgloss.NewStyle().Bold(true).Foreground(theme.Text),
		Tag:      lipgloss.NewStyle().Foreground(theme.Tag),
		Preview:  lipgloss.NewStyle().Foreground(theme.Dim),
		Selected: lipgloss.NewStyle().Background(theme.Highlight),
		Muted:    lipgloss.NewStyle().Foreground(theme.Dim),
		Error:    lipgloss.NewStyle().Foreground(theme.Alert),
		Filter: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
		Detail: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Accent).
			Padding(0, 1),
		Status: lipgloss.NewStyle().
			Foreground(theme.Dim).
			Background(theme.Bar).
			Padding(0, 1),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(nil)
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}
