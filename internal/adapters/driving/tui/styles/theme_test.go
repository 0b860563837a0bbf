package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTheme(t *testing.T) {
	theme := DefaultTheme()

	require.NotNil(t, theme)
	for _, c := range []string{
		string(theme.Accent), string(theme.Highlight), string(theme.Text), string(theme.Dim),
		string(theme.Tag), string(theme.Alert), string(theme.Border), string(theme.Bar),
	} {
		assert.NotEmpty(t, c)
	}
}

func TestNewStyles_NilThemeUsesDefault(t *testing.T) {
	s := NewStyles(nil)

	require.NotNil(t, s.Theme())
	assert.Equal(t, DefaultTheme().Accent, s.Theme().Accent)
}

func TestNewStyles_CustomTheme(t *testing.T) {
	theme := DefaultTheme()
	theme.Accent = "#000000"

	s := NewStyles(theme)

	assert.Same(t, theme, s.Theme())
	assert.NotEmpty(t, s.Header.Render("x"))
}
