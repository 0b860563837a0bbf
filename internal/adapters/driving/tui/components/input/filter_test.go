package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFilterInput(t *testing.T) {
	f := NewFilterInput(nil)

	require.NotNil(t, f)
	assert.False(t, f.Focused())
	assert.Empty(t, f.Value())
	assert.Equal(t, 50, f.Width())
}

func TestFilterInput_TypingWhenFocused(t *testing.T) {
	f := NewFilterInput(nil)
	f.Focus()

	for _, r := range "go" {
		f, _ = f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	assert.Equal(t, "go", f.Value())
	assert.Contains(t, f.View(), "Filter:")
}

func TestFilterInput_SetValueAndReset(t *testing.T) {
	f := NewFilterInput(nil)

	f.SetValue("tag")
	assert.Equal(t, "tag", f.Value())

	f.Reset()
	assert.Empty(t, f.Value())
}

func TestFilterInput_FocusBlur(t *testing.T) {
	f := NewFilterInput(nil)

	f.Focus()
	assert.True(t, f.Focused())
	f.Blur()
	assert.False(t, f.Focused())
}

func TestFilterInput_SetWidth(t *testing.T) {
	f := NewFilterInput(nil)

	f.SetWidth(100)
	assert.Equal(t, 100, f.Width())
	assert.Equal(t, 86, f.textinput.Width)

	f.SetWidth(10)
	assert.Equal(t, 20, f.textinput.Width)
}
