package tui

import (
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/contentbuilder/internal/core/domain"
	"github.com/custodia-labs/contentbuilder/internal/core/services"
)

func newTestApp(t *testing.T, n int) (*App, *services.ChunkStore) {
	t.Helper()

	store := services.NewChunkStore()
	chunks := make([]domain.ContentChunk, n)
	for i := range chunks {
		chunks[i] = domain.ContentChunk{
			Content: fmt.Sprintf("item %03d body", i),
			Source:  fmt.Sprintf("file-%d.md", i%3),
		}
	}
	store.AddChunks(chunks)

	app, err := NewApp(&Ports{Chunks: store, Scroll: domain.ScrollSettings{ItemHeight: 3, Buffer: 2, Overscan: 1}})
	require.NoError(t, err)
	t.Cleanup(app.Close)

	app.Update(tea.WindowSizeMsg{Width: 100, Height: 24})
	return app, store
}

func press(a *App, keys ...string) {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		a.Update(msg)
	}
}

func typeText(a *App, text string) {
	for _, r := range text {
		a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestNewApp_RequiresChunks(t *testing.T) {
	app, err := NewApp(&Ports{})
	assert.ErrorIs(t, err, ErrMissingChunkService)
	assert.Nil(t, app)

	_, err = NewApp(nil)
	assert.ErrorIs(t, err, ErrMissingChunkService)
}

func TestPorts_ScrollDefaults(t *testing.T) {
	p := &Ports{}
	s := p.scrollSettings()
	assert.Equal(t, domain.DefaultItemHeight, s.ItemHeight)
	assert.Equal(t, domain.DefaultScrollBuffer, s.Buffer)
	assert.Equal(t, domain.DefaultOverscan, s.Overscan)
}

func TestApp_View_BeforeSize(t *testing.T) {
	app, err := NewApp(&Ports{Chunks: services.NewChunkStore()})
	require.NoError(t, err)
	defer app.Close()

	assert.Equal(t, "Loading...", app.View())
}

func TestApp_Navigation_KeepsSelectionVisible(t *testing.T) {
	app, _ := newTestApp(t, 100)

	// 24 rows minus header and status leaves 22 list rows.
	assert.Equal(t, 22, app.listHeight())

	press(app, "j", "j", "down")
	assert.Equal(t, 3, app.Selected())
	assert.Equal(t, 0, app.Offset())

	for i := 0; i < 7; i++ {
		press(app, "j")
	}
	assert.Equal(t, 10, app.Selected())
	assert.Equal(t, 33-22, app.Offset())

	press(app, "k")
	assert.Equal(t, 9, app.Selected())
	assert.Equal(t, 11, app.Offset())

	press(app, "G")
	assert.Equal(t, 99, app.Selected())
	assert.Equal(t, 300-22, app.Offset())
	assert.Contains(t, app.View(), "item 099")

	press(app, "g")
	assert.Equal(t, 0, app.Selected())
	assert.Equal(t, 0, app.Offset())
	assert.Contains(t, app.View(), "item 000")

	press(app, "up")
	assert.Equal(t, 0, app.Selected())
}

func TestApp_View_RendersOnlyTheWindow(t *testing.T) {
	app, _ := newTestApp(t, 100)

	view := app.View()
	assert.Contains(t, view, "item 000")
	assert.Contains(t, view, "item 006")
	assert.NotContains(t, view, "item 050")
	assert.Contains(t, view, "100 chunks")
}

func TestApp_Filter(t *testing.T) {
	app, store := newTestApp(t, 100)

	press(app, "/")
	assert.True(t, app.filter.Focused())
	assert.Equal(t, 19, app.listHeight())

	typeText(app, "item 04")
	assert.Equal(t, "item 04", store.Query())
	assert.Equal(t, 10, store.FilteredLen())
	assert.Equal(t, 0, app.Selected())

	press(app, "enter")
	assert.False(t, app.filter.Focused())
	assert.Equal(t, 10, store.FilteredLen())
	assert.Contains(t, app.View(), "10 of 100 chunks")

	// j navigates again once the input is blurred.
	press(app, "j")
	assert.Equal(t, 1, app.Selected())

	press(app, "/", "esc")
	assert.Empty(t, store.Query())
	assert.Equal(t, 100, store.FilteredLen())
	assert.Equal(t, 22, app.listHeight())
}

func TestApp_Filter_NoMatches(t *testing.T) {
	app, _ := newTestApp(t, 5)

	press(app, "/")
	typeText(app, "zzz")
	press(app, "enter")

	assert.Contains(t, app.View(), "No chunks match the filter.")
	press(app, "enter")
	assert.False(t, app.DetailOpen())
}

func TestApp_Detail(t *testing.T) {
	app, _ := newTestApp(t, 10)

	press(app, "j", "enter")
	require.True(t, app.DetailOpen())
	view := app.View()
	assert.Contains(t, view, "item 001 body")
	assert.Contains(t, view, "Source: file-1.md")

	press(app, "j")
	assert.Equal(t, 1, app.Selected(), "navigation is disabled in the detail pane")

	press(app, "esc")
	assert.False(t, app.DetailOpen())
}

func TestApp_Help(t *testing.T) {
	app, _ := newTestApp(t, 3)

	press(app, "?")
	assert.Contains(t, app.View(), "press any key to close")

	press(app, "x")
	assert.NotContains(t, app.View(), "press any key to close")
}

func TestApp_MouseWheel_IsThrottled(t *testing.T) {
	app, _ := newTestApp(t, 100)
	wheelDown := tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress}

	app.Update(wheelDown)
	assert.Equal(t, 3, app.Offset())

	// The next events in the same frame fold into one deferred apply.
	app.Update(wheelDown)
	app.Update(wheelDown)
	assert.Eventually(t, func() bool { return app.Offset() == 9 }, time.Second, 5*time.Millisecond)

	wheelUp := tea.MouseMsg{Button: tea.MouseButtonWheelUp, Action: tea.MouseActionPress}
	time.Sleep(40 * time.Millisecond)
	app.Update(wheelUp)
	assert.Eventually(t, func() bool { return app.Offset() == 6 }, time.Second, 5*time.Millisecond)
}

func TestApp_MouseWheel_ClampsAtTop(t *testing.T) {
	app, _ := newTestApp(t, 100)

	app.Update(tea.MouseMsg{Button: tea.MouseButtonWheelUp, Action: tea.MouseActionPress})
	assert.Equal(t, 0, app.Offset())
}

func TestApp_StoreChangeRequestsRefresh(t *testing.T) {
	app, store := newTestApp(t, 3)
	// Drain anything queued during setup.
	select {
	case <-app.refresh:
	default:
	}

	store.AddChunk(domain.ContentChunk{Content: "new"})

	msg := app.waitForRefresh()()
	assert.IsType(t, refreshMsg{}, msg)
}

func TestApp_Refresh_ClampsSelectionAfterDelete(t *testing.T) {
	app, store := newTestApp(t, 20)
	press(app, "G")
	require.Equal(t, 19, app.Selected())

	var ids []string
	for _, c := range store.Chunks()[5:] {
		ids = append(ids, c.ID)
	}
	store.BulkDeleteChunks(ids)
	app.Update(refreshMsg{})

	assert.Equal(t, 4, app.Selected())
	assert.Equal(t, 0, app.Offset())
}

func TestApp_CtrlCQuits(t *testing.T) {
	app, _ := newTestApp(t, 1)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
