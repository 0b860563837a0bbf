package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/contentbuilder/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/contentbuilder/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/contentbuilder/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/contentbuilder/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/contentbuilder/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/contentbuilder/internal/core/domain"
	"github.com/custodia-labs/contentbuilder/internal/virtualscroll"
)

// refreshMsg asks for a redraw after a store change or a deferred scroll.
type refreshMsg struct{}

// filterRows is the height of the bordered filter input.
const filterRows = 3

// App is the chunk browser following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	filter *input.FilterInput
	list   *list.ChunkList
	bar    *status.Bar
	engine *virtualscroll.Engine

	// refresh carries redraw requests from other goroutines into Update.
	refresh     chan struct{}
	unsubscribe func()

	// target is the latest requested offset, which may not be applied yet
	// while the throttle holds a wheel event.
	target   int
	selected int
	detail   bool
	help     bool

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a browser over the given ports. Call Close when done.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	scroll := ports.scrollSettings()

	a := &App{
		ports:   ports,
		ctx:     context.Background(),
		styles:  s,
		keymap:  km,
		filter:  input.NewFilterInput(s),
		list:    list.NewChunkList(s, scroll.ItemHeight),
		bar:     status.NewBar(s, km),
		refresh: make(chan struct{}, 1),
		width:   80,
		height:  24,
	}

	a.engine = virtualscroll.NewEngine(
		virtualscroll.ConfigFromSettings(scroll, a.listHeight()),
		ports.Chunks.FilteredLen,
		virtualscroll.ScrollerFunc(func(offset int, _ bool) {
			a.setOffset(offset)
		}),
	)
	a.engine.OnChange(func(virtualscroll.Range) { a.notify() })
	a.unsubscribe = ports.Chunks.Subscribe(func(uint64) { a.notify() })
	a.filter.SetValue(ports.Chunks.Query())

	return a, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Close stops the scroll engine and the store subscription.
func (a *App) Close() {
	a.engine.Close()
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
}

// notify queues a redraw without blocking. Requests coalesce.
func (a *App) notify() {
	select {
	case a.refresh <- struct{}{}:
	default:
	}
}

func (a *App) waitForRefresh() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-a.refresh:
			return refreshMsg{}
		case <-a.ctx.Done():
			return nil
		}
	}
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("contentbuilder - chunks"),
		a.waitForRefresh(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.ready = true
		a.resize()
		return a, nil

	case refreshMsg:
		a.clampSelection()
		return a, a.waitForRefresh()

	case tea.MouseMsg:
		a.handleMouse(msg)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.filter.Focused() {
			return a, a.handleFilterKey(msg)
		}
		return a, a.handleKey(msg)
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	k := msg.String()

	if a.help {
		a.help = false
		return nil
	}
	if a.detail {
		switch {
		case keymap.Matches(k, a.keymap.Back), keymap.Matches(k, a.keymap.Open):
			a.detail = false
		case keymap.Matches(k, a.keymap.Quit):
			return tea.Quit
		}
		return nil
	}

	page := max(a.engine.Range().VisibleCount-1, 1)
	switch {
	case keymap.Matches(k, a.keymap.Quit):
		return tea.Quit
	case keymap.Matches(k, a.keymap.Help):
		a.help = true
	case keymap.Matches(k, a.keymap.Filter):
		cmd := a.filter.Focus()
		a.resize()
		return cmd
	case keymap.Matches(k, a.keymap.Up):
		a.selectIndex(a.selected - 1)
	case keymap.Matches(k, a.keymap.Down):
		a.selectIndex(a.selected + 1)
	case keymap.Matches(k, a.keymap.PageUp):
		a.selectIndex(a.selected - page)
	case keymap.Matches(k, a.keymap.PageDown):
		a.selectIndex(a.selected + page)
	case keymap.Matches(k, a.keymap.Top):
		a.selected = 0
		a.engine.ScrollToItem(0, false)
	case keymap.Matches(k, a.keymap.Bottom):
		a.selectIndex(a.ports.Chunks.FilteredLen() - 1)
	case keymap.Matches(k, a.keymap.Open):
		a.detail = a.ports.Chunks.FilteredLen() > 0
	}
	return nil
}

// handleFilterKey edits the query live. Enter keeps it, esc drops it.
func (a *App) handleFilterKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		a.filter.Blur()
		a.resize()
		return nil
	case tea.KeyEsc:
		a.filter.Blur()
		a.filter.Reset()
		a.applyFilter("")
		a.resize()
		return nil
	}

	before := a.filter.Value()
	var cmd tea.Cmd
	a.filter, cmd = a.filter.Update(msg)
	if a.filter.Value() != before {
		a.applyFilter(a.filter.Value())
	}
	return cmd
}

func (a *App) applyFilter(query string) {
	a.ports.Chunks.FilterChunks(query)
	a.selected = 0
	a.setOffset(0)
}

// handleMouse routes wheel events through the throttled path.
func (a *App) handleMouse(msg tea.MouseMsg) {
	if a.detail || msg.Action != tea.MouseActionPress {
		return
	}
	step := a.list.ItemHeight()
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		a.target = a.clampOffset(a.target - step)
	case tea.MouseButtonWheelDown:
		a.target = a.clampOffset(a.target + step)
	default:
		return
	}
	a.engine.OnScroll(a.target)
}

// selectIndex moves the selection and scrolls just enough to show it.
func (a *App) selectIndex(i int) {
	n := a.ports.Chunks.FilteredLen()
	if n == 0 {
		a.selected = 0
		return
	}
	a.selected = min(max(i, 0), n-1)

	h := a.list.ItemHeight()
	top := a.selected * h
	bottom := top + h
	offset := a.engine.Offset()
	switch {
	case top < offset:
		a.setOffset(top)
	case bottom > offset+a.listHeight():
		a.setOffset(bottom - a.listHeight())
	}
}

// setOffset applies offset immediately, clamped to the scrollable range.
func (a *App) setOffset(offset int) {
	a.target = a.clampOffset(offset)
	a.engine.SetOffset(a.target)
}

func (a *App) clampOffset(offset int) int {
	total := a.ports.Chunks.FilteredLen() * a.list.ItemHeight()
	return min(max(offset, 0), max(total-a.listHeight(), 0))
}

func (a *App) clampSelection() {
	n := a.ports.Chunks.FilteredLen()
	if a.selected >= n {
		a.selected = max(n-1, 0)
	}
	if a.engine.Offset() != a.clampOffset(a.engine.Offset()) {
		a.setOffset(a.engine.Offset())
	}
	if n == 0 {
		a.detail = false
	}
}

func (a *App) filterVisible() bool {
	return a.filter.Focused() || a.ports.Chunks.Query() != ""
}

// listHeight is the number of rows left for the list.
func (a *App) listHeight() int {
	chrome := 2
	if a.filterVisible() {
		chrome += filterRows
	}
	return max(a.height-chrome, 1)
}

func (a *App) resize() {
	a.list.SetWidth(a.width)
	a.bar.SetWidth(a.width)
	a.filter.SetWidth(a.width)
	a.engine.SetContainerHeight(a.listHeight())
	a.selectIndex(a.selected)
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Loading..."
	}

	a.updateBar()
	sections := []string{a.renderHeader()}
	if a.filterVisible() {
		sections = append(sections, a.filter.View())
	}

	switch {
	case a.help:
		sections = append(sections, a.renderHelp())
	case a.detail:
		sections = append(sections, a.renderDetail())
	default:
		sections = append(sections, a.renderList())
	}
	sections = append(sections, a.bar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (a *App) renderHeader() string {
	return a.styles.Header.Render("contentbuilder") + "  " + a.styles.Muted.Render(a.bar.Counts())
}

// renderList draws only the engine's range, offset so that the row at the
// scroll offset lands on the first line.
func (a *App) renderList() string {
	if a.ports.Chunks.FilteredLen() == 0 {
		msg := "No chunks. Import files or add chunks from the CLI."
		if a.ports.Chunks.Query() != "" {
			msg = "No chunks match the filter."
		}
		return a.styles.Muted.Render(msg) + strings.Repeat("\n", a.listHeight()-1)
	}

	r := a.engine.Range()
	chunks := a.ports.Chunks.FilteredRange(r.Start, r.End)
	skip := a.engine.Offset() - r.RenderOffset
	return a.list.Render(chunks, r.Start, a.selected, skip, a.listHeight())
}

func (a *App) renderDetail() string {
	items := a.ports.Chunks.FilteredRange(a.selected, a.selected+1)
	if len(items) == 0 {
		return a.styles.Muted.Render("Chunk no longer exists.")
	}
	c := items[0]

	meta := []string{
		"ID:     " + c.ID,
		"Source: " + c.Source,
		fmt.Sprintf("Stats:  %d words, %d characters, %d sentences",
			c.Stats.Words, c.Stats.Characters, c.Stats.Sentences),
	}
	if len(c.Tags) > 0 {
		meta = append(meta, "Tags:   "+strings.Join(c.Tags, ", "))
	}
	if c.Metadata.Section != "" {
		meta = append(meta, "Section: "+c.Metadata.Section)
	}

	body := a.styles.Muted.Render(strings.Join(meta, "\n")) + "\n\n" + c.Content
	return a.styles.Detail.Width(max(a.width-2, 20)).MaxHeight(a.listHeight()).Render(body)
}

func (a *App) renderHelp() string {
	var rows []string
	for _, group := range a.keymap.FullHelp() {
		for _, b := range group {
			h := b.Help()
			rows = append(rows, fmt.Sprintf("  %-8s %s", h.Key, h.Desc))
		}
		rows = append(rows, "")
	}
	rows = append(rows, a.styles.Muted.Render("  press any key to close"))
	return strings.Join(rows, "\n")
}

func (a *App) updateBar() {
	switch {
	case a.filter.Focused():
		a.bar.SetMode(status.ModeFilter)
	case a.detail:
		a.bar.SetMode(status.ModeDetail)
	default:
		a.bar.SetMode(status.ModeBrowse)
	}
	stats := a.ports.Chunks.Stats()
	a.bar.SetCounts(stats.FilteredChunks, stats.TotalChunks)
	a.bar.SetQuery(a.ports.Chunks.Query())

	if a.ports.Autosave != nil {
		state := a.ports.Autosave.State(a.autosaveKey())
		if state == domain.AutosaveIdle {
			a.bar.SetSaveState("")
		} else {
			a.bar.SetSaveState(string(state))
		}
	}
}

func (a *App) autosaveKey() string {
	if a.ports.AutosaveKey != "" {
		return a.ports.AutosaveKey
	}
	return domain.KeyAutosave
}

// Selected returns the index of the selected chunk in the filtered view.
func (a *App) Selected() int {
	return a.selected
}

// Offset returns the applied scroll offset in rows.
func (a *App) Offset() int {
	return a.engine.Offset()
}

// DetailOpen reports whether the detail pane is showing.
func (a *App) DetailOpen() bool {
	return a.detail
}
