// Package viewer is an interactive pager for prettified output built on
// Bubble Tea. Records arrive as messages while the program runs, so the
// pager works for finite inputs and for followed files alike.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"go.uber.org/zap"

	"github.com/five82/plume/internal/prefs"
	"github.com/five82/plume/internal/stream"
)

// DefaultBufferLimit is how many records the viewer keeps.
const DefaultBufferLimit = 5000

// Options configures the viewer.
type Options struct {
	Title       string
	ThemeName   string
	PrefsPath   string
	LastSearch  string
	BufferLimit int
	// Logger receives failures the pager cannot show, such as a prefs
	// write error. Nil discards them.
	Logger *zap.Logger
}

// AppendMsg delivers one formatted record.
type AppendMsg struct {
	Text string
}

// EndMsg reports that the input is exhausted. Err is nil on a clean end.
type EndMsg struct {
	Err error
}

// Model is the viewer state.
type Model struct {
	keys      keyMap
	theme     Theme
	prefsPath string
	logger    *zap.Logger
	title     string
	limit     int

	width  int
	height int
	ready  bool

	viewport viewport.Model
	entries  []string
	lines    []string
	follow   bool
	showHelp bool

	done    bool
	doneErr error

	searchActive   bool
	searchInput    textinput.Model
	searchQuery    string
	searchRegex    *regexp.Regexp
	searchMatches  []int // Line indices that match
	searchMatchIdx int
	lastSearch     string
}

// New creates a viewer model.
func New(opts Options) Model {
	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Dracula"
	}
	limit := opts.BufferLimit
	if limit <= 0 {
		limit = DefaultBufferLimit
	}
	title := opts.Title
	if title == "" {
		title = "stdin"
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ti := textinput.New()
	ti.Placeholder = "Search output..."
	ti.Prompt = "/"
	ti.CharLimit = 100

	return Model{
		keys:        defaultKeyMap(),
		theme:       GetTheme(themeName),
		prefsPath:   opts.PrefsPath,
		logger:      logger,
		title:       title,
		limit:       limit,
		follow:      true,
		searchInput: ti,
		lastSearch:  opts.LastSearch,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(m.width, m.bodyHeight())
			m.ready = true
		}
		m.viewport.Width = m.width
		m.viewport.Height = m.bodyHeight()
		m.refresh()
		return m, nil

	case AppendMsg:
		m.entries = append(m.entries, strings.TrimRight(msg.Text, "\r\n"))
		m.entries = trimBuffer(m.entries, m.limit)
		m.rebuildLines()
		if m.searchRegex != nil {
			m.findSearchMatches()
		}
		m.refresh()
		return m, nil

	case EndMsg:
		m.done = true
		m.doneErr = msg.Err
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	styles := m.theme.Styles()
	var b strings.Builder
	b.WriteString(styles.Header.Width(m.width).Render(m.renderHeader(styles)))
	b.WriteString("\n")
	b.WriteString(styles.Body.Render(m.viewport.View()))
	b.WriteString("\n")
	b.WriteString(styles.Footer.Width(m.width).Render(m.renderFooter(styles)))
	return b.String()
}

func (m Model) bodyHeight() int {
	return max(m.height-2, 1)
}

func (m Model) renderHeader(styles Styles) string {
	state := "following"
	if !m.follow {
		state = "paused"
	}
	if m.done {
		state = "end of input"
		if m.doneErr != nil {
			state = styles.Danger.Render("error: " + m.doneErr.Error())
		}
	}
	return fmt.Sprintf("%s  %s  %s",
		styles.Title.Render("plume · "+m.title),
		styles.Muted.Render(fmt.Sprintf("%d records", len(m.entries))),
		state)
}

func (m Model) renderFooter(styles Styles) string {
	if m.searchActive {
		return m.searchInput.View()
	}
	if m.searchRegex != nil {
		if len(m.searchMatches) == 0 {
			return styles.Warning.Render(fmt.Sprintf("/%s: no matches", m.searchQuery))
		}
		return fmt.Sprintf("/%s: match %d of %d (n/N)", m.searchQuery, m.searchMatchIdx+1, len(m.searchMatches))
	}
	return styles.Muted.Render(fmt.Sprintf("? help · / search · f follow · T theme (%s) · q quit", m.theme.Name))
}

func (m Model) renderHelp() string {
	styles := m.theme.Styles()
	var b strings.Builder
	b.WriteString(styles.Title.Render("Keys"))
	b.WriteString("\n\n")
	for _, binding := range m.keys.helpBindings() {
		h := binding.Help()
		fmt.Fprintf(&b, "  %-8s %s\n", h.Key, styles.Muted.Render(h.Desc))
	}
	b.WriteString("\nPress any key to close.")
	return b.String()
}

// rebuildLines flattens the buffered records into display lines.
func (m *Model) rebuildLines() {
	lines := make([]string, 0, len(m.lines)+1)
	for _, entry := range m.entries {
		for _, line := range strings.Split(entry, "\n") {
			lines = append(lines, strings.TrimSuffix(line, "\r"))
		}
	}
	m.lines = lines
}

// refresh re-renders the viewport content.
func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderContent())
	if m.follow {
		m.viewport.GotoBottom()
	}
}

func (m *Model) renderContent() string {
	if m.searchRegex == nil {
		return strings.Join(m.lines, "\n")
	}

	styles := m.theme.Styles()
	current := -1
	if len(m.searchMatches) > 0 {
		current = m.searchMatches[m.searchMatchIdx]
	}
	matched := make(map[int]bool, len(m.searchMatches))
	for _, idx := range m.searchMatches {
		matched[idx] = true
	}

	var b strings.Builder
	for i, line := range m.lines {
		if i > 0 {
			b.WriteString("\n")
		}
		switch {
		case i == current:
			b.WriteString(styles.CurrentMatch.Render("▶"))
			b.WriteString(" ")
		case matched[i]:
			b.WriteString(styles.Match.Render("•"))
			b.WriteString(" ")
		default:
			b.WriteString("  ")
		}
		b.WriteString(line)
	}
	return b.String()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}
	if m.searchActive {
		return m.handleSearchInput(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.ToggleFollow):
		m.follow = !m.follow
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.searchActive = true
		m.searchInput.SetValue(m.lastSearch)
		m.searchInput.CursorEnd()
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.NextMatch):
		m.moveSearchMatch(1)
		return m, nil

	case key.Matches(msg, m.keys.PrevMatch):
		m.moveSearchMatch(-1)
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		if m.searchRegex != nil {
			m.clearSearch()
			m.refresh()
		}
		return m, nil

	case key.Matches(msg, m.keys.Top):
		m.follow = false
		m.viewport.GotoTop()
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.follow = true
		m.viewport.GotoBottom()
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.follow = false
		m.viewport.ScrollDown(1)
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.follow = false
		m.viewport.ScrollUp(1)
		return m, nil

	case key.Matches(msg, m.keys.HalfPageDown):
		m.follow = false
		m.viewport.HalfPageDown()
		return m, nil

	case key.Matches(msg, m.keys.HalfPageUp):
		m.follow = false
		m.viewport.HalfPageUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.follow = false
		m.viewport.PageDown()
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.follow = false
		m.viewport.PageUp()
		return m, nil
	}

	return m, nil
}

// handleSearchInput handles keyboard input while the search prompt is open.
func (m Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		query := m.searchInput.Value()
		if query == "" {
			m.searchActive = false
			m.searchInput.Blur()
			return m, nil
		}

		re, err := regexp.Compile("(?i)" + query)
		if err != nil {
			// Invalid regex - stay in search mode
			return m, nil
		}

		m.searchRegex = re
		m.searchQuery = query
		m.lastSearch = query
		m.searchActive = false
		m.searchInput.Blur()
		m.savePrefs()

		m.findSearchMatches()
		if len(m.searchMatches) > 0 {
			m.searchMatchIdx = 0
			m.follow = false
		}
		m.refresh()
		m.scrollToSearchMatch()
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		m.searchActive = false
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m *Model) clearSearch() {
	m.searchRegex = nil
	m.searchQuery = ""
	m.searchMatches = nil
	m.searchMatchIdx = 0
}

// findSearchMatches finds all lines matching the current search regex.
// Styling escapes are ignored when matching.
func (m *Model) findSearchMatches() {
	m.searchMatches = nil
	if m.searchRegex == nil {
		return
	}
	for i, line := range m.lines {
		if m.searchRegex.MatchString(ansi.Strip(line)) {
			m.searchMatches = append(m.searchMatches, i)
		}
	}
	if m.searchMatchIdx >= len(m.searchMatches) {
		m.searchMatchIdx = 0
	}
}

func (m *Model) moveSearchMatch(delta int) {
	n := len(m.searchMatches)
	if n == 0 {
		return
	}
	m.searchMatchIdx = (m.searchMatchIdx + delta + n) % n
	m.follow = false
	m.refresh()
	m.scrollToSearchMatch()
}

// scrollToSearchMatch centers the current match when possible.
func (m *Model) scrollToSearchMatch() {
	if len(m.searchMatches) == 0 || m.searchMatchIdx >= len(m.searchMatches) {
		return
	}
	target := m.searchMatches[m.searchMatchIdx]
	m.viewport.SetYOffset(max(target-m.viewport.Height/2, 0))
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name, LastSearch: m.lastSearch}); err != nil {
		m.logger.Warn("save prefs failed", zap.String("path", m.prefsPath), zap.Error(err))
	}
}

// trimBuffer drops the oldest entries beyond limit.
func trimBuffer(entries []string, limit int) []string {
	if overflow := len(entries) - limit; overflow > 0 {
		return append([]string(nil), entries[overflow:]...)
	}
	return entries
}

// Sink forwards formatted records to a running viewer program.
type Sink struct {
	program *tea.Program
}

// Emit implements stream.Sink.
func (s Sink) Emit(text string) error {
	s.program.Send(AppendMsg{Text: text})
	return nil
}

// Run shows the viewer until the user quits or ctx is cancelled. feed runs
// in its own goroutine and should write records to the sink it receives;
// its error is shown in the header.
func Run(ctx context.Context, opts Options, feed func(stream.Sink) error) error {
	p := tea.NewProgram(New(opts),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithInputTTY(),
	)

	go func() {
		err := feed(Sink{program: p})
		p.Send(EndMsg{Err: err})
	}()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
