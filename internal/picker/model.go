package picker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/runger/lookout/internal/channel"
	"github.com/runger/lookout/internal/config"
	"github.com/runger/lookout/internal/help"
	"github.com/runger/lookout/internal/keymap"
	"github.com/runger/lookout/internal/logging"
)

const (
	// defaultTickInterval is how often counts are re-read while a channel loads.
	defaultTickInterval = 50 * time.Millisecond

	// chromeRows is the header line plus the query line.
	chromeRows = 2

	// minPreviewWidth is the terminal width below which the preview pane is hidden.
	minPreviewWidth = 60

	// recordTimeout bounds the write of a selection to history.
	recordTimeout = time.Second
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// tickMsg re-reads the active channel while it is still loading.
type tickMsg struct{}

// previewMsg carries a preview produced asynchronously.
type previewMsg struct {
	id      uint64 // Must match previewID to be accepted
	entry   string
	content string
	err     error
}

// initMsg is sent by Init() so the first tick is scheduled through Update.
type initMsg struct{}

// Recorder stores selected entries.
type Recorder interface {
	RecordSelection(ctx context.Context, channel, entry string) error
}

// Options configures a Model.
type Options struct {
	Registry     *channel.Registry // Needed for the channel guide and piping
	Keymap       keymap.Keymap     // Defaults to keymap.Default()
	Layout       string            // config.LayoutTopDown or config.LayoutBottomUp
	Query        string            // Initial query
	ShowPreview  bool
	ShowHelp     bool
	TickInterval time.Duration
	Recorder     Recorder // Optional selection history
	Logger       *slog.Logger
}

// Model is the Bubble Tea model for the lookout picker.
type Model struct {
	ctx      context.Context
	registry *channel.Registry
	keymap   keymap.Keymap
	recorder Recorder
	logger   *slog.Logger
	tick     time.Duration
	inverted bool

	mode    keymap.Mode
	channel channel.Channel
	results Picker

	// guideCh and guide back the guide and send-to modes.
	guideCh channel.Channel
	guide   Picker

	preview     viewport.Model
	previewID   uint64 // Monotonic counter for stale detection
	previewFor  string // Entry the latest preview was requested for
	showPreview bool
	showHelp    bool

	ticking bool
	frame   int

	width  int
	height int

	result    string
	cancelled bool
	err       error
}

// NewModel creates a Model browsing ch. ch must not be nil.
func NewModel(ctx context.Context, ch channel.Channel, opts Options) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	km := opts.Keymap
	if km == nil {
		km = keymap.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	tick := opts.TickInterval
	if tick <= 0 {
		tick = defaultTickInterval
	}

	inverted := opts.Layout == config.LayoutBottomUp
	results := New()
	if inverted {
		results = results.Inverted()
	}
	if opts.Query != "" {
		results.Input().SetValue(opts.Query)
		ch.Find(opts.Query)
	}

	m := Model{
		ctx:         ctx,
		registry:    opts.Registry,
		keymap:      km,
		recorder:    opts.Recorder,
		logger:      logger,
		tick:        tick,
		inverted:    inverted,
		mode:        keymap.ModeChannel,
		channel:     ch,
		results:     results,
		preview:     viewport.New(0, 0),
		showPreview: opts.ShowPreview,
		showHelp:    opts.ShowHelp,
	}
	m.resize()
	return m
}

// Result returns the output of the selected entry, or "" if cancelled.
func (m Model) Result() string {
	return m.result
}

// IsCancelled reports whether the user quit without selecting.
func (m Model) IsCancelled() bool {
	return m.cancelled
}

// ChannelName returns the name of the channel being browsed.
func (m Model) ChannelName() string {
	return m.channel.Name()
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, func() tea.Msg { return initMsg{} })
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case previewMsg:
		return m.handlePreview(msg)

	case initMsg:
		cmd := tea.Batch(m.startTick(), m.requestPreview())
		return m, cmd
	}

	return m.updateInput(msg)
}

// handleKey dispatches bound keys to actions and the rest to the query input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action, ok := m.keymap.Lookup(m.mode, msg)
	if !ok {
		return m.updateInput(msg)
	}

	switch action {
	case keymap.Quit:
		m.cancelled = true
		m.shutdown()
		return m, tea.Quit

	case keymap.SelectNextEntry:
		ch, p := m.active()
		p.SelectNext(ch.ResultCount(), m.navHeight())
		cmd := m.requestPreview()
		return m, cmd

	case keymap.SelectPrevEntry:
		ch, p := m.active()
		p.SelectPrev(ch.ResultCount(), m.navHeight())
		cmd := m.requestPreview()
		return m, cmd

	case keymap.SelectEntry:
		return m.selectEntry()

	case keymap.ScrollPreviewHalfPageUp:
		m.preview.SetYOffset(m.preview.YOffset - m.preview.Height/2)

	case keymap.ScrollPreviewHalfPageDown:
		m.preview.SetYOffset(m.preview.YOffset + m.preview.Height/2)

	case keymap.SendToChannel:
		if m.mode == keymap.ModeChannel {
			cmd := m.openGuide(keymap.ModeSendToChannel)
			return m, cmd
		}

	case keymap.ToggleChannelSelection:
		if m.mode == keymap.ModeChannel {
			cmd := m.openGuide(keymap.ModeGuide)
			return m, cmd
		}
		m.closeGuide()
		cmd := m.requestPreview()
		return m, cmd

	case keymap.ToggleHelp:
		m.showHelp = !m.showHelp
		m.resize()

	case keymap.TogglePreview:
		m.showPreview = !m.showPreview
		m.resize()
		cmd := m.requestPreview()
		return m, cmd
	}

	return m, nil
}

// updateInput forwards msg to the active query input and re-runs the
// search when the text changed.
func (m Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	ch, p := m.active()
	in := p.Input()
	cmd := in.Update(msg)
	if !in.Changed() {
		return m, cmd
	}
	ch.Find(in.Value())
	p.ResetSelection()
	cmd = tea.Batch(cmd, m.requestPreview())
	return m, cmd
}

// selectEntry acts on the selected entry of the active mode.
func (m Model) selectEntry() (tea.Model, tea.Cmd) {
	e, ok := m.selectedEntry()
	if !ok {
		return m, nil
	}

	switch m.mode {
	case keymap.ModeGuide:
		ch, err := m.registry.New(m.ctx, e.Name)
		return m.switchChannel(ch, err)

	case keymap.ModeSendToChannel:
		entries := m.channel.Results(m.channel.ResultCount(), 0)
		ch, err := m.registry.Pipe(m.ctx, e.Name, entries)
		return m.switchChannel(ch, err)
	}

	m.result = e.Output()
	m.record(e)
	m.shutdown()
	return m, tea.Quit
}

// switchChannel replaces the browsed channel and returns to channel mode.
// On error the guide stays open and the error is shown in the header.
func (m Model) switchChannel(ch channel.Channel, err error) (tea.Model, tea.Cmd) {
	if err != nil {
		m.err = err
		m.logger.Warn("failed to open channel", "error", err)
		return m, nil
	}

	m.closeGuide()
	m.channel.Shutdown()
	m.channel = ch
	m.err = nil
	m.results.ResetSelection()
	m.results.ResetInput()
	m.previewID++
	m.previewFor = ""
	m.preview.SetContent("")
	m.logger.Info("channel opened", "channel", ch.Name())
	cmd := tea.Batch(m.startTick(), m.requestPreview())
	return m, cmd
}

// openGuide lists channels for mode and starts with the first one selected.
func (m *Model) openGuide(mode keymap.Mode) tea.Cmd {
	if m.registry == nil {
		return nil
	}
	if m.guideCh != nil {
		m.guideCh.Shutdown()
	}
	if mode == keymap.ModeSendToChannel {
		m.guideCh = channel.NewPipeGuide(m.ctx, m.registry, m.logger)
	} else {
		m.guideCh = channel.NewGuide(m.ctx, m.registry, m.logger)
	}

	m.guide = New()
	if m.inverted {
		m.guide = m.guide.Inverted()
	}
	m.guide.ResetSelection()
	m.mode = mode
	m.err = nil
	m.resize()
	return m.startTick()
}

func (m *Model) closeGuide() {
	if m.guideCh != nil {
		m.guideCh.Shutdown()
		m.guideCh = nil
	}
	m.mode = keymap.ModeChannel
	m.err = nil
	m.resize()
}

func (m *Model) shutdown() {
	m.channel.Shutdown()
	if m.guideCh != nil {
		m.guideCh.Shutdown()
	}
}

// record stores the selection in history. Failures are logged only.
func (m *Model) record(e channel.Entry) {
	if m.recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(m.ctx, recordTimeout)
	defer cancel()
	if err := m.recorder.RecordSelection(ctx, m.channel.Name(), e.Output()); err != nil {
		m.logger.Warn("failed to record selection", "channel", m.channel.Name(), "error", err)
	}
}

// active returns the channel and picker of the current mode.
func (m *Model) active() (channel.Channel, *Picker) {
	if m.mode == keymap.ModeChannel || m.guideCh == nil {
		return m.channel, &m.results
	}
	return m.guideCh, &m.guide
}

func (m *Model) selectedEntry() (channel.Entry, bool) {
	ch, p := m.active()
	i, ok := p.Selected()
	if !ok {
		return channel.Entry{}, false
	}
	return ch.Get(i)
}

func (m *Model) loading() bool {
	return m.channel.Running() || (m.guideCh != nil && m.guideCh.Running())
}

// startTick schedules a tickMsg unless one is already pending.
func (m *Model) startTick() tea.Cmd {
	if m.ticking {
		return nil
	}
	m.ticking = true
	return tea.Tick(m.tick, func(time.Time) tea.Msg { return tickMsg{} })
}

// handleTick picks up results that arrived since the last frame.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	m.ticking = false
	m.frame++

	ch, p := m.active()
	if _, ok := p.Selected(); !ok && ch.ResultCount() > 0 {
		p.ResetSelection()
	}

	cmds := []tea.Cmd{m.requestPreview()}
	if m.loading() {
		cmds = append(cmds, m.startTick())
	}
	return m, tea.Batch(cmds...)
}

// requestPreview returns a command rendering the preview of the selected
// entry, or nil when the pane is hidden or already shows it.
func (m *Model) requestPreview() tea.Cmd {
	if !m.showPreview || m.mode != keymap.ModeChannel {
		return nil
	}
	e, ok := m.selectedEntry()
	if !ok || e.Name == m.previewFor {
		return nil
	}

	m.previewID++
	m.previewFor = e.Name
	id := m.previewID
	ch := m.channel
	ctx := m.ctx
	return func() tea.Msg {
		content, err := ch.Preview(ctx, e)
		return previewMsg{id: id, entry: e.Name, content: content, err: err}
	}
}

func (m Model) handlePreview(msg previewMsg) (tea.Model, tea.Cmd) {
	if msg.id != m.previewID {
		return m, nil // Selection moved on; ignore.
	}
	content := msg.content
	if msg.err != nil {
		m.logger.Debug("preview failed", "entry", msg.entry, "error", msg.err)
		content = errorStyle.Render(msg.err.Error())
	}
	m.preview.SetContent(content)
	m.preview.GotoTop()
	return m, nil
}

// --- Layout ---

// listRows returns the number of visible result rows.
func (m Model) listRows() int {
	h := m.height
	if h <= 0 {
		h = 24 // Sensible default before first WindowSizeMsg
	}
	rows := h - chromeRows - m.helpRows()
	if rows < 1 {
		rows = 1
	}
	return rows
}

// navHeight is the highest relative index a row can have.
func (m Model) navHeight() int {
	return m.listRows() - 1
}

func (m Model) helpRows() int {
	if !m.showHelp {
		return 0
	}
	rows, err := help.Rows(m.mode, m.keymap)
	if err != nil {
		return 1
	}
	return len(rows)
}

func (m Model) previewVisible() bool {
	return m.showPreview && m.mode == keymap.ModeChannel && m.width >= minPreviewWidth
}

func (m Model) listWidth() int {
	w := m.width
	if w <= 0 {
		w = 80
	}
	if m.previewVisible() {
		return w / 2
	}
	return w
}

// resize fits the preview pane and keeps relative selections inside the
// window after it shrinks.
func (m *Model) resize() {
	rows := m.listRows()
	m.preview.Height = rows
	m.preview.Width = max(m.width-m.listWidth()-1, 0)

	for _, p := range []*Picker{&m.results, &m.guide} {
		if rel, ok := p.RelativeSelected(); ok && rel > rows-1 {
			p.RelativeSelect(rows - 1)
		}
	}
}

// --- View rendering ---

var (
	headerStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62"))
	selectedStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	normalStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	matchStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	matchSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	queryStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	separatorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

// View implements tea.Model.
func (m Model) View() string {
	ch, p := m.active()
	rows := m.listRows()

	body := m.viewList(ch, p, rows)
	if m.previewVisible() {
		list := lipgloss.NewStyle().Width(m.listWidth()).Height(rows).MaxHeight(rows).Render(body)
		sep := separatorStyle.Render(strings.TrimSuffix(strings.Repeat("│\n", rows), "\n"))
		body = lipgloss.JoinHorizontal(lipgloss.Top, list, sep, m.preview.View())
	}

	header := m.viewHeader(ch)
	query := queryStyle.Render("> ") + p.Input().View()

	var parts []string
	if m.inverted {
		parts = []string{body, header, query}
	} else {
		parts = []string{query, header, body}
	}
	if m.showHelp {
		parts = append(parts, m.viewHelp())
	}
	return strings.Join(parts, "\n")
}

// viewHeader renders the title, result counts and loading spinner.
func (m Model) viewHeader(ch channel.Channel) string {
	title := ch.Name()
	switch m.mode {
	case keymap.ModeGuide:
		title = "channels"
	case keymap.ModeSendToChannel:
		title = "send to"
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(" " + title + " "))
	b.WriteString(" ")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%d/%d", ch.ResultCount(), ch.TotalCount())))
	if ch.Running() {
		b.WriteString(" ")
		b.WriteString(queryStyle.Render(spinnerFrames[m.frame%len(spinnerFrames)]))
	}
	if m.err != nil {
		b.WriteString("  ")
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
	}
	return b.String()
}

// viewList renders the window of results starting at the picker's offset.
// Inverted pickers list the first result at the bottom.
//
// The highlighted row is the selection's position in the window. The
// relative index can run past it when the list is shorter than the window,
// e.g. right after wrapping to the last entry.
func (m Model) viewList(ch channel.Channel, p *Picker, rows int) string {
	offset := p.Offset()
	entries := ch.Results(rows, offset)

	var lines []string
	if len(entries) == 0 {
		msg := "No matches"
		if ch.Running() {
			msg = "Loading..."
		}
		lines = []string{dimStyle.Render(msg)}
	} else {
		sel, hasSel := p.Selected()
		width := m.listWidth() - 2
		lines = make([]string, len(entries))
		for i, e := range entries {
			if hasSel && offset+i == sel {
				lines[i] = selectedStyle.Render("> ") + renderEntry(e.Name, e.Matches, width, selectedStyle, matchSelectedStyle)
			} else {
				lines[i] = "  " + renderEntry(e.Name, e.Matches, width, normalStyle, matchStyle)
			}
		}
	}

	if p.IsInverted() {
		reversed := make([]string, rows)
		for i, l := range lines {
			reversed[rows-1-i] = l
		}
		lines = reversed
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewHelp() string {
	t, err := help.Table(m.mode, m.keymap)
	if err != nil {
		return errorStyle.Render(err.Error())
	}
	return t.String()
}
