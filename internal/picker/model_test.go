package picker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runger/lookout/internal/channel"
	"github.com/runger/lookout/internal/config"
	"github.com/runger/lookout/internal/keymap"
	"github.com/runger/lookout/internal/logging"
)

// --- Helpers ---

// linesChannel returns a fully loaded channel over lines.
func linesChannel(t *testing.T, name string, lines ...string) *channel.Streaming {
	t.Helper()
	src := channel.NewLines(strings.NewReader(strings.Join(lines, "\n")))
	ch := channel.NewStreaming(context.Background(), name, src, logging.Discard())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, ch.Wait(ctx))
	return ch
}

// pipeChannel returns a channel that keeps loading until the writer is closed.
func pipeChannel(t *testing.T, name string) (*channel.Streaming, *io.PipeWriter) {
	t.Helper()
	pr, pw := io.Pipe()
	ch := channel.NewStreaming(context.Background(), name, channel.NewLines(pr), logging.Discard())
	t.Cleanup(func() {
		_ = pw.Close()
		ch.Shutdown()
	})
	return ch, pw
}

type fakeRecorder struct {
	channel string
	entry   string
	calls   int
	err     error
}

func (r *fakeRecorder) RecordSelection(_ context.Context, channel, entry string) error {
	r.calls++
	r.channel = channel
	r.entry = entry
	return r.err
}

// testRegistry registers alpha and beta, which accept piped results, and
// broken, which fails to open.
func testRegistry(t *testing.T) *channel.Registry {
	t.Helper()
	r := channel.NewRegistry()
	for _, name := range []string{"alpha", "beta"} {
		name := name
		require.NoError(t, r.Register(channel.Def{
			Name:        name,
			Description: name + " channel",
			New: func(context.Context) (channel.Channel, error) {
				return linesChannel(t, name, name+"-1", name+"-2"), nil
			},
			Pipe: func(_ context.Context, entries []channel.Entry) (channel.Channel, error) {
				lines := make([]string, len(entries))
				for i, e := range entries {
					lines[i] = e.Name
				}
				return linesChannel(t, name, lines...), nil
			},
		}))
	}
	require.NoError(t, r.Register(channel.Def{
		Name: "broken",
		New: func(context.Context) (channel.Channel, error) {
			return nil, errors.New("boom")
		},
	}))
	return r
}

func newTestModel(t *testing.T, ch channel.Channel, opts Options) Model {
	t.Helper()
	m := NewModel(context.Background(), ch, opts)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 8})
	return m
}

// newLoadedModel returns a model whose first entry is selected.
func newLoadedModel(t *testing.T, opts Options, lines ...string) Model {
	t.Helper()
	m := newTestModel(t, linesChannel(t, "test", lines...), opts)
	m, _ = update(t, m, tickMsg{})
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	result, cmd := m.Update(msg)
	return result.(Model), cmd
}

func press(t *testing.T, m Model, kt tea.KeyType) (Model, tea.Cmd) {
	t.Helper()
	return update(t, m, tea.KeyMsg{Type: kt})
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return m
}

// runCmd executes a tea.Cmd synchronously and returns the resulting message.
func runCmd(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	return cmd()
}

// drainBatch runs a batch cmd and feeds all resulting messages into the model,
// returning the final model state and any remaining cmd from the last message.
func drainBatch(t *testing.T, m Model, batchCmd tea.Cmd) (Model, tea.Cmd) {
	t.Helper()
	msg := runCmd(batchCmd)
	if msg == nil {
		return m, nil
	}
	if batch, ok := msg.(tea.BatchMsg); ok {
		var lastCmd tea.Cmd
		for _, cmd := range batch {
			sub := runCmd(cmd)
			if sub == nil {
				continue
			}
			m, lastCmd = update(t, m, sub)
		}
		return m, lastCmd
	}
	return update(t, m, msg)
}

func selected(t *testing.T, p Picker) (int, int) {
	t.Helper()
	sel, ok := p.Selected()
	require.True(t, ok, "selection should be set")
	rel, ok := p.RelativeSelected()
	require.True(t, ok, "relative selection should be set")
	return sel, rel
}

func view(m Model) string {
	return channel.StripANSI(m.View())
}

// previewOf runs cmd, which may be a batch, and returns its previewMsg.
func previewOf(t *testing.T, cmd tea.Cmd) previewMsg {
	t.Helper()
	msg := runCmd(cmd)
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			if pm, ok := runCmd(c).(previewMsg); ok {
				return pm
			}
		}
	}
	pm, ok := msg.(previewMsg)
	require.True(t, ok, "expected a preview, got %T", msg)
	return pm
}

func waitGuide(t *testing.T, m Model) {
	t.Helper()
	s, ok := m.guideCh.(*channel.Streaming)
	require.True(t, ok)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Wait(ctx))
}

// --- Init and ticks ---

func TestInit_SchedulesTick(t *testing.T) {
	m := newTestModel(t, linesChannel(t, "test", "a", "b", "c"), Options{})

	m, cmd := drainBatch(t, m, m.Init())
	assert.True(t, m.ticking)
	assert.NotNil(t, cmd)

	_, ok := m.results.Selected()
	assert.False(t, ok, "nothing is selected before the first tick")
}

func TestTick_SelectsFirstResult(t *testing.T) {
	m := newTestModel(t, linesChannel(t, "test", "a", "b", "c"), Options{})
	m.ticking = true

	m, cmd := update(t, m, tickMsg{})
	sel, rel := selected(t, m.results)
	assert.Equal(t, 0, sel)
	assert.Equal(t, 0, rel)
	assert.False(t, m.ticking, "loaded channels stop ticking")
	assert.Nil(t, cmd)
	assert.Equal(t, 1, m.frame)
}

func TestTick_KeepsTickingWhileLoading(t *testing.T) {
	ch, pw := pipeChannel(t, "slow")
	m := newTestModel(t, ch, Options{TickInterval: time.Millisecond})

	m, cmd := update(t, m, tickMsg{})
	assert.True(t, m.ticking)
	assert.NotNil(t, cmd)
	_, ok := m.results.Selected()
	assert.False(t, ok, "no results yet")
	assert.Contains(t, view(m), "Loading...")
	assert.Contains(t, view(m), spinnerFrames[1])

	_, err := pw.Write([]byte("first\n"))
	require.NoError(t, err)
	require.Eventually(t, func() bool { return ch.TotalCount() == 1 }, 5*time.Second, 5*time.Millisecond)

	m, _ = update(t, m, tickMsg{})
	sel, _ := selected(t, m.results)
	assert.Equal(t, 0, sel)
	assert.Contains(t, view(m), "> first")
}

// --- Navigation ---

func TestNavigation_WrapsAround(t *testing.T) {
	m := newLoadedModel(t, Options{}, "alpha", "bravo", "charlie")

	for i := 0; i < 3; i++ {
		m, _ = press(t, m, tea.KeyDown)
	}
	sel, rel := selected(t, m.results)
	assert.Equal(t, 0, sel)
	assert.Equal(t, 0, rel)

	m, _ = press(t, m, tea.KeyUp)
	sel, rel = selected(t, m.results)
	assert.Equal(t, 2, sel)
	assert.Equal(t, m.navHeight(), rel, "pinned to the bottom of the window")
	assert.Equal(t, 0, m.results.Offset())
	assert.Contains(t, view(m), "> charlie")
}

func TestNavigation_WrapsAroundBottomUp(t *testing.T) {
	m := newLoadedModel(t, Options{Layout: config.LayoutBottomUp}, "alpha", "bravo", "charlie")

	m, _ = press(t, m, tea.KeyDown)
	sel, _ := selected(t, m.results)
	assert.Equal(t, 2, sel)
	assert.Contains(t, view(m), "> charlie")
}

// highlighted returns the rendered list rows carrying the selection marker.
// The query line also starts with "> " and is left out.
func highlighted(m Model) []string {
	lines := strings.Split(view(m), "\n")
	if m.inverted {
		lines = lines[:len(lines)-1]
	} else {
		lines = lines[1:]
	}
	var rows []string
	for _, line := range lines {
		if strings.HasPrefix(line, "> ") {
			rows = append(rows, strings.TrimRight(line, " "))
		}
	}
	return rows
}

func TestNavigation_ShortListAlwaysHighlightsSelection(t *testing.T) {
	entries := []string{"alpha", "bravo", "charlie"}
	keys := []tea.KeyType{
		tea.KeyUp, tea.KeyUp, tea.KeyDown, tea.KeyDown, tea.KeyDown,
		tea.KeyUp, tea.KeyUp, tea.KeyUp, tea.KeyUp, tea.KeyDown,
	}

	for _, layout := range []string{config.LayoutTopDown, config.LayoutBottomUp} {
		t.Run(layout, func(t *testing.T) {
			m := newLoadedModel(t, Options{Layout: layout}, entries...)
			require.Greater(t, m.navHeight(), len(entries)-1, "list shorter than the window")

			for i, k := range keys {
				m, _ = press(t, m, k)
				sel, _ := selected(t, m.results)
				rows := highlighted(m)
				require.Len(t, rows, 1, "step %d", i)
				assert.Equal(t, "> "+entries[sel], rows[0], "step %d", i)
			}
		})
	}
}

func TestNavigation_WindowScrolls(t *testing.T) {
	m := newLoadedModel(t, Options{}, "alpha", "bravo", "charlie", "delta")
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 5}) // 3 rows
	require.Equal(t, 2, m.navHeight())

	for i := 0; i < 3; i++ {
		m, _ = press(t, m, tea.KeyDown)
	}
	sel, rel := selected(t, m.results)
	assert.Equal(t, 3, sel)
	assert.Equal(t, 2, rel)
	assert.Equal(t, 1, m.results.Offset())

	out := view(m)
	assert.NotContains(t, out, "alpha")
	assert.Contains(t, out, "  bravo")
	assert.Contains(t, out, "> delta")

	m, _ = press(t, m, tea.KeyDown)
	out = view(m)
	assert.Contains(t, out, "> alpha")
	assert.NotContains(t, out, "delta")
}

func TestNavigation_EmptyChannel(t *testing.T) {
	m := newLoadedModel(t, Options{})

	m, _ = press(t, m, tea.KeyDown)
	_, ok := m.results.Selected()
	assert.False(t, ok)

	m, cmd := press(t, m, tea.KeyEnter)
	assert.Nil(t, cmd, "nothing to select")
	assert.Empty(t, m.Result())
	assert.Contains(t, view(m), "No matches")
}

func TestNavigation_CtrlNAndCtrlP(t *testing.T) {
	m := newLoadedModel(t, Options{}, "a", "b")

	m, _ = press(t, m, tea.KeyCtrlN)
	sel, _ := selected(t, m.results)
	assert.Equal(t, 1, sel)

	m, _ = press(t, m, tea.KeyCtrlP)
	sel, _ = selected(t, m.results)
	assert.Equal(t, 0, sel)
}

// --- Query ---

func TestQuery_FiltersAndResetsSelection(t *testing.T) {
	m := newLoadedModel(t, Options{}, "alpha", "bravo", "charlie")
	m, _ = press(t, m, tea.KeyDown)

	m = typeText(t, m, "chr")
	assert.Equal(t, "chr", m.results.Input().Value())
	assert.Equal(t, 1, m.channel.ResultCount())
	sel, rel := selected(t, m.results)
	assert.Equal(t, 0, sel)
	assert.Equal(t, 0, rel)
	assert.Contains(t, view(m), "1/3")

	m, _ = press(t, m, tea.KeyEnter)
	assert.Equal(t, "charlie", m.Result())
}

func TestQuery_Initial(t *testing.T) {
	ch := linesChannel(t, "test", "alpha", "bravo")
	m := newTestModel(t, ch, Options{Query: "brv"})

	assert.Equal(t, "brv", m.results.Input().Value())
	assert.Equal(t, 1, ch.ResultCount())
}

func TestQuery_BackspaceWidensResults(t *testing.T) {
	m := newLoadedModel(t, Options{}, "alpha", "bravo")
	m = typeText(t, m, "br")
	require.Equal(t, 1, m.channel.ResultCount())

	m, _ = press(t, m, tea.KeyBackspace)
	m, _ = press(t, m, tea.KeyBackspace)
	assert.Equal(t, 2, m.channel.ResultCount())
}

// --- Selection and quitting ---

func TestSelectEntry_RecordsSelection(t *testing.T) {
	rec := &fakeRecorder{}
	m := newLoadedModel(t, Options{Recorder: rec}, "alpha", "bravo")
	m, _ = press(t, m, tea.KeyDown)

	m, cmd := press(t, m, tea.KeyEnter)
	assert.Equal(t, "bravo", m.Result())
	assert.False(t, m.IsCancelled())
	assert.IsType(t, tea.QuitMsg{}, runCmd(cmd))

	assert.Equal(t, 1, rec.calls)
	assert.Equal(t, "test", rec.channel)
	assert.Equal(t, "bravo", rec.entry)
}

func TestSelectEntry_RecorderErrorStillSelects(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("disk full")}
	m := newLoadedModel(t, Options{Recorder: rec}, "alpha")

	m, cmd := press(t, m, tea.KeyEnter)
	assert.Equal(t, "alpha", m.Result())
	assert.IsType(t, tea.QuitMsg{}, runCmd(cmd))
}

func TestQuit_Cancels(t *testing.T) {
	for _, kt := range []tea.KeyType{tea.KeyEsc, tea.KeyCtrlC} {
		t.Run(kt.String(), func(t *testing.T) {
			rec := &fakeRecorder{}
			m := newLoadedModel(t, Options{Recorder: rec}, "alpha")

			m, cmd := press(t, m, kt)
			assert.True(t, m.IsCancelled())
			assert.Empty(t, m.Result())
			assert.IsType(t, tea.QuitMsg{}, runCmd(cmd))
			assert.Zero(t, rec.calls)
		})
	}
}

func TestQuit_StopsLoadingChannel(t *testing.T) {
	ch, pw := pipeChannel(t, "slow")
	m := newTestModel(t, ch, Options{})

	_, _ = press(t, m, tea.KeyEsc)

	// Lines read after shutdown are dropped.
	_, err := pw.Write([]byte("late\n"))
	require.NoError(t, err)
	require.Eventually(t, func() bool { return !ch.Running() }, 5*time.Second, 5*time.Millisecond)
	assert.Zero(t, ch.TotalCount())
}

// --- Channel guide ---

func TestGuide_SwitchesChannel(t *testing.T) {
	m := newLoadedModel(t, Options{Registry: testRegistry(t)}, "one", "two")
	m = typeText(t, m, "tw")

	m, cmd := press(t, m, tea.KeyCtrlT)
	assert.NotNil(t, cmd, "guide loading starts a tick")
	assert.Equal(t, keymap.ModeGuide, m.mode)
	waitGuide(t, m)

	sel, _ := selected(t, m.guide)
	assert.Equal(t, 0, sel)
	out := view(m)
	assert.Contains(t, out, "channels")
	assert.Contains(t, out, "> alpha")
	assert.Contains(t, out, "broken")

	m, _ = press(t, m, tea.KeyDown)
	m, _ = press(t, m, tea.KeyEnter)

	assert.Equal(t, keymap.ModeChannel, m.mode)
	assert.Nil(t, m.guideCh)
	assert.Equal(t, "beta", m.ChannelName())
	assert.Empty(t, m.results.Input().Value(), "query is cleared")
	sel, rel := selected(t, m.results)
	assert.Equal(t, 0, sel)
	assert.Equal(t, 0, rel)
	assert.Contains(t, view(m), "> beta-1")
}

func TestGuide_ToggleBack(t *testing.T) {
	m := newLoadedModel(t, Options{Registry: testRegistry(t)}, "one")

	m, _ = press(t, m, tea.KeyCtrlT)
	require.Equal(t, keymap.ModeGuide, m.mode)
	m, _ = press(t, m, tea.KeyCtrlT)

	assert.Equal(t, keymap.ModeChannel, m.mode)
	assert.Nil(t, m.guideCh)
	assert.Equal(t, "test", m.ChannelName())
	assert.Contains(t, view(m), "> one")
}

func TestGuide_QueryFiltersChannels(t *testing.T) {
	m := newLoadedModel(t, Options{Registry: testRegistry(t)}, "one")
	m, _ = press(t, m, tea.KeyCtrlT)
	waitGuide(t, m)

	m = typeText(t, m, "bet")
	assert.Equal(t, "bet", m.guide.Input().Value())
	assert.Empty(t, m.results.Input().Value(), "channel query is untouched")

	m, _ = press(t, m, tea.KeyEnter)
	assert.Equal(t, "beta", m.ChannelName())
}

func TestGuide_OpenErrorKeepsGuide(t *testing.T) {
	m := newLoadedModel(t, Options{Registry: testRegistry(t)}, "one")
	m, _ = press(t, m, tea.KeyCtrlT)
	waitGuide(t, m)

	m = typeText(t, m, "broken")
	m, cmd := press(t, m, tea.KeyEnter)
	assert.Nil(t, cmd)
	assert.Equal(t, keymap.ModeGuide, m.mode)
	assert.EqualError(t, m.err, "boom")
	assert.Contains(t, view(m), "Error: boom")
	assert.Equal(t, "test", m.ChannelName())
}

func TestGuide_WithoutRegistry(t *testing.T) {
	m := newLoadedModel(t, Options{}, "one")

	m, cmd := press(t, m, tea.KeyCtrlT)
	assert.Nil(t, cmd)
	assert.Equal(t, keymap.ModeChannel, m.mode)
}

func TestSendToChannel_PipesResults(t *testing.T) {
	m := newLoadedModel(t, Options{Registry: testRegistry(t)}, "one", "two", "three")
	m = typeText(t, m, "t")
	require.Equal(t, 2, m.channel.ResultCount())

	m, _ = press(t, m, tea.KeyCtrlS)
	assert.Equal(t, keymap.ModeSendToChannel, m.mode)
	waitGuide(t, m)
	assert.Equal(t, 2, m.guideCh.ResultCount(), "broken cannot receive results")
	assert.Contains(t, view(m), "send to")

	m, _ = press(t, m, tea.KeyEnter)
	assert.Equal(t, keymap.ModeChannel, m.mode)
	assert.Equal(t, "alpha", m.ChannelName())

	var got []string
	for _, e := range m.channel.Results(10, 0) {
		got = append(got, e.Name)
	}
	assert.ElementsMatch(t, []string{"two", "three"}, got)
}

// --- Preview ---

func TestPreview_DropsStaleResults(t *testing.T) {
	m := newTestModel(t, linesChannel(t, "test", "alpha", "bravo"), Options{ShowPreview: true})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 8})
	require.True(t, m.previewVisible())

	m, cmd := update(t, m, tickMsg{})
	first := previewOf(t, cmd)
	assert.Equal(t, "alpha", first.entry)

	m, cmd = press(t, m, tea.KeyDown)
	second := previewOf(t, cmd)
	assert.Equal(t, "bravo", second.entry)

	m, _ = update(t, m, first)
	assert.NotContains(t, m.preview.View(), "alpha")

	m, _ = update(t, m, second)
	assert.Contains(t, m.preview.View(), "bravo")
	assert.Contains(t, view(m), "│")
}

func TestPreview_NotRequestedTwice(t *testing.T) {
	m := newLoadedModel(t, Options{ShowPreview: true}, "alpha", "bravo")

	m, cmd := press(t, m, tea.KeyDown)
	require.NotNil(t, cmd)
	m, cmd = press(t, m, tea.KeyDown)
	require.NotNil(t, cmd, "alpha again")

	m, cmd = update(t, m, tickMsg{})
	assert.Nil(t, cmd, "alpha is already previewed")
	_ = m
}

func TestPreview_Error(t *testing.T) {
	m := newLoadedModel(t, Options{ShowPreview: true}, "alpha")
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 8})
	m, _ = update(t, m, previewMsg{id: m.previewID, entry: "alpha", err: errors.New("no such file")})
	assert.Contains(t, channel.StripANSI(m.preview.View()), "no such file")
}

func TestPreview_Toggle(t *testing.T) {
	m := newLoadedModel(t, Options{}, "alpha")
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 8})
	assert.False(t, m.previewVisible())

	m, cmd := press(t, m, tea.KeyCtrlO)
	assert.True(t, m.previewVisible())
	assert.Equal(t, "alpha", previewOf(t, cmd).entry)
}

func TestPreview_ScrollHalfPage(t *testing.T) {
	m := newLoadedModel(t, Options{ShowPreview: true}, "alpha")
	lines := make([]string, 50)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i)
	}
	m.preview.SetContent(strings.Join(lines, "\n"))
	require.Equal(t, 6, m.preview.Height)

	m, _ = press(t, m, tea.KeyPgDown)
	assert.Equal(t, 3, m.preview.YOffset)
	m, _ = press(t, m, tea.KeyPgDown)
	assert.Equal(t, 6, m.preview.YOffset)
	m, _ = press(t, m, tea.KeyPgUp)
	assert.Equal(t, 3, m.preview.YOffset)
}

// --- Layout ---

func TestView_TopDown(t *testing.T) {
	m := newLoadedModel(t, Options{}, "alpha", "bravo")

	lines := strings.Split(view(m), "\n")
	require.GreaterOrEqual(t, len(lines), 4)
	assert.True(t, strings.HasPrefix(lines[0], "> "), "query first")
	assert.Contains(t, lines[1], "test")
	assert.Contains(t, lines[1], "2/2")
	assert.Equal(t, "> alpha", strings.TrimRight(lines[2], " "))
	assert.Equal(t, "  bravo", strings.TrimRight(lines[3], " "))
}

func TestView_BottomUp(t *testing.T) {
	m := newLoadedModel(t, Options{Layout: config.LayoutBottomUp}, "alpha", "bravo", "charlie")
	assert.True(t, m.results.IsInverted())

	lines := strings.Split(view(m), "\n")
	require.Len(t, lines, 8) // 6 rows, header, query
	assert.True(t, strings.HasPrefix(lines[7], "> "), "query last")
	assert.Contains(t, lines[6], "3/3")
	assert.Equal(t, "> alpha", strings.TrimRight(lines[5], " "))
	assert.Equal(t, "  bravo", strings.TrimRight(lines[4], " "))
	assert.Equal(t, "  charlie", strings.TrimRight(lines[3], " "))

	// Up moves away from the input, towards later results.
	m, _ = press(t, m, tea.KeyUp)
	lines = strings.Split(view(m), "\n")
	assert.Equal(t, "> bravo", strings.TrimRight(lines[4], " "))
}

func TestView_TruncatesLongEntries(t *testing.T) {
	long := strings.Repeat("a", 30) + strings.Repeat("z", 30)
	m := newLoadedModel(t, Options{}, long)

	out := view(m)
	assert.Contains(t, out, "…")
	assert.NotContains(t, out, long)
}

func TestToggleHelp_ShrinksWindow(t *testing.T) {
	lines := make([]string, 10)
	for i := range lines {
		lines[i] = fmt.Sprintf("item-%d", i)
	}
	m := newLoadedModel(t, Options{}, lines...)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 60, Height: 12}) // 10 rows
	for i := 0; i < 8; i++ {
		m, _ = press(t, m, tea.KeyDown)
	}
	sel, rel := selected(t, m.results)
	require.Equal(t, 8, sel)
	require.Equal(t, 8, rel)

	m, _ = press(t, m, tea.KeyCtrlG)
	assert.True(t, m.showHelp)
	assert.Equal(t, 4, m.listRows())

	sel, rel = selected(t, m.results)
	assert.Equal(t, 8, sel)
	assert.Equal(t, 3, rel, "selection stays inside the smaller window")

	out := view(m)
	assert.Contains(t, out, "> item-8")
	assert.Contains(t, out, "Select entry")
	assert.Contains(t, out, "Quit")
}

func TestKeymap_Overrides(t *testing.T) {
	km, err := keymap.FromConfig(map[string]map[string][]string{
		"channel": {"select_next_entry": {"tab"}},
	})
	require.NoError(t, err)
	m := newLoadedModel(t, Options{Keymap: km}, "alpha", "bravo")

	m, _ = press(t, m, tea.KeyTab)
	sel, _ := selected(t, m.results)
	assert.Equal(t, 1, sel)

	m, _ = press(t, m, tea.KeyDown)
	sel, _ = selected(t, m.results)
	assert.Equal(t, 1, sel, "down is no longer bound")
}
