// Package input provides the editable query line shown above (or below) a
// result list.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Input is a single-line query editor. It wraps a textinput.Model and
// remembers whether the last update changed the text, so callers only
// re-run searches when the query actually moved.
type Input struct {
	model   textinput.Model
	changed bool
}

// New creates a focused, empty Input.
func New(placeholder string) Input {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = placeholder
	ti.Focus()
	return Input{model: ti}
}

// Reset clears the text and moves the cursor to the start.
func (i *Input) Reset() {
	i.changed = i.model.Value() != ""
	i.model.Reset()
}

// Value returns the current text.
func (i Input) Value() string {
	return i.model.Value()
}

// SetValue replaces the text and moves the cursor to the end.
func (i *Input) SetValue(s string) {
	i.changed = s != i.model.Value()
	i.model.SetValue(s)
	i.model.CursorEnd()
}

// Cursor returns the cursor position in runes.
func (i Input) Cursor() int {
	return i.model.Position()
}

// Changed reports whether the most recent Update, SetValue or Reset modified
// the text.
func (i Input) Changed() bool {
	return i.changed
}

// Focus gives the input keyboard focus.
func (i *Input) Focus() tea.Cmd {
	return i.model.Focus()
}

// Update forwards msg to the underlying editor.
func (i *Input) Update(msg tea.Msg) tea.Cmd {
	before := i.model.Value()
	var cmd tea.Cmd
	i.model, cmd = i.model.Update(msg)
	i.changed = i.model.Value() != before
	return cmd
}

// View renders the editor line.
func (i Input) View() string {
	return i.model.View()
}
