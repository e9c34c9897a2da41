// Package help renders the keybinding table shown in the picker's help panel.
package help

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/runger/lookout/internal/keymap"
)

const noKeybindings = "No keybindings"

var (
	actionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// Row is one help line: a label and the key groups of the actions it
// covers. Each group holds the alternate keys of one action.
type Row struct {
	Label  string
	Groups [][]string
}

type rowDef struct {
	label   string
	actions []keymap.Action
}

var channelRows = []rowDef{
	{"↕ Results navigation", []keymap.Action{keymap.SelectPrevEntry, keymap.SelectNextEntry}},
	{"↕ Preview navigation", []keymap.Action{keymap.ScrollPreviewHalfPageUp, keymap.ScrollPreviewHalfPageDown}},
	{"✓ Select entry", []keymap.Action{keymap.SelectEntry}},
	{"⇉ Send results to", []keymap.Action{keymap.SendToChannel}},
	{"⨀ Switch channels", []keymap.Action{keymap.ToggleChannelSelection}},
	{"⏼ Quit", []keymap.Action{keymap.Quit}},
}

var guideRows = []rowDef{
	{"↕ Results", []keymap.Action{keymap.SelectPrevEntry, keymap.SelectNextEntry}},
	{"Select entry", []keymap.Action{keymap.SelectEntry}},
	{"Switch channels", []keymap.Action{keymap.ToggleChannelSelection}},
	{"Quit", []keymap.Action{keymap.Quit}},
}

// Rows returns the help rows for mode. Send-to-channel mode shares the
// channel layout.
func Rows(mode keymap.Mode, km keymap.Keymap) ([]Row, error) {
	if !km.HasMode(mode) {
		return nil, fmt.Errorf("no keybindings found for mode %q", mode)
	}

	defs := channelRows
	if mode == keymap.ModeGuide {
		defs = guideRows
	}

	rows := make([]Row, 0, len(defs))
	for _, d := range defs {
		groups := make([][]string, 0, len(d.actions))
		for _, a := range d.actions {
			groups = append(groups, km.KeysFor(mode, a))
		}
		rows = append(rows, Row{Label: d.label, Groups: groups})
	}
	return rows, nil
}

// Text returns the unstyled label and keys cells. Empty groups are
// skipped; groups are joined with " / " and alternate keys with ", ".
func (r Row) Text() (label, keys string) {
	parts := make([]string, 0, len(r.Groups))
	for _, g := range r.Groups {
		if len(g) > 0 {
			parts = append(parts, strings.Join(g, ", "))
		}
	}
	if len(parts) == 0 {
		return r.Label, noKeybindings
	}
	return r.Label + ": ", strings.Join(parts, " / ")
}

func (r Row) styled() []string {
	label, keys := r.Text()
	if keys == noKeybindings {
		return []string{label, keys}
	}
	return []string{actionStyle.Render(label), keyStyle.Render(keys)}
}

// Table builds the help table for mode.
func Table(mode keymap.Mode, km keymap.Keymap) (*table.Table, error) {
	rows, err := Rows(mode, km)
	if err != nil {
		return nil, err
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false)
	for _, r := range rows {
		t.Row(r.styled()...)
	}
	return t, nil
}
