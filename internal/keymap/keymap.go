// Package keymap binds keys to picker actions per mode.
package keymap

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Mode is the picker screen a binding applies to.
type Mode string

const (
	ModeChannel       Mode = "channel"         // Browsing a channel's results
	ModeGuide         Mode = "guide"           // Choosing a channel
	ModeSendToChannel Mode = "send_to_channel" // Choosing where to send results
)

// Modes lists every mode.
var Modes = []Mode{ModeChannel, ModeGuide, ModeSendToChannel}

// Action is something a key can trigger.
type Action string

const (
	SelectNextEntry           Action = "select_next_entry"
	SelectPrevEntry           Action = "select_prev_entry"
	SelectEntry               Action = "select_entry"
	ScrollPreviewHalfPageUp   Action = "scroll_preview_half_page_up"
	ScrollPreviewHalfPageDown Action = "scroll_preview_half_page_down"
	SendToChannel             Action = "send_to_channel"
	ToggleChannelSelection    Action = "toggle_channel_selection"
	ToggleHelp                Action = "toggle_help"
	TogglePreview             Action = "toggle_preview"
	Quit                      Action = "quit"
)

// Actions lists every action in lookup priority order.
var Actions = []Action{
	Quit,
	SelectEntry,
	SelectNextEntry,
	SelectPrevEntry,
	ScrollPreviewHalfPageUp,
	ScrollPreviewHalfPageDown,
	SendToChannel,
	ToggleChannelSelection,
	ToggleHelp,
	TogglePreview,
}

var descriptions = map[Action]string{
	SelectNextEntry:           "next entry",
	SelectPrevEntry:           "previous entry",
	SelectEntry:               "select entry",
	ScrollPreviewHalfPageUp:   "preview up",
	ScrollPreviewHalfPageDown: "preview down",
	SendToChannel:             "send results to",
	ToggleChannelSelection:    "switch channels",
	ToggleHelp:                "help",
	TogglePreview:             "preview",
	Quit:                      "quit",
}

// Keymap holds the bindings of every mode.
type Keymap map[Mode]map[Action]key.Binding

func binding(a Action, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(strings.Join(keys, "/"), descriptions[a]))
}

// Default returns the built-in bindings.
func Default() Keymap {
	nav := map[Action]key.Binding{
		SelectNextEntry:        binding(SelectNextEntry, "down", "ctrl+n", "ctrl+j"),
		SelectPrevEntry:        binding(SelectPrevEntry, "up", "ctrl+p", "ctrl+k"),
		SelectEntry:            binding(SelectEntry, "enter"),
		ToggleChannelSelection: binding(ToggleChannelSelection, "ctrl+t"),
		ToggleHelp:             binding(ToggleHelp, "ctrl+g"),
		Quit:                   binding(Quit, "esc", "ctrl+c"),
	}

	channel := clone(nav)
	channel[ScrollPreviewHalfPageUp] = binding(ScrollPreviewHalfPageUp, "pgup", "ctrl+u")
	channel[ScrollPreviewHalfPageDown] = binding(ScrollPreviewHalfPageDown, "pgdown", "ctrl+d")
	channel[SendToChannel] = binding(SendToChannel, "ctrl+s")
	channel[TogglePreview] = binding(TogglePreview, "ctrl+o")

	return Keymap{
		ModeChannel:       channel,
		ModeGuide:         clone(nav),
		ModeSendToChannel: clone(nav),
	}
}

func clone(m map[Action]key.Binding) map[Action]key.Binding {
	out := make(map[Action]key.Binding, len(m))
	for a, b := range m {
		out[a] = b
	}
	return out
}

// FromConfig returns the default bindings with overrides applied. Overrides
// map a mode name to action names and their keys; an empty key list
// unbinds the action.
func FromConfig(overrides map[string]map[string][]string) (Keymap, error) {
	km := Default()
	for modeName, actions := range overrides {
		mode := Mode(modeName)
		bindings, ok := km[mode]
		if !ok {
			return nil, fmt.Errorf("keybindings: unknown mode %q", modeName)
		}
		for actionName, keys := range actions {
			a := Action(actionName)
			if !isAction(a) {
				return nil, fmt.Errorf("keybindings.%s: unknown action %q", modeName, actionName)
			}
			if len(keys) == 0 {
				delete(bindings, a)
				continue
			}
			bindings[a] = binding(a, keys...)
		}
	}
	return km, nil
}

func isAction(a Action) bool {
	for _, known := range Actions {
		if a == known {
			return true
		}
	}
	return false
}

// Lookup returns the action bound to msg in mode.
func (k Keymap) Lookup(mode Mode, msg tea.KeyMsg) (Action, bool) {
	bindings := k[mode]
	for _, a := range Actions {
		b, ok := bindings[a]
		if ok && key.Matches(msg, b) {
			return a, true
		}
	}
	return "", false
}

// HasMode reports whether mode has any bindings table.
func (k Keymap) HasMode(mode Mode) bool {
	_, ok := k[mode]
	return ok
}

// KeysFor returns the keys bound to action in mode, formatted for display.
func (k Keymap) KeysFor(mode Mode, action Action) []string {
	b, ok := k[mode][action]
	if !ok {
		return nil
	}
	keys := b.Keys()
	out := make([]string, len(keys))
	for i, s := range keys {
		out[i] = displayKey(s)
	}
	return out
}

func displayKey(k string) string {
	switch k {
	case "up":
		return "↑"
	case "down":
		return "↓"
	case "left":
		return "←"
	case "right":
		return "→"
	case " ":
		return "space"
	default:
		return k
	}
}
