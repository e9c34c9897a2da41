package picker

import "github.com/runger/lookout/internal/input"

// None marks an unset cursor.
const None = -1

// Picker tracks the selected entry of a list that is rendered through a
// fixed-height window. It keeps two cursors: the absolute index into the
// full result set and the relative row inside the visible window. The window
// start (Offset) is derived from both and never stored.
//
// Navigation takes the current item count and window height on every call
// because both may change between frames while results stream in.
type Picker struct {
	selected int
	relative int
	inverted bool
	input    input.Input
}

// New creates a Picker with nothing selected and an empty query input.
func New() Picker {
	return Picker{
		selected: None,
		relative: None,
		input:    input.New(""),
	}
}

// Inverted returns a copy of p with next and previous swapped. It is meant to
// be applied once, for lists rendered bottom-up.
func (p Picker) Inverted() Picker {
	p.inverted = !p.inverted
	return p
}

// IsInverted reports whether next and previous are swapped.
func (p Picker) IsInverted() bool {
	return p.inverted
}

// Select sets the absolute selection. Negative values clear it. The index is
// not range checked.
func (p *Picker) Select(index int) {
	p.selected = normalize(index)
}

// RelativeSelect sets the highlighted window row. Negative values clear it.
// The index is not range checked.
func (p *Picker) RelativeSelect(index int) {
	p.relative = normalize(index)
}

// Selected returns the absolute selection.
func (p Picker) Selected() (int, bool) {
	return p.selected, p.selected != None
}

// RelativeSelected returns the highlighted window row.
func (p Picker) RelativeSelected() (int, bool) {
	return p.relative, p.relative != None
}

// ResetSelection moves both cursors back to the top of the list.
func (p *Picker) ResetSelection() {
	p.selected = 0
	p.relative = 0
}

// ResetInput clears the query input.
func (p *Picker) ResetInput() {
	p.input.Reset()
}

// Input returns the query input owned by the picker.
func (p *Picker) Input() *input.Input {
	return &p.input
}

// Offset returns the index of the first visible entry. Unset cursors count
// as zero and the result never goes below zero.
func (p Picker) Offset() int {
	selected := max(p.selected, 0)
	relative := max(p.relative, 0)
	if relative > selected {
		return 0
	}
	return selected - relative
}

// SelectNext moves the selection one entry forward, wrapping to the top.
// height is the number of rows below the first one in the window.
//
// An empty list (total <= 0) leaves both cursors untouched.
func (p *Picker) SelectNext(total, height int) {
	if p.inverted {
		p.retreat(total, height)
		return
	}
	p.advance(total, height)
}

// SelectPrev moves the selection one entry back, wrapping to the bottom.
// It follows the same rules as SelectNext.
func (p *Picker) SelectPrev(total, height int) {
	if p.inverted {
		p.advance(total, height)
		return
	}
	p.retreat(total, height)
}

func (p *Picker) advance(total, height int) {
	if total <= 0 {
		return
	}
	height = max(height, 0)
	selected := max(p.selected, 0)
	relative := max(p.relative, 0)

	p.selected = (selected + 1) % total
	p.relative = min(relative+1, height)
	// Wrapped around: pin the window to the top.
	if p.selected == 0 {
		p.relative = 0
	}
}

func (p *Picker) retreat(total, height int) {
	if total <= 0 {
		return
	}
	height = max(height, 0)
	selected := max(p.selected, 0)
	relative := max(p.relative, 0)

	// selected may be stale if the list shrank since the last call.
	p.selected = (selected%total + total - 1) % total
	// height may have shrunk since the last call.
	p.relative = min(max(relative-1, 0), height)
	// Wrapped around: pin the window to the bottom.
	if p.selected == total-1 {
		p.relative = height
	}
}

func normalize(index int) int {
	if index < 0 {
		return None
	}
	return index
}
