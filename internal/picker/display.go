package picker

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const (
	ellipsis      = "…"
	ellipsisWidth = 1
)

// MiddleTruncate shortens s to maxWidth display columns by replacing its
// middle with an ellipsis. Wide runes (CJK, emoji) count as two columns.
// Below three columns s is cut from the right.
func MiddleTruncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth < 3 {
		return truncateLeft(s, maxWidth)
	}

	// The head gets the extra column when the budget is odd.
	budget := maxWidth - ellipsisWidth
	return truncateLeft(s, (budget+1)/2) + ellipsis + truncateRight(s, budget/2)
}

// truncateLeft keeps the longest prefix of s that fits in width columns.
func truncateLeft(s string, width int) string {
	w := 0
	for i, r := range s {
		rw := runewidth.RuneWidth(r)
		if w+rw > width {
			return s[:i]
		}
		w += rw
	}
	return s
}

// truncateRight keeps the longest suffix of s that fits in width columns.
func truncateRight(s string, width int) string {
	runes := []rune(s)
	w := 0
	start := len(runes)
	for i := len(runes) - 1; i >= 0; i-- {
		rw := runewidth.RuneWidth(runes[i])
		if w+rw > width {
			break
		}
		w += rw
		start = i
	}
	return string(runes[start:])
}

// span is a run of text that is either entirely matched or not.
type span struct {
	text  string
	match bool
}

// spans splits s into runs at the boundaries of the matched byte offsets.
func spans(s string, matches []int) []span {
	if len(matches) == 0 {
		if s == "" {
			return nil
		}
		return []span{{text: s}}
	}
	hit := make(map[int]bool, len(matches))
	for _, m := range matches {
		hit[m] = true
	}

	var out []span
	var cur strings.Builder
	curMatch := false
	for i, r := range s {
		m := hit[i]
		if cur.Len() > 0 && m != curMatch {
			out = append(out, span{text: cur.String(), match: curMatch})
			cur.Reset()
		}
		curMatch = m
		cur.WriteRune(r)
	}
	if cur.Len() > 0 {
		out = append(out, span{text: cur.String(), match: curMatch})
	}
	return out
}

// Highlight renders s with the runes at the matched byte offsets in hl and
// the rest in base.
func Highlight(s string, matches []int, base, hl lipgloss.Style) string {
	var b strings.Builder
	for _, sp := range spans(s, matches) {
		if sp.match {
			b.WriteString(hl.Render(sp.text))
		} else {
			b.WriteString(base.Render(sp.text))
		}
	}
	return b.String()
}

// renderEntry fits name into width columns. Match highlighting is only
// kept when the name is not truncated, since offsets no longer line up.
func renderEntry(name string, matches []int, width int, base, hl lipgloss.Style) string {
	if width > 0 && runewidth.StringWidth(name) > width {
		return base.Render(MiddleTruncate(name, width))
	}
	return Highlight(name, matches, base, hl)
}
