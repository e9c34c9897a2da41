package channel

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// ansiRE matches ANSI escape sequences:
//   - CSI sequences: ESC [ ... final_byte  (covers SGR like \x1b[31m)
//   - OSC sequences: ESC ] ... (ST | BEL)
//   - Charset sequences: ESC ( B, ESC ) B, etc.
//   - Other two-byte escapes: ESC followed by a single byte in [#()*+\-./]
var ansiRE = regexp.MustCompile(`\x1b(?:` +
	`\[[0-9;?]*[A-Za-z]` +
	`|` +
	`\].*?(?:\x1b\\|\x07)` +
	`|` +
	`[()][A-B0-2]` +
	`|` +
	`[#()*+\-./][A-Za-z0-9]` +
	`)`)

// controlReplacer flattens characters that would break a single list row.
var controlReplacer = strings.NewReplacer("\t", "    ", "\r", "", "\n", " ")

// StripANSI removes ANSI escape sequences from s.
func StripANSI(s string) string {
	if !strings.Contains(s, "\x1b") {
		return s
	}
	return ansiRE.ReplaceAllString(s, "")
}

// ValidateUTF8 replaces invalid byte sequences with U+FFFD.
func ValidateUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, "�")
}

// Clean makes s safe to render as a single row: valid UTF-8, no escape
// sequences and no line breaks.
func Clean(s string) string {
	return controlReplacer.Replace(StripANSI(ValidateUTF8(s)))
}
