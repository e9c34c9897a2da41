// Package shellhist reads the command history files of bash, zsh and fish.
package shellhist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Shell names a supported shell.
type Shell string

// Supported shells.
const (
	Bash Shell = "bash"
	Zsh  Shell = "zsh"
	Fish Shell = "fish"
)

// MaxEntries is the maximum number of commands kept from a history file.
const MaxEntries = 25000

// Detect returns the shell named by $SHELL, or "" if it is not supported.
func Detect() Shell {
	switch s := Shell(filepath.Base(os.Getenv("SHELL"))); s {
	case Bash, Zsh, Fish:
		return s
	default:
		return ""
	}
}

// Path returns the history file of shell. $HISTFILE overrides the default
// for bash and zsh.
func Path(shell Shell) string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	switch shell {
	case Bash, Zsh:
		if f := os.Getenv("HISTFILE"); f != "" {
			return f
		}
		if home == "" {
			return ""
		}
		return filepath.Join(home, "."+string(shell)+"_history")
	case Fish:
		if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
			return filepath.Join(dataHome, "fish", "fish_history")
		}
		if home == "" {
			return ""
		}
		return filepath.Join(home, ".local", "share", "fish", "fish_history")
	default:
		return ""
	}
}

// Read parses the history file at path, oldest command first. A missing
// file has no commands.
func Read(shell Shell, path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path) //nolint:gosec // G304: path is from HISTFILE or a well-known default
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()
	return Parse(shell, f)
}

// lineParser turns history file lines into commands.
type lineParser interface {
	line(s string)
	finish() []string
}

// Parse reads a history file in the format of shell, oldest command first.
// Only the newest MaxEntries commands are kept.
func Parse(shell Shell, r io.Reader) ([]string, error) {
	var p lineParser
	switch shell {
	case Bash:
		p = &bashParser{}
	case Zsh:
		p = &zshParser{}
	case Fish:
		p = &fishParser{}
	default:
		return nil, fmt.Errorf("unsupported shell %q", shell)
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		p.line(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return trimToLimit(p.finish(), MaxEntries), nil
}

// Recent reverses cmds and drops repeats, so each command appears once at
// the position of its latest use.
func Recent(cmds []string) []string {
	seen := make(map[string]bool, len(cmds))
	out := make([]string, 0, len(cmds))
	for i := len(cmds) - 1; i >= 0; i-- {
		if seen[cmds[i]] {
			continue
		}
		seen[cmds[i]] = true
		out = append(out, cmds[i])
	}
	return out
}

// bashParser reads one command per line. With HISTTIMEFORMAT set, bash
// writes a "#<unix_ts>" line before each command.
type bashParser struct {
	cmds []string
}

func (p *bashParser) line(s string) {
	if s == "" || isBashTimestamp(s) {
		return
	}
	p.cmds = append(p.cmds, s)
}

func (p *bashParser) finish() []string { return p.cmds }

func isBashTimestamp(s string) bool {
	if len(s) < 2 || s[0] != '#' {
		return false
	}
	_, err := strconv.ParseInt(s[1:], 10, 64)
	return err == nil
}

// zshParser reads plain and extended (": <ts>:<dur>;<cmd>") history.
// A trailing unescaped backslash continues the command on the next line.
type zshParser struct {
	pending strings.Builder
	cmds    []string
}

func (p *zshParser) line(s string) {
	if p.pending.Len() == 0 {
		if strings.HasPrefix(s, ": ") {
			if idx := strings.Index(s, ";"); idx != -1 {
				s = s[idx+1:]
			}
		}
		if s == "" {
			return
		}
	}
	if continues(s) {
		p.pending.WriteString(s[:len(s)-1])
		p.pending.WriteString("\n")
		return
	}
	p.pending.WriteString(s)
	p.cmds = append(p.cmds, p.pending.String())
	p.pending.Reset()
}

func (p *zshParser) finish() []string {
	if p.pending.Len() > 0 {
		p.cmds = append(p.cmds, strings.TrimSuffix(p.pending.String(), "\n"))
		p.pending.Reset()
	}
	return p.cmds
}

// continues reports whether s ends in an odd number of backslashes.
func continues(s string) bool {
	n := 0
	for i := len(s) - 1; i >= 0 && s[i] == '\\'; i-- {
		n++
	}
	return n%2 == 1
}

// fishParser reads fish's pseudo-YAML history:
//
//   - cmd: <command>
//     when: <unix_timestamp>
//
// Only the cmd lines matter here.
type fishParser struct {
	cmds []string
}

func (p *fishParser) line(s string) {
	if cmd, ok := strings.CutPrefix(s, "- cmd: "); ok {
		p.cmds = append(p.cmds, decodeFishEscapes(cmd))
	}
}

func (p *fishParser) finish() []string { return p.cmds }

// decodeFishEscapes decodes "\\" and "\n" as fish writes them.
func decodeFishEscapes(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case '\\':
				b.WriteByte('\\')
				i++
				continue
			case 'n':
				b.WriteByte('\n')
				i++
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// trimToLimit returns the last n commands.
func trimToLimit(cmds []string, n int) []string {
	if len(cmds) <= n {
		return cmds
	}
	return cmds[len(cmds)-n:]
}
