package channel

import (
	"context"
	"fmt"
	"strings"

	"github.com/runger/lookout/internal/sanitize"
	"github.com/runger/lookout/internal/shellhist"
)

// ShellHistory is a Source listing the commands in a shell's history file,
// most recent first.
type ShellHistory struct {
	shell shellhist.Shell
	path  string
}

// NewShellHistory creates a Source over the history file at path, or the
// shell's default history file when path is empty.
func NewShellHistory(shell shellhist.Shell, path string) *ShellHistory {
	if path == "" {
		path = shellhist.Path(shell)
	}
	return &ShellHistory{shell: shell, path: path}
}

// Load implements Source. Multiline commands are shown on one line.
func (h *ShellHistory) Load(ctx context.Context, emit func(items ...Item)) error {
	cmds, err := shellhist.Read(h.shell, h.path)
	if err != nil {
		return fmt.Errorf("read %s history: %w", h.shell, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	recent := shellhist.Recent(cmds)
	items := make([]Item, len(recent))
	for i, c := range recent {
		if strings.Contains(c, "\n") {
			items[i] = Item{Name: strings.ReplaceAll(c, "\n", " ↵ "), Value: c}
		} else {
			items[i] = Item{Name: c}
		}
	}
	emit(items...)
	return nil
}

// Preview implements Source. Secrets in the command are masked.
func (h *ShellHistory) Preview(_ context.Context, e Entry) (string, error) {
	return sanitize.Sanitize(e.Output()), nil
}
