package channel

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/google/shlex"
)

const (
	// previewTimeout bounds a single preview command.
	previewTimeout = 2 * time.Second

	// placeholder is replaced by the entry in preview commands.
	placeholder = "{}"
)

// Command is a Source whose items are the stdout lines of an external
// command. An optional preview command is run per entry with "{}" replaced
// by the entry's output.
type Command struct {
	source  []string
	preview []string
	stdin   io.Reader
}

// NewCommand parses the source and preview command lines with shell
// quoting rules. previewCmd may be empty.
func NewCommand(sourceCmd, previewCmd string) (*Command, error) {
	src, err := shlex.Split(sourceCmd)
	if err != nil {
		return nil, fmt.Errorf("parse source command: %w", err)
	}
	if len(src) == 0 {
		return nil, errors.New("source command is empty")
	}
	var prev []string
	if strings.TrimSpace(previewCmd) != "" {
		prev, err = shlex.Split(previewCmd)
		if err != nil {
			return nil, fmt.Errorf("parse preview command: %w", err)
		}
	}
	return &Command{source: src, preview: prev}, nil
}

// WithStdin returns a copy of c that feeds r to the source command.
func (c *Command) WithStdin(r io.Reader) *Command {
	cp := *c
	cp.stdin = r
	return &cp
}

// Load implements Source.
func (c *Command) Load(ctx context.Context, emit func(items ...Item)) error {
	cmd := exec.CommandContext(ctx, c.source[0], c.source[1:]...)
	cmd.Stdin = c.stdin
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%s: %w", c.source[0], err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%s: %w", c.source[0], err)
	}

	scanErr := scanLines(ctx, stdout, emit)
	if scanErr != nil {
		// Drain so the process is not blocked writing to a full pipe.
		_, _ = io.Copy(io.Discard, stdout)
	}
	waitErr := cmd.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	if scanErr != nil {
		return scanErr
	}
	if waitErr != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", c.source[0], waitErr, msg)
		}
		return fmt.Errorf("%s: %w", c.source[0], waitErr)
	}
	return nil
}

// Preview implements Source. Without a preview command the entry itself
// is shown.
func (c *Command) Preview(ctx context.Context, e Entry) (string, error) {
	if len(c.preview) == 0 {
		return e.Output(), nil
	}
	ctx, cancel := context.WithTimeout(ctx, previewTimeout)
	defer cancel()

	args := make([]string, len(c.preview))
	for i, a := range c.preview {
		args[i] = strings.ReplaceAll(a, placeholder, e.Output())
	}
	out, err := exec.CommandContext(ctx, args[0], args[1:]...).CombinedOutput()
	if err != nil && len(out) == 0 {
		return "", fmt.Errorf("preview %s: %w", args[0], err)
	}
	return StripANSI(ValidateUTF8(string(out))), nil
}
