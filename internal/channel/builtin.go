package channel

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/runger/lookout/internal/shellhist"
)

// Channel names registered by RegisterBuiltins.
const (
	NameFiles   = "files"
	NameEnv     = "env"
	NameHistory = "history"
	NameStdin   = "stdin"
	NameText    = "text"

	NameShellHistory = "shell-history"
)

// CommandDef configures a channel backed by external commands.
type CommandDef struct {
	Name        string
	Description string
	Source      string
	Preview     string
}

// Options configures the built-in channels.
type Options struct {
	Logger       *slog.Logger
	Root         string          // Directory walked by the files channel
	Stdin        io.Reader       // Registers the stdin channel when set
	History      RecentLister    // Registers the history channel when set
	HistoryLimit int
	Shell        shellhist.Shell // Registers the shell-history channel when set
	Commands     []CommandDef
}

// RegisterBuiltins registers the standard channels and every command
// channel in opts.
func RegisterBuiltins(r *Registry, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	root := opts.Root
	if root == "" {
		root = "."
	}

	defs := []Def{
		{
			Name:        NameFiles,
			Description: "Files below the working directory",
			New: func(ctx context.Context) (Channel, error) {
				return NewStreaming(ctx, NameFiles, NewFiles(root), logger), nil
			},
			Pipe: func(ctx context.Context, entries []Entry) (Channel, error) {
				files := NewFiles(root)
				src := &entriesSource{items: itemsOf(entries), preview: files.Preview}
				return NewStreaming(ctx, NameFiles, src, logger), nil
			},
		},
		{
			Name:        NameEnv,
			Description: "Environment variables",
			New: func(ctx context.Context) (Channel, error) {
				return NewStreaming(ctx, NameEnv, NewEnv(), logger), nil
			},
		},
		{
			Name:        NameText,
			Description: "Plain text lines",
			Hidden:      true,
			New: func(ctx context.Context) (Channel, error) {
				return NewStreaming(ctx, NameText, &entriesSource{}, logger), nil
			},
			Pipe: func(ctx context.Context, entries []Entry) (Channel, error) {
				return NewStreaming(ctx, NameText, &entriesSource{items: itemsOf(entries)}, logger), nil
			},
		},
	}

	if opts.Stdin != nil {
		stdin := opts.Stdin
		defs = append(defs, Def{
			Name:        NameStdin,
			Description: "Lines read from standard input",
			Hidden:      true,
			New: func(ctx context.Context) (Channel, error) {
				return NewStreaming(ctx, NameStdin, NewLines(stdin), logger), nil
			},
		})
	}

	if opts.History != nil {
		store, limit := opts.History, opts.HistoryLimit
		defs = append(defs, Def{
			Name:        NameHistory,
			Description: "Previously selected entries",
			New: func(ctx context.Context) (Channel, error) {
				return NewStreaming(ctx, NameHistory, NewHistory(store, "", limit), logger), nil
			},
		})
	}

	if opts.Shell != "" {
		shell := opts.Shell
		defs = append(defs, Def{
			Name:        NameShellHistory,
			Description: "Commands from your " + string(shell) + " history",
			New: func(ctx context.Context) (Channel, error) {
				return NewStreaming(ctx, NameShellHistory, NewShellHistory(shell, ""), logger), nil
			},
		})
	}

	for _, cd := range opts.Commands {
		d, err := commandDef(cd, logger)
		if err != nil {
			return err
		}
		defs = append(defs, d)
	}

	for _, d := range defs {
		if err := r.Register(d); err != nil {
			return err
		}
	}
	return nil
}

func commandDef(cd CommandDef, logger *slog.Logger) (Def, error) {
	cmd, err := NewCommand(cd.Source, cd.Preview)
	if err != nil {
		return Def{}, fmt.Errorf("channel %q: %w", cd.Name, err)
	}
	desc := cd.Description
	if desc == "" {
		desc = cd.Source
	}
	name := cd.Name
	return Def{
		Name:        name,
		Description: desc,
		New: func(ctx context.Context) (Channel, error) {
			return NewStreaming(ctx, name, cmd, logger), nil
		},
		Pipe: func(ctx context.Context, entries []Entry) (Channel, error) {
			lines := make([]string, len(entries))
			for i, e := range entries {
				lines[i] = e.Output()
			}
			in := strings.NewReader(strings.Join(lines, "\n") + "\n")
			return NewStreaming(ctx, name, cmd.WithStdin(in), logger), nil
		},
	}, nil
}
