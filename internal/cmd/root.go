package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/runger/lookout/internal/channel"
	"github.com/runger/lookout/internal/config"
	"github.com/runger/lookout/internal/keymap"
	"github.com/runger/lookout/internal/logging"
	"github.com/runger/lookout/internal/picker"
	"github.com/runger/lookout/internal/shellhist"
	"github.com/runger/lookout/internal/storage"
)

// Exit codes. Shell widgets rely on them:
//
//	0 = selection made (stdout holds the entry)
//	1 = cancelled by the user
//	2 = no usable terminal or another error
const (
	exitSuccess   = 0
	exitCancelled = 1
	exitFallback  = 2
)

// maxQueryLen is the maximum length of a query string in bytes.
const maxQueryLen = 4096

const (
	groupCore  = "core"
	groupSetup = "setup"
)

var (
	flagQuery     string
	flagLayout    string
	flagConfig    string
	flagNoPreview bool
)

var rootCmd = &cobra.Command{
	Use:   "lookout [channel]",
	Short: "Fuzzy finder for files, environment and command output",
	Long: `lookout - fuzzy finder for the terminal
  - type to filter, enter to print the selected entry
  - ctrl+t switches channels, ctrl+s sends results to another channel

Without a channel argument lookout reads lines from stdin when it is piped,
and opens ui.default_channel otherwise.

Examples:
  lookout                          # Files below the working directory
  lookout env                      # Environment variables
  git branch | lookout -q feat     # Pick a branch, starting with "feat"`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

// exitError carries a process exit code out of a command. A nil err exits
// quietly.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func fallback(err error) error {
	return &exitError{code: exitFallback, err: err}
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	return exitCode(rootCmd.Execute(), os.Stderr)
}

func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(stderr, "lookout: %v\n", ee.err)
		}
		return ee.code
	}
	fmt.Fprintf(stderr, "lookout: %v\n", err)
	return exitFallback
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: groupCore, Title: "Commands:"},
		&cobra.Group{ID: groupSetup, Title: "Setup:"},
	)

	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ~/.config/lookout/config.yaml)")
	rootCmd.Flags().StringVarP(&flagQuery, "query", "q", "", "initial search query")
	rootCmd.Flags().StringVar(&flagLayout, "layout", "", "result layout: top-down or bottom-up")
	rootCmd.Flags().BoolVar(&flagNoPreview, "no-preview", false, "start with the preview pane hidden")

	rootCmd.AddCommand(versionCmd)
}

func runRoot(cmd *cobra.Command, args []string) error {
	query, err := sanitizeQuery(flagQuery)
	if err != nil {
		return fallback(fmt.Errorf("--query: %w", err))
	}

	cfg, err := loadConfig(flagConfig)
	if err != nil {
		return fallback(err)
	}
	if err := applyOverrides(cfg, flagLayout, flagNoPreview); err != nil {
		return fallback(err)
	}
	km, err := keymap.FromConfig(cfg.Keybindings)
	if err != nil {
		return fallback(err)
	}

	if err := checkTerminal(); err != nil {
		return fallback(err)
	}

	paths := config.DefaultPaths()
	logger, closeLog := openLogger(cfg, paths)
	defer closeLog()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	store := openHistory(cfg, paths, logger)
	if store != nil {
		defer store.Close()
	}

	stdin := pipedStdin()
	var history channel.RecentLister
	if store != nil {
		history = store
	}
	reg, err := buildRegistry(cfg, logger, stdin, history)
	if err != nil {
		return fallback(err)
	}

	name := channelName(args, stdin != nil, cfg)
	ch, err := reg.New(ctx, name)
	if err != nil {
		return fallback(err)
	}
	logger.Info("starting", "channel", name, "layout", cfg.UI.Layout)

	opts := pickerOptions(cfg, reg, km, query, logger)
	if store != nil {
		opts.Recorder = store
	}
	m, err := runTUI(picker.NewModel(ctx, ch, opts))
	if err != nil {
		return fallback(err)
	}

	if store != nil && cfg.History.MaxEntries > 0 {
		if _, err := store.Prune(ctx, cfg.History.MaxEntries); err != nil {
			logger.Warn("prune history failed", "error", err)
		}
	}

	if m.IsCancelled() {
		return &exitError{code: exitCancelled}
	}
	if result := m.Result(); result != "" {
		fmt.Fprintln(cmd.OutOrStdout(), result)
	}
	return nil
}

// loadConfig reads path, or the default config file when path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = config.DefaultPaths().ConfigFile()
	}
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// applyOverrides applies command-line flags on top of the loaded config.
func applyOverrides(cfg *config.Config, layout string, noPreview bool) error {
	if layout != "" {
		if err := cfg.Set("ui.layout", layout); err != nil {
			return fmt.Errorf("--layout: %w", err)
		}
	}
	if noPreview {
		cfg.UI.ShowPreview = false
	}
	return nil
}

// openLogger opens the log file named by the config. Logging is dropped
// with a warning when the file cannot be opened.
func openLogger(cfg *config.Config, paths *config.Paths) (*slog.Logger, func()) {
	path := cfg.Log.File
	if path == "" {
		path = paths.LogFile()
	}
	logger, closer, err := logging.OpenFile(path, cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lookout: logging disabled: %v\n", err)
		return logging.Discard(), func() {}
	}
	return logger, func() { _ = closer.Close() }
}

// openHistory opens the selection store, or returns nil when history is
// disabled or unavailable.
func openHistory(cfg *config.Config, paths *config.Paths, logger *slog.Logger) *storage.Store {
	if !cfg.History.Enabled {
		return nil
	}
	if err := paths.EnsureDirectories(); err != nil {
		logger.Warn("history disabled", "error", err)
		return nil
	}
	store, err := storage.Open(paths.DatabaseFile())
	if err != nil {
		logger.Warn("history disabled", "error", err)
		return nil
	}
	return store
}

// pipedStdin returns os.Stdin when it is not a terminal.
func pipedStdin() io.Reader {
	fd := os.Stdin.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return nil
	}
	return os.Stdin
}

// buildRegistry registers the built-in channels and the command channels
// from the config. stdin and history are optional. The shell-history
// channel follows $SHELL.
func buildRegistry(cfg *config.Config, logger *slog.Logger, stdin io.Reader, history channel.RecentLister) (*channel.Registry, error) {
	reg := channel.NewRegistry()
	err := channel.RegisterBuiltins(reg, channel.Options{
		Logger:       logger,
		Root:         ".",
		Stdin:        stdin,
		History:      history,
		HistoryLimit: cfg.History.MaxEntries,
		Shell:        shellhist.Detect(),
		Commands:     commandDefs(cfg),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register channels: %w", err)
	}
	return reg, nil
}

func commandDefs(cfg *config.Config) []channel.CommandDef {
	defs := make([]channel.CommandDef, 0, len(cfg.Channels))
	for _, c := range cfg.Channels {
		defs = append(defs, channel.CommandDef{
			Name:        c.Name,
			Description: c.Description,
			Source:      c.SourceCommand,
			Preview:     c.PreviewCommand,
		})
	}
	return defs
}

// channelName picks the channel to open: the argument, then piped stdin,
// then the configured default.
func channelName(args []string, piped bool, cfg *config.Config) string {
	switch {
	case len(args) > 0:
		return args[0]
	case piped:
		return channel.NameStdin
	case cfg.UI.DefaultChannel != "":
		return cfg.UI.DefaultChannel
	default:
		return channel.NameFiles
	}
}

func pickerOptions(cfg *config.Config, reg *channel.Registry, km keymap.Keymap, query string, logger *slog.Logger) picker.Options {
	return picker.Options{
		Registry:     reg,
		Keymap:       km,
		Layout:       cfg.UI.Layout,
		Query:        query,
		ShowPreview:  cfg.UI.ShowPreview,
		ShowHelp:     cfg.UI.ShowHelp,
		TickInterval: time.Duration(cfg.UI.TickMs) * time.Millisecond,
		Logger:       logger,
	}
}

// runTUI runs the model on /dev/tty, since stdin and stdout carry data.
func runTUI(model picker.Model) (picker.Model, error) {
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return model, fmt.Errorf("cannot open /dev/tty: %w", err)
	}
	defer tty.Close()

	// When run as $(lookout), stdout is a pipe and lipgloss would fall
	// back to no color. Detect the profile from the tty instead.
	lipgloss.SetColorProfile(termenv.NewOutput(tty).ColorProfile())

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithInput(tty),
		tea.WithOutput(tty),
	)
	final, err := p.Run()
	if err != nil {
		return model, fmt.Errorf("TUI error: %w", err)
	}
	m, ok := final.(picker.Model)
	if !ok {
		return model, errors.New("unexpected model type")
	}
	return m, nil
}

// sanitizeQuery strips control characters and validates the query string.
func sanitizeQuery(q string) (string, error) {
	if q == "" {
		return "", nil
	}
	if strings.ContainsAny(q, "\n\r") {
		return "", errors.New("query must not contain newlines")
	}

	// Control characters other than tab are dropped; this also defuses
	// escape sequences.
	var b strings.Builder
	b.Grow(len(q))
	for _, r := range q {
		if (r < 0x20 && r != '\t') || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	result := b.String()

	if len(result) > maxQueryLen {
		cut := maxQueryLen
		for cut > 0 && !utf8.RuneStart(result[cut]) {
			cut--
		}
		result = result[:cut]
	}
	return result, nil
}
