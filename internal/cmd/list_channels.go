package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/runger/lookout/internal/channel"
	"github.com/runger/lookout/internal/logging"
)

var listAll bool

var listChannelsCmd = &cobra.Command{
	Use:     "list-channels",
	Short:   "List the channels lookout can open",
	GroupID: groupCore,
	Long: `List the channels lookout can open.

Built-in channels are listed next to the command channels from the
channels section of the config file.

Examples:
  lookout list-channels             # Visible channels
  lookout list-channels --all       # Include hidden channels such as stdin`,
	Args: cobra.NoArgs,
	RunE: runListChannels,
}

func init() {
	listChannelsCmd.Flags().BoolVar(&listAll, "all", false, "include hidden channels")
	listChannelsCmd.Flags().StringVar(&colorMode, "color", "auto", "color output: auto, always, or never")

	rootCmd.AddCommand(listChannelsCmd)
}

func runListChannels(cmd *cobra.Command, args []string) error {
	applyColorMode()

	cfg, err := loadConfig(flagConfig)
	if err != nil {
		return err
	}

	// The history channel is only registered when history is enabled.
	var history channel.RecentLister
	if cfg.History.Enabled {
		history = noHistory{}
	}
	// Stdin is listed with --all even when nothing is piped.
	reg, err := buildRegistry(cfg, logging.Discard(), strings.NewReader(""), history)
	if err != nil {
		return err
	}

	writeChannels(cmd.OutOrStdout(), reg.Defs(listAll), terminalWidth())
	return nil
}

// writeChannels prints one channel per line, descriptions cut to width.
func writeChannels(w io.Writer, defs []channel.Def, width int) {
	if len(defs) == 0 {
		fmt.Fprintln(w, "No channels.")
		return
	}

	nameWidth := 0
	for _, d := range defs {
		nameWidth = max(nameWidth, runewidth.StringWidth(d.Name))
	}

	// Two columns of indent and two between name and description.
	descWidth := width - nameWidth - 4
	for _, d := range defs {
		desc := d.Description
		if descWidth > 0 {
			desc = runewidth.Truncate(desc, descWidth, "…")
		}
		name := runewidth.FillRight(d.Name, nameWidth)
		fmt.Fprintf(w, "  %s%s%s  %s%s%s\n", colorCyan, name, colorReset, colorDim, desc, colorReset)
	}
}

type noHistory struct{}

func (noHistory) Recent(_ context.Context, _ string, _ int) ([]string, error) { return nil, nil }
