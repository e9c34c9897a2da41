package cmd

import (
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
)

// ANSI codes for plain command output. The picker itself styles with
// lipgloss; these are for list and config output only.
var (
	colorYellow string
	colorCyan   string
	colorDim    string
	colorBold   string
	colorReset  string
)

// colorMode is set by --color: auto, always or never.
var colorMode = "auto"

func init() {
	if shouldDisableColors() {
		disableColors()
	} else {
		enableColors()
	}
}

func enableColors() {
	colorYellow = "\033[0;33m"
	colorCyan = "\033[0;36m"
	colorDim = "\033[2m"
	colorBold = "\033[1m"
	colorReset = "\033[0m"
}

func disableColors() {
	colorYellow = ""
	colorCyan = ""
	colorDim = ""
	colorBold = ""
	colorReset = ""
}

// applyColorMode re-evaluates the colors after flags are parsed.
func applyColorMode() {
	switch colorMode {
	case "always":
		enableColors()
	case "never":
		disableColors()
	default:
		if shouldDisableColors() {
			disableColors()
		} else {
			enableColors()
		}
	}
}

func shouldDisableColors() bool {
	// https://no-color.org/
	if os.Getenv("NO_COLOR") != "" {
		return true
	}
	if os.Getenv("TERM") == "dumb" {
		return true
	}
	return !isatty.IsTerminal(os.Stdout.Fd())
}

// defaultTermWidth is used when neither ioctl nor $COLUMNS give a width.
const defaultTermWidth = 80

// terminalWidth returns the width of the terminal on stdout, falling back
// to $COLUMNS and then defaultTermWidth.
func terminalWidth() int {
	if w := getTermWidthIoctl(); w > 0 {
		return w
	}
	if w, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && w > 0 {
		return w
	}
	return defaultTermWidth
}
