//go:build windows

package cmd

// getTermWidthIoctl is not available on Windows; terminalWidth uses $COLUMNS.
func getTermWidthIoctl() int {
	return 0
}
