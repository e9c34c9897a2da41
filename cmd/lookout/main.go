// Package main is the entry point for the lookout CLI.
package main

import (
	"os"

	"github.com/runger/lookout/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
