// Package main provides the entry point for savectl.
//
// savectl inspects and edits the saves under a savestate root from the
// terminal.
package main

import (
	"fmt"
	"os"

	"github.com/AndrewDonelson/savestate/internal/cli/command"
)

func main() {
	app := command.App()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
