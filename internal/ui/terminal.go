package ui

import (
	"os"

	"github.com/mattn/go-isatty"
)

// IsTerminal reports whether f is connected to a terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Interactive reports whether prompts can be shown: stdin must be a terminal
// and the command must not run in batch mode.
func Interactive(batch bool) bool {
	return !batch && IsTerminal(os.Stdin)
}
