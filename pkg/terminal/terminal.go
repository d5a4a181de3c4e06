// Package terminal reports on the terminal attached to a file, if any.
package terminal

import (
	"os"

	"golang.org/x/term"
)

// DefaultWidth is the width assumed when stdout is not a terminal.
const DefaultWidth = 80

func IsTerminalFile(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Width returns the column count of the terminal on stdout.
func Width() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return DefaultWidth
	}
	return w
}
