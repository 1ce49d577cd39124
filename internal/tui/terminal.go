package tui

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// IsTTY reports whether w is an interactive terminal
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// IsInteractive reports whether both stdin and stdout are terminals
func IsInteractive() bool {
	return IsTTY(os.Stdin) && IsTTY(os.Stdout)
}

// ConfigureColors drops styling when NO_COLOR is set or out is not a terminal,
// so piped output stays plain text.
func ConfigureColors(out io.Writer) {
	if os.Getenv("NO_COLOR") != "" || !IsTTY(out) {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}
