package tui

import (
	"github.com/charmbracelet/lipgloss"

	"reaper.dev/reaper/internal/engine"
)

// Palette used by the grid and the list table
var (
	colorGreen   = lipgloss.Color("2")
	colorYellow  = lipgloss.Color("3")
	colorBlue    = lipgloss.Color("4")
	colorMagenta = lipgloss.Color("5")
	colorCyan    = lipgloss.Color("6")
	colorRed     = lipgloss.Color("1")
	colorDim     = lipgloss.Color("240")
	colorAccent  = lipgloss.Color("205")
)

var (
	dimStyle     = lipgloss.NewStyle().Foreground(colorDim)
	markedStyle  = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	headerStyle  = lipgloss.NewStyle().Foreground(colorMagenta).Bold(true)
	titleStyle   = lipgloss.NewStyle().Bold(true)
	cursorStyle  = lipgloss.NewStyle().Reverse(true)
	warningStyle = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	spinnerStyle = lipgloss.NewStyle().Foreground(colorAccent)
	dialogStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorYellow).
			Padding(1, 2)
)

// StatusColor returns the color a branch status is drawn in
func StatusColor(s engine.Status) lipgloss.Color {
	switch s {
	case engine.StatusSynced:
		return colorGreen
	case engine.StatusOrphan:
		return colorYellow
	case engine.StatusLocal:
		return colorCyan
	case engine.StatusRemote:
		return colorBlue
	default:
		return lipgloss.Color("7")
	}
}

// ColorRed colors text red
func ColorRed(text string) string {
	return lipgloss.NewStyle().Foreground(colorRed).Render(text)
}

// ColorYellow colors text yellow
func ColorYellow(text string) string {
	return lipgloss.NewStyle().Foreground(colorYellow).Render(text)
}

// ColorGreen colors text green
func ColorGreen(text string) string {
	return lipgloss.NewStyle().Foreground(colorGreen).Render(text)
}

// ColorCyan colors text cyan
func ColorCyan(text string) string {
	return lipgloss.NewStyle().Foreground(colorCyan).Render(text)
}

// ColorDim makes text dim/gray
func ColorDim(text string) string {
	return dimStyle.Render(text)
}

// ColorBold makes text bold
func ColorBold(text string) string {
	return titleStyle.Render(text)
}
