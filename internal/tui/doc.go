// Package tui provides the terminal user interface for reaper.
//
// It handles:
//   - The interactive branch grid (bubbletea, bubbles, lipgloss)
//   - Prompts for the menu front end (survey)
//   - The plain branch table printed by `reaper list`
//   - Console and file logging (Splog)
package tui
