package tui

import (
	"os"
	"path/filepath"
)

// EnvLogFile overrides the log file location; "off" disables file logging
const EnvLogFile = "REAPER_LOG_FILE"

// GetLogFilePath returns the path to the log file, or "" when file logging
// is disabled. If REAPER_LOG_FILE is set, uses that path. Otherwise, uses
// $XDG_STATE_HOME/reaper/reaper.log (~/.local/state when unset).
func GetLogFilePath() string {
	if customPath := os.Getenv(EnvLogFile); customPath != "" {
		if customPath == "off" {
			return ""
		}
		return customPath
	}

	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			// Fallback to current directory if we can't get home dir
			return "reaper.log"
		}
		stateDir = filepath.Join(homeDir, ".local", "state")
	}

	return filepath.Join(stateDir, "reaper", "reaper.log")
}
