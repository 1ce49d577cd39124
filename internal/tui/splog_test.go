package tui

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplogOutput(t *testing.T) {
	var out bytes.Buffer
	splog, err := NewSplogWithConfig(&out, "")
	require.NoError(t, err)

	splog.Info("feature/100%")
	splog.Warn("careful with %s", "origin")
	splog.Success("Deleted local: %s", "fix/typo")
	splog.Failure("Failed to delete remote %s", "origin/x")
	splog.Tip("try %d", 2)

	require.Equal(t, "feature/100%\n"+
		"⚠️  careful with origin\n"+
		"✓ Deleted local: fix/typo\n"+
		"✗ Failed to delete remote origin/x\n"+
		"💡 try 2\n", out.String())
}

func TestSplogQuietKeepsLogFile(t *testing.T) {
	var out bytes.Buffer
	logPath := filepath.Join(t.TempDir(), "reaper.log")
	splog, err := NewSplogWithConfig(&out, logPath)
	require.NoError(t, err)

	splog.SetQuiet(true)
	splog.Info("while the grid is up")
	splog.SetQuiet(false)
	splog.Info("after")
	require.NoError(t, splog.Close())

	require.Equal(t, "after\n", out.String())
	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "while the grid is up")
}

func TestRotatingLogLimits(t *testing.T) {
	t.Setenv("REAPER_LOG_MAX_SIZE", "5")
	t.Setenv("REAPER_LOG_MAX_BACKUPS", "0")
	t.Setenv("REAPER_LOG_MAX_AGE", "bogus")

	l := rotatingLog("x.log")
	require.Equal(t, 5, l.MaxSize)
	require.Equal(t, 0, l.MaxBackups)
	require.Equal(t, 30, l.MaxAge)
}
