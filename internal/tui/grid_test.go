package tui

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"reaper.dev/reaper/internal/demo"
	"reaper.dev/reaper/internal/engine"
	"reaper.dev/reaper/internal/selection"
	"reaper.dev/reaper/internal/watch"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func newDemoEngine(gw *demo.Gateway) *engine.Engine {
	return engine.NewEngine(gw, engine.Options{
		Protected:  engine.NewProtectedSet(engine.DefaultProtectedBranches...),
		ForceLocal: true,
	})
}

// drive runs cmd and every command it produces, feeding operation results
// back into the model. Spinner ticks and quit messages are dropped.
func drive(t *testing.T, m *GridModel, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case loadedMsg, deletedMsg:
			_, next := m.Update(msg)
			queue = append(queue, next)
		}
	}
}

func press(t *testing.T, m *GridModel, keys ...string) tea.Cmd {
	t.Helper()
	var last tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "space":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, last = m.Update(msg)
	}
	return last
}

func loadedGrid(t *testing.T, gw *demo.Gateway, opts GridOptions) *GridModel {
	t.Helper()
	m := NewGridModel(context.Background(), newDemoEngine(gw), opts)
	drive(t, m, m.loadCmd(opts.FetchOnStart, false))
	require.False(t, m.State().Busy())
	return m
}

// moveTo puts the cursor on the named branch, keeping the column
func moveTo(t *testing.T, m *GridModel, name string) {
	t.Helper()
	for i := 0; i < m.State().Len(); i++ {
		press(t, m, "up")
	}
	for i := 0; i < m.State().Len(); i++ {
		if m.State().Selected().Name == name {
			return
		}
		press(t, m, "down")
	}
	t.Fatalf("branch %s not in grid", name)
}

func TestGridInitialLoad(t *testing.T) {
	t.Parallel()
	gw := demo.NewGateway()
	m := loadedGrid(t, gw, GridOptions{FetchOnStart: true, RepoName: "reaper-demo"})

	require.Equal(t, "✓ Loaded 11 branches", m.Status())
	row, col := m.State().Cursor()
	require.Equal(t, 0, row)
	require.Equal(t, selection.ColumnLocal, col)
	require.Equal(t, "develop", m.State().Selected().Name)
	require.Contains(t, gw.Calls(), "fetch --all --prune")

	view := m.View()
	require.Contains(t, view, "Branch Reaper")
	require.Contains(t, view, "reaper-demo")
	require.Contains(t, view, "main "+lockGlyph)
	require.Contains(t, view, "✓ *")
	require.Contains(t, view, "GONE")
	require.Contains(t, view, "nonexistent")
	require.Contains(t, view, "✓ upstream")
}

func TestGridInitialLoadFailureEndsSession(t *testing.T) {
	t.Parallel()
	gw := demo.NewGateway()
	gw.FailList(errors.New("fatal: bad object"))

	m := NewGridModel(context.Background(), newDemoEngine(gw), GridOptions{})
	drive(t, m, m.loadCmd(false, false))
	require.ErrorContains(t, m.Err(), "bad object")
	require.Empty(t, m.View())
}

func TestGridToggle(t *testing.T) {
	t.Parallel()

	t.Run("protected branch is rejected", func(t *testing.T) {
		t.Parallel()
		m := loadedGrid(t, demo.NewGateway(), GridOptions{})
		moveTo(t, m, "main")
		press(t, m, "space")
		require.Equal(t, "Cannot delete protected branch: main", m.Status())
		press(t, m, "right", "space")
		require.Equal(t, "Cannot delete protected branch: main", m.Status())
		require.Zero(t, m.State().MarkedCount())
	})

	t.Run("mark and unmark", func(t *testing.T) {
		t.Parallel()
		m := loadedGrid(t, demo.NewGateway(), GridOptions{})
		moveTo(t, m, "fix/typo")
		press(t, m, "space")
		require.Equal(t, "Marked local: fix/typo", m.Status())
		require.Contains(t, m.View(), "[DEL]")
		require.Contains(t, m.View(), "Marked for deletion: 1")

		press(t, m, "space")
		require.Equal(t, "Unmarked local: fix/typo", m.Status())
		require.Zero(t, m.State().MarkedCount())
	})

	t.Run("missing side", func(t *testing.T) {
		t.Parallel()
		m := loadedGrid(t, demo.NewGateway(), GridOptions{})
		moveTo(t, m, "fix/typo")
		press(t, m, "right", "space")
		require.Equal(t, "No remote branch to delete", m.Status())

		moveTo(t, m, "feature/payments")
		press(t, m, "left", "space")
		require.Equal(t, "No local branch to delete", m.Status())
	})

	t.Run("name column", func(t *testing.T) {
		t.Parallel()
		m := loadedGrid(t, demo.NewGateway(), GridOptions{})
		press(t, m, "left", "left", "space")
		require.Equal(t, "Use ← → to select Local or Remote column", m.Status())
	})
}

func TestGridDelete(t *testing.T) {
	t.Parallel()

	t.Run("nothing marked", func(t *testing.T) {
		t.Parallel()
		m := loadedGrid(t, demo.NewGateway(), GridOptions{})
		press(t, m, "d")
		require.Equal(t, "No branches marked for deletion (use Space to mark)", m.Status())
		require.Equal(t, selection.PhaseBrowsing, m.State().Phase())
	})

	t.Run("confirm deletes and reloads", func(t *testing.T) {
		t.Parallel()
		gw := demo.NewGateway()
		m := loadedGrid(t, gw, GridOptions{})

		moveTo(t, m, "fix/typo")
		press(t, m, "space")
		moveTo(t, m, "feature/payments")
		press(t, m, "right", "space")
		press(t, m, "d")
		require.Equal(t, selection.PhaseConfirming, m.State().Phase())

		view := m.View()
		require.Contains(t, view, "Branches to delete:")
		require.Contains(t, view, "[local] fix/typo")
		require.Contains(t, view, "[remote] origin/feature/payments")
		require.Contains(t, view, "'fix/typo' only exists locally - deletion is permanent!")
		require.Contains(t, view, "'feature/payments' has no local copy - this work may be lost!")
		require.Contains(t, view, "Proceed? (y/n)")

		// marks are frozen while confirming
		press(t, m, "space")
		require.Equal(t, 2, m.State().MarkedCount())

		cmd := press(t, m, "y")
		require.True(t, m.State().Busy())
		drive(t, m, cmd)

		require.Equal(t, "Successfully deleted 2 branch(es)", m.Status())
		require.Equal(t, selection.PhaseBrowsing, m.State().Phase())
		require.Zero(t, m.State().MarkedCount())
		require.Equal(t, 9, m.State().Len())
		require.ElementsMatch(t, []string{"branch -D fix/typo", "push origin --delete feature/payments"}, gw.Calls())
	})

	t.Run("cancel keeps marks", func(t *testing.T) {
		t.Parallel()
		gw := demo.NewGateway()
		m := loadedGrid(t, gw, GridOptions{})
		moveTo(t, m, "fix/typo")
		press(t, m, "space", "d", "esc")
		require.Equal(t, "Deletion cancelled", m.Status())
		require.Equal(t, 1, m.State().MarkedCount())
		require.Empty(t, gw.Calls())
	})

	t.Run("failures are reported", func(t *testing.T) {
		t.Parallel()
		gw := demo.NewGateway()
		gw.FailLocalDelete("fix/typo", errors.New("permission denied"))
		m := loadedGrid(t, gw, GridOptions{})
		moveTo(t, m, "fix/typo")
		press(t, m, "space", "d")
		drive(t, m, press(t, m, "y"))

		require.Equal(t, "Deleted 0, Errors: 1 | Failed to delete local fix/typo: permission denied", m.Status())
		require.NotNil(t, m.State().Branches())
	})

	t.Run("related locals are reported", func(t *testing.T) {
		t.Parallel()
		m := loadedGrid(t, demo.NewGateway(), GridOptions{})
		moveTo(t, m, "hotfix/cache")
		press(t, m, "right", "space", "d")
		drive(t, m, press(t, m, "y"))
		require.Equal(t, "Successfully deleted 1 branch(es) | Local copies remain: hotfix/cache", m.Status())
	})
}

func TestGridBusy(t *testing.T) {
	t.Parallel()
	gw := demo.NewGateway()
	m := loadedGrid(t, gw, GridOptions{KeepMarks: true})
	moveTo(t, m, "fix/typo")
	press(t, m, "space")

	refresh := press(t, m, "r")
	require.True(t, m.State().Busy())
	require.Contains(t, m.View(), "Refreshing from remote...")

	press(t, m, "r")
	require.Equal(t, "Busy: another operation is in progress", m.Status())
	press(t, m, "space")
	require.Equal(t, "Busy: another operation is in progress", m.Status())
	press(t, m, "d")
	require.Equal(t, "Busy: another operation is in progress", m.Status())

	require.Nil(t, press(t, m, "q"))
	require.False(t, m.quitting, "q must not abandon a running operation")
	require.Contains(t, m.Status(), "ctrl+c to abort")

	// navigation is still allowed
	press(t, m, "down")
	require.Equal(t, "hotfix/cache", m.State().Selected().Name)

	drive(t, m, refresh)
	require.False(t, m.State().Busy())
	require.Equal(t, "✓ Refreshed 11 branches", m.Status())
	require.Equal(t, 1, m.State().MarkedCount(), "eligible marks survive a refresh")

	require.NotNil(t, press(t, m, "q"))
	require.True(t, m.quitting)
}

func TestGridCtrlCQuitsWhileBusy(t *testing.T) {
	t.Parallel()
	gw := demo.NewGateway()
	m := loadedGrid(t, gw, GridOptions{})
	moveTo(t, m, "fix/typo")
	press(t, m, "space", "d", "y")
	require.True(t, m.State().Busy())

	require.Nil(t, press(t, m, "q"))
	require.False(t, m.quitting)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	require.True(t, ok)
	require.True(t, m.quitting)
}

func TestGridRefreshFetchFailure(t *testing.T) {
	t.Parallel()
	gw := demo.NewGateway()
	m := loadedGrid(t, gw, GridOptions{})
	moveTo(t, m, "fix/typo")
	press(t, m, "space")

	gw.FailFetch(errors.New("could not resolve host"))
	drive(t, m, press(t, m, "r"))
	require.Equal(t, "✗ Fetch failed: could not resolve host (1 mark(s) cleared)", m.Status())
	require.Zero(t, m.State().MarkedCount())
}

func TestGridScrolling(t *testing.T) {
	t.Parallel()
	m := loadedGrid(t, demo.NewGateway(), GridOptions{})
	m.Update(tea.WindowSizeMsg{Width: 60, Height: 10})

	view := m.View()
	require.Contains(t, view, "1-4 of 11")
	require.NotContains(t, view, "spike/unmerged")

	moveTo(t, m, "spike/unmerged")
	view = m.View()
	require.Contains(t, view, "spike/unmer")
	require.Contains(t, view, "8-11 of 11")
}

func TestGridProgram(t *testing.T) {
	t.Parallel()
	gw := demo.NewGateway()
	m := NewGridModel(context.Background(), newDemoEngine(gw), GridOptions{RepoName: "reaper-demo"})

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(120, 40))
	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Loaded 11 branches"))
	}, teatest.WithCheckInterval(50*time.Millisecond), teatest.WithDuration(3*time.Second))

	// chore/deps-2023 is the first unprotected row
	tm.Send(tea.KeyMsg{Type: tea.KeyDown})
	tm.Send(tea.KeyMsg{Type: tea.KeyDown})
	tm.Send(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Proceed? (y/n)"))
	}, teatest.WithCheckInterval(50*time.Millisecond), teatest.WithDuration(3*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Successfully deleted 1 branch(es)"))
	}, teatest.WithCheckInterval(50*time.Millisecond), teatest.WithDuration(3*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))

	final, ok := tm.FinalModel(t).(*GridModel)
	require.True(t, ok)
	require.NoError(t, final.Err())
	require.Equal(t, []string{"branch -D chore/deps-2023"}, gw.Calls())
}

func TestGridExternalRefChanges(t *testing.T) {
	t.Parallel()

	t.Run("reloads while browsing", func(t *testing.T) {
		t.Parallel()
		gw := demo.NewGateway()
		w := watch.NewRefWatcher(nil, nil)
		m := loadedGrid(t, gw, GridOptions{Watcher: w})
		gw.AddRemoteBranch("origin", "pushed-by-teammate")

		// The load above opened a debounce window
		time.Sleep(watch.Debounce)
		_, cmd := m.Update(refsChangedMsg{})
		drive(t, m, cmd)

		require.Equal(t, "↻ Branches changed outside reaper", m.Status())
		require.Equal(t, 12, m.State().Len())
		require.NotContains(t, gw.Calls(), "fetch --all --prune")
	})

	t.Run("debounced right after our own load", func(t *testing.T) {
		t.Parallel()
		gw := demo.NewGateway()
		m := loadedGrid(t, gw, GridOptions{Watcher: watch.NewRefWatcher(nil, nil)})
		gw.AddRemoteBranch("origin", "pushed-by-teammate")

		_, cmd := m.Update(refsChangedMsg{})
		drive(t, m, cmd)
		require.Equal(t, "✓ Loaded 11 branches", m.Status())
		require.Equal(t, 11, m.State().Len())
	})

	t.Run("held until the confirmation closes", func(t *testing.T) {
		t.Parallel()
		gw := demo.NewGateway()
		m := loadedGrid(t, gw, GridOptions{Watcher: watch.NewRefWatcher(nil, nil), KeepMarks: true})
		moveTo(t, m, "fix/typo")
		press(t, m, "space", "d")
		require.Equal(t, selection.PhaseConfirming, m.State().Phase())

		gw.AddRemoteBranch("origin", "pushed-by-teammate")
		_, cmd := m.Update(refsChangedMsg{})
		drive(t, m, cmd)
		require.Equal(t, 11, m.State().Len())

		drive(t, m, press(t, m, "n"))
		require.Equal(t, selection.PhaseBrowsing, m.State().Phase())
		require.Equal(t, 12, m.State().Len())
		require.Equal(t, "↻ Branches changed outside reaper", m.Status())
		for _, b := range m.State().Branches() {
			if b.Name == "fix/typo" {
				require.True(t, b.LocalMarked)
			}
		}
	})
}
