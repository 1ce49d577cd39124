package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"reaper.dev/reaper/internal/engine"
	reapererrors "reaper.dev/reaper/internal/errors"
	"reaper.dev/reaper/internal/selection"
	"reaper.dev/reaper/internal/watch"
)

// GridOptions configures the branch grid
type GridOptions struct {
	RepoName      string
	DefaultRemote string
	// FetchOnStart fetches and prunes before the first load
	FetchOnStart bool
	// KeepMarks keeps still-eligible marks across refreshes
	KeepMarks bool
	// Watcher reloads the grid when refs change outside reaper; may be nil
	Watcher *watch.RefWatcher
}

// loadedMsg reports a finished load or refresh
type loadedMsg struct {
	branches []*engine.UnifiedBranch
	fetched  bool
	external bool
	fetchErr error
	err      error
}

// deletedMsg reports a finished deletion batch
type deletedMsg struct {
	result   *engine.DeletionResult
	branches []*engine.UnifiedBranch
	err      error
}

// refsChangedMsg is sent when the watcher sees ref changes
type refsChangedMsg struct{}

// GridModel is the bubbletea model for the interactive branch grid.
// The engine is only touched from commands, one at a time; rendering and key
// handling work on the selection state's own copies of the branches.
type GridModel struct {
	ctx     context.Context
	engine  *engine.Engine
	state   *selection.State
	opts    GridOptions
	keys    gridKeyMap
	help    help.Model
	spinner spinner.Model

	status        string
	busyMsg       string
	loaded        bool
	pendingReload bool
	quitting      bool
	err           error

	width  int
	height int
	offset int
}

// NewGridModel creates a grid over eng. The first load starts in Init.
func NewGridModel(ctx context.Context, eng *engine.Engine, opts GridOptions) *GridModel {
	if opts.DefaultRemote == "" {
		opts.DefaultRemote = engine.DefaultRemote
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	state := selection.New(eng.Policy(), nil, selection.Options{
		DefaultRemote:     opts.DefaultRemote,
		DropMarksOnReload: !opts.KeepMarks,
	})
	// The first load owns the single operation slot
	_ = state.Begin()

	busyMsg := "Loading branches..."
	if opts.FetchOnStart {
		busyMsg = "Fetching from remote..."
	}

	return &GridModel{
		ctx:     ctx,
		engine:  eng,
		state:   state,
		opts:    opts,
		keys:    defaultGridKeys,
		help:    help.New(),
		spinner: s,
		busyMsg: busyMsg,
	}
}

// State exposes the selection state for tests
func (m *GridModel) State() *selection.State {
	return m.state
}

// Status returns the current status line message
func (m *GridModel) Status() string {
	return m.status
}

// Err returns the error that ended the session, if any
func (m *GridModel) Err() error {
	return m.err
}

func (m *GridModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCmd(m.opts.FetchOnStart, false), m.listenCmd())
}

func (m *GridModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.scrollToCursor()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.state.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadedMsg:
		return m.handleLoaded(msg)

	case deletedMsg:
		return m.handleDeleted(msg)

	case refsChangedMsg:
		return m.handleRefsChanged()
	}
	return m, nil
}

func (m *GridModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}

	if m.state.Phase() == selection.PhaseConfirming {
		switch {
		case key.Matches(msg, m.keys.Yes):
			return m.startDelete()
		case key.Matches(msg, m.keys.No):
			m.state.Cancel()
			m.status = "Deletion cancelled"
			return m, m.reloadIfPending()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		// leaving mid-batch would abandon the remaining requests
		if m.state.Busy() {
			m.status = "Busy: wait for the current operation to finish (ctrl+c to abort)"
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.state.MoveUp()
		m.scrollToCursor()
	case key.Matches(msg, m.keys.Down):
		m.state.MoveDown()
		m.scrollToCursor()
	case key.Matches(msg, m.keys.Left):
		m.state.MoveLeft()
	case key.Matches(msg, m.keys.Right):
		m.state.MoveRight()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Toggle):
		m.toggle()
	case key.Matches(msg, m.keys.Delete):
		m.requestDelete()
	case key.Matches(msg, m.keys.Refresh):
		return m.startRefresh()
	}
	return m, nil
}

func (m *GridModel) toggle() {
	if !m.loaded {
		return
	}
	err := m.state.Toggle()
	b := m.state.Selected()
	switch {
	case err == nil:
		_, col := m.state.Cursor()
		side, _ := col.Side()
		verb := "Unmarked"
		if b.Marked(side) {
			verb = "Marked"
		}
		m.status = fmt.Sprintf("%s %s: %s", verb, side, b.Name)
	case errors.Is(err, reapererrors.ErrBusy):
		m.status = "Busy: " + err.Error()
	case errors.Is(err, reapererrors.ErrNoSideSelected):
		m.status = "Use ← → to select Local or Remote column"
	case errors.Is(err, reapererrors.ErrNoLocalBranch):
		m.status = "No local branch to delete"
	case errors.Is(err, reapererrors.ErrNoRemoteBranch):
		m.status = "No remote branch to delete"
	default:
		m.status = capitalize(reapererrors.Message(err))
	}
}

func (m *GridModel) requestDelete() {
	_, err := m.state.RequestDelete()
	switch {
	case err == nil:
		m.status = ""
	case errors.Is(err, reapererrors.ErrBusy):
		m.status = "Busy: " + err.Error()
	case errors.Is(err, reapererrors.ErrNothingDeletable):
		m.status = "⚠ No branches can be deleted (all protected or current)"
	case errors.Is(err, reapererrors.ErrNothingMarked):
		m.status = "No branches marked for deletion (use Space to mark)"
	default:
		m.status = capitalize(err.Error())
	}
}

func (m *GridModel) startRefresh() (tea.Model, tea.Cmd) {
	if err := m.state.Begin(); err != nil {
		m.status = "Busy: " + err.Error()
		return m, nil
	}
	m.busyMsg = "Refreshing from remote..."
	return m, tea.Batch(m.spinner.Tick, m.loadCmd(true, false))
}

func (m *GridModel) startDelete() (tea.Model, tea.Cmd) {
	reqs, err := m.state.Accept()
	if err != nil {
		m.status = capitalize(err.Error())
		return m, nil
	}
	m.busyMsg = fmt.Sprintf("Deleting %d branch(es)...", len(reqs))
	return m, tea.Batch(m.spinner.Tick, m.deleteCmd(reqs))
}

func (m *GridModel) handleLoaded(msg loadedMsg) (tea.Model, tea.Cmd) {
	m.state.End()
	m.stampWatcher()

	if msg.err != nil {
		if !m.loaded {
			// Nothing to show without a first load
			m.err = msg.err
			m.quitting = true
			return m, tea.Quit
		}
		m.status = "✗ " + reapererrors.Message(msg.err)
		return m, nil
	}

	dropped := m.state.Reload(msg.branches)
	m.scrollToCursor()

	switch {
	case !m.loaded:
		m.status = fmt.Sprintf("✓ Loaded %d branches", m.state.Len())
		if msg.fetchErr != nil {
			m.status += " (fetch failed: " + reapererrors.Message(msg.fetchErr) + ")"
		}
	case msg.external:
		m.status = "↻ Branches changed outside reaper"
	case msg.fetchErr != nil:
		m.status = "✗ Fetch failed: " + reapererrors.Message(msg.fetchErr)
	default:
		m.status = fmt.Sprintf("✓ Refreshed %d branches", m.state.Len())
	}
	if dropped > 0 {
		m.status += fmt.Sprintf(" (%d mark(s) cleared)", dropped)
	}
	m.loaded = true

	return m, m.reloadIfPending()
}

func (m *GridModel) handleDeleted(msg deletedMsg) (tea.Model, tea.Cmd) {
	m.state.Finish(msg.branches)
	m.stampWatcher()
	m.scrollToCursor()

	res := msg.result
	switch {
	case res == nil:
		m.status = "✗ " + reapererrors.Message(msg.err)
	case res.HasErrors():
		m.status = fmt.Sprintf("Deleted %d, Errors: %d", res.Succeeded, res.Failed+res.Skipped)
		if errs := res.Errors(); len(errs) > 0 {
			m.status += " | " + errs[0]
		}
	default:
		m.status = fmt.Sprintf("Successfully deleted %d branch(es)", res.Succeeded)
	}
	if res != nil && len(res.RelatedLocals) > 0 {
		m.status += " | Local copies remain: " + strings.Join(res.RelatedLocals, ", ")
	}
	if res != nil && msg.err != nil {
		m.status += " | " + reapererrors.Message(msg.err)
	}

	return m, m.reloadIfPending()
}

func (m *GridModel) handleRefsChanged() (tea.Model, tea.Cmd) {
	w := m.opts.Watcher
	w.ResetWaiting()
	listen := m.listenCmd()

	if m.state.Phase() != selection.PhaseBrowsing || !m.loaded {
		m.pendingReload = true
		return m, listen
	}
	if !w.ShouldRefresh(time.Now()) {
		return m, listen
	}
	return m, tea.Batch(listen, m.startReload())
}

// reloadIfPending runs a watcher reload that arrived while busy or confirming
func (m *GridModel) reloadIfPending() tea.Cmd {
	if !m.pendingReload || m.state.Phase() != selection.PhaseBrowsing {
		return nil
	}
	m.pendingReload = false
	return m.startReload()
}

func (m *GridModel) startReload() tea.Cmd {
	if err := m.state.Begin(); err != nil {
		return nil
	}
	m.busyMsg = "Reloading branches..."
	return tea.Batch(m.spinner.Tick, m.loadCmd(false, true))
}

// stampWatcher starts the debounce window so our own ref writes do not
// bounce back as an external change. Events queued while busy were ours.
func (m *GridModel) stampWatcher() {
	if m.opts.Watcher != nil {
		m.opts.Watcher.ShouldRefresh(time.Now())
		m.pendingReload = false
	}
}

func (m *GridModel) loadCmd(fetch, external bool) tea.Cmd {
	eng, ctx := m.engine, m.ctx
	return func() tea.Msg {
		msg := loadedMsg{fetched: fetch, external: external}
		if fetch {
			res, err := eng.Refresh(ctx)
			msg.fetchErr, msg.err = res.FetchErr, err
		} else {
			msg.err = eng.Load(ctx)
		}
		if msg.err == nil {
			msg.branches = eng.Snapshot()
		}
		return msg
	}
}

func (m *GridModel) deleteCmd(reqs []engine.DeletionRequest) tea.Cmd {
	eng, ctx := m.engine, m.ctx
	return func() tea.Msg {
		result, err := eng.Delete(ctx, reqs)
		return deletedMsg{result: result, err: err, branches: eng.Snapshot()}
	}
}

func (m *GridModel) listenCmd() tea.Cmd {
	if m.opts.Watcher == nil {
		return nil
	}
	ch := m.opts.Watcher.NextEvent()
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return refsChangedMsg{}
	}
}

// visibleRows is how many branch rows fit on screen; 0 means all
func (m *GridModel) visibleRows() int {
	if m.height == 0 {
		return 0
	}
	// title, blank, header, blank, status, help
	rows := m.height - 6
	if m.help.ShowAll {
		rows -= 3
	}
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m *GridModel) scrollToCursor() {
	visible := m.visibleRows()
	if visible == 0 {
		m.offset = 0
		return
	}
	row, _ := m.state.Cursor()
	if row < m.offset {
		m.offset = row
	}
	if row >= m.offset+visible {
		m.offset = row - visible + 1
	}
	if maxOffset := m.state.Len() - visible; m.offset > maxOffset {
		m.offset = max(maxOffset, 0)
	}
}

func (m *GridModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	title := titleStyle.Render("🌾 Branch Reaper")
	if m.opts.RepoName != "" {
		title += dimStyle.Render("  " + m.opts.RepoName)
	}
	sb.WriteString(title + "\n\n")

	if pending := m.state.Pending(); pending != nil && m.state.Phase() == selection.PhaseConfirming {
		sb.WriteString(m.renderConfirmation(pending))
		sb.WriteString("\n\n")
		sb.WriteString(m.help.ShortHelpView(m.keys.confirmHelp()))
		return sb.String()
	}

	if m.loaded {
		sb.WriteString(m.renderTable())
	}
	sb.WriteString("\n")
	sb.WriteString(m.renderStatus())
	sb.WriteString("\n")
	sb.WriteString(m.help.View(m.keys))
	return sb.String()
}

func (m *GridModel) renderStatus() string {
	var line string
	if m.state.Busy() {
		line = m.spinner.View() + " " + m.busyMsg
	} else {
		line = m.status
	}
	if n := m.state.MarkedCount(); n > 0 {
		if line != "" {
			line += " | "
		}
		line += fmt.Sprintf("Marked for deletion: %d", n)
	}
	return line
}

type gridColumns struct {
	name, local, remote, status int
}

func (m *GridModel) columnWidths(branches []*engine.UnifiedBranch) gridColumns {
	cols := gridColumns{
		name:   lipgloss.Width("Branch"),
		local:  lipgloss.Width("nonexistent"),
		remote: lipgloss.Width("Remote"),
		status: lipgloss.Width("synced"),
	}
	for _, b := range branches {
		cols.name = max(cols.name, lipgloss.Width(NameCell(b)))
		// room for the [DEL] prefix when the cell gets marked
		cols.remote = max(cols.remote, lipgloss.Width("[DEL] "+b.RemoteOr(m.opts.DefaultRemote)))
	}
	if m.width > 0 {
		fixed := cols.local + cols.remote + cols.status + 3*2
		if avail := m.width - fixed; avail < cols.name {
			cols.name = max(avail, 10)
		}
	}
	return cols
}

func (m *GridModel) renderTable() string {
	branches := m.state.Branches()
	if len(branches) == 0 {
		return dimStyle.Render("No branches found") + "\n"
	}

	cols := m.columnWidths(branches)
	cursorRow, cursorCol := m.state.Cursor()

	var sb strings.Builder
	sb.WriteString(headerStyle.Render(strings.Join([]string{
		fit("Branch", cols.name),
		fit("Local", cols.local),
		fit("Remote", cols.remote),
		fit("Status", cols.status),
	}, "  ")))
	sb.WriteString("\n")

	start, end := 0, len(branches)
	if visible := m.visibleRows(); visible > 0 {
		start = m.offset
		end = min(start+visible, len(branches))
	}

	for i := start; i < end; i++ {
		b := branches[i]
		cells := []struct {
			text  string
			width int
			style lipgloss.Style
			col   selection.Column
		}{
			{NameCell(b), cols.name, lipgloss.NewStyle(), selection.ColumnName},
			{LocalCell(b), cols.local, sideStyle(b, engine.SideLocal), selection.ColumnLocal},
			{RemoteCell(b, m.opts.DefaultRemote), cols.remote, sideStyle(b, engine.SideRemote), selection.ColumnRemote},
			{b.Status().String(), cols.status, lipgloss.NewStyle().Foreground(StatusColor(b.Status())), -1},
		}

		parts := make([]string, len(cells))
		for j, c := range cells {
			style := c.style
			if b.IsProtected {
				style = dimStyle
			}
			if i == cursorRow && c.col == cursorCol {
				style = style.Inherit(cursorStyle)
			}
			parts[j] = style.Render(fit(c.text, c.width))
		}
		sb.WriteString(strings.Join(parts, "  "))
		sb.WriteString("\n")
	}

	if end-start < len(branches) {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("%d-%d of %d", start+1, end, len(branches))))
		sb.WriteString("\n")
	}
	return sb.String()
}

func sideStyle(b *engine.UnifiedBranch, side engine.Side) lipgloss.Style {
	switch {
	case b.Marked(side):
		return markedStyle
	case !b.Has(side):
		return dimStyle
	default:
		return lipgloss.NewStyle()
	}
}

func (m *GridModel) renderConfirmation(c *selection.Confirmation) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Branches to delete:"))
	for _, item := range c.Items {
		sb.WriteString("\n  • " + item.String())
	}
	if len(c.Warnings) > 0 {
		sb.WriteString("\n\n" + warningStyle.Render("Warnings:"))
		for _, w := range c.Warnings {
			sb.WriteString("\n  ⚠ " + w.String())
		}
	}
	sb.WriteString("\n\n" + titleStyle.Render("Proceed? (y/n)"))
	return dialogStyle.Render(sb.String())
}

// RunGrid runs the grid until the user quits
func RunGrid(ctx context.Context, eng *engine.Engine, opts GridOptions) error {
	m := NewGridModel(ctx, eng, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return err
	}
	if gm, ok := final.(*GridModel); ok && gm.err != nil {
		return gm.err
	}
	return nil
}
