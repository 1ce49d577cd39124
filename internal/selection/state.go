// Package selection holds the cursor, marks and confirmation phase of the
// interactive grid, independent of how it is rendered.
package selection

import (
	"context"
	"fmt"

	"reaper.dev/reaper/internal/engine"
	reapererrors "reaper.dev/reaper/internal/errors"
)

// Column is a grid column the cursor can sit on
type Column int

const (
	// ColumnName is the branch name column; nothing can be marked there
	ColumnName Column = iota
	// ColumnLocal is the local side of a branch
	ColumnLocal
	// ColumnRemote is the remote side of a branch
	ColumnRemote
)

// Side maps a column to the branch side it marks
func (c Column) Side() (engine.Side, bool) {
	switch c {
	case ColumnLocal:
		return engine.SideLocal, true
	case ColumnRemote:
		return engine.SideRemote, true
	default:
		return engine.SideLocal, false
	}
}

func (c Column) String() string {
	switch c {
	case ColumnLocal:
		return "local"
	case ColumnRemote:
		return "remote"
	default:
		return "name"
	}
}

// Phase is the interaction phase
type Phase int

const (
	// PhaseBrowsing accepts navigation, marking and delete requests
	PhaseBrowsing Phase = iota
	// PhaseConfirming waits for the user to accept or cancel a Confirmation
	PhaseConfirming
	// PhaseBusy means an operation is running; only navigation is accepted
	PhaseBusy
)

func (p Phase) String() string {
	switch p {
	case PhaseConfirming:
		return "confirming"
	case PhaseBusy:
		return "busy"
	default:
		return "browsing"
	}
}

// WarningKind classifies a confirmation warning
type WarningKind int

const (
	// WarningLocalOnly is a local delete of a branch that never had a remote
	WarningLocalOnly WarningKind = iota
	// WarningRemoteGone is a local delete of a branch whose remote is gone
	WarningRemoteGone
	// WarningNoLocalCopy is a remote delete of a branch with no local copy
	WarningNoLocalCopy
	// WarningBothSides is a delete of both copies of one branch
	WarningBothSides
)

// Warning flags an item in a Confirmation whose deletion cannot be undone
// from another copy.
type Warning struct {
	Kind   WarningKind
	Branch string
}

func (w Warning) String() string {
	switch w.Kind {
	case WarningLocalOnly:
		return fmt.Sprintf("'%s' only exists locally - deletion is permanent!", w.Branch)
	case WarningRemoteGone:
		return fmt.Sprintf("'%s' has no remote backup - deletion is permanent!", w.Branch)
	case WarningNoLocalCopy:
		return fmt.Sprintf("'%s' has no local copy - this work may be lost!", w.Branch)
	case WarningBothSides:
		return fmt.Sprintf("'%s' will be deleted locally and on the remote", w.Branch)
	default:
		return w.Branch
	}
}

// Item is one pending deletion, with the remote alias resolved for display
type Item struct {
	Request engine.DeletionRequest
	Remote  string
}

func (i Item) String() string {
	if i.Request.Side == engine.SideRemote {
		return fmt.Sprintf("[remote] %s/%s", i.Remote, i.Request.Branch)
	}
	return fmt.Sprintf("[local] %s", i.Request.Branch)
}

// Confirmation lists what a delete would do
type Confirmation struct {
	Items    []Item
	Warnings []Warning
}

// Requests returns the deletion requests in display order
func (c *Confirmation) Requests() []engine.DeletionRequest {
	reqs := make([]engine.DeletionRequest, len(c.Items))
	for i, item := range c.Items {
		reqs[i] = item.Request
	}
	return reqs
}

// Executor runs deletions and hands back the reloaded working set.
// *engine.Engine satisfies it.
type Executor interface {
	Delete(ctx context.Context, requests []engine.DeletionRequest) (*engine.DeletionResult, error)
	Snapshot() []*engine.UnifiedBranch
}

// Options configures a State
type Options struct {
	// DefaultRemote labels remote items whose branch records no alias
	DefaultRemote string
	// DropMarksOnReload clears every mark on an explicit refresh instead of
	// keeping those that are still eligible
	DropMarksOnReload bool
}

// State is the selection state machine. It owns its copy of the branches;
// marks live on that copy.
type State struct {
	policy   engine.Policy
	opts     Options
	branches []*engine.UnifiedBranch

	row   int
	col   Column
	phase Phase
	// resume is the phase to return to when a busy operation ends
	resume  Phase
	pending *Confirmation
}

// New creates a State over branches. The cursor starts on the local column
// of the first row.
func New(policy engine.Policy, branches []*engine.UnifiedBranch, opts Options) *State {
	if opts.DefaultRemote == "" {
		opts.DefaultRemote = engine.DefaultRemote
	}
	return &State{
		policy:   policy,
		opts:     opts,
		branches: branches,
		col:      ColumnLocal,
	}
}

// Branches returns the rows in display order
func (s *State) Branches() []*engine.UnifiedBranch {
	return s.branches
}

// Len returns the number of rows
func (s *State) Len() int {
	return len(s.branches)
}

// Cursor returns the cursor position
func (s *State) Cursor() (int, Column) {
	return s.row, s.col
}

// Phase returns the current phase
func (s *State) Phase() Phase {
	return s.phase
}

// Pending returns the confirmation awaiting an answer, or nil
func (s *State) Pending() *Confirmation {
	return s.pending
}

// Policy returns the policy marks are checked against
func (s *State) Policy() engine.Policy {
	return s.policy
}

// Selected returns the branch under the cursor, or nil when there are no rows
func (s *State) Selected() *engine.UnifiedBranch {
	if s.row < 0 || s.row >= len(s.branches) {
		return nil
	}
	return s.branches[s.row]
}

// MoveUp moves the cursor one row up, stopping at the first row
func (s *State) MoveUp() {
	if s.phase == PhaseConfirming {
		return
	}
	if s.row > 0 {
		s.row--
	}
}

// MoveDown moves the cursor one row down, stopping at the last row
func (s *State) MoveDown() {
	if s.phase == PhaseConfirming {
		return
	}
	if s.row < len(s.branches)-1 {
		s.row++
	}
}

// MoveLeft moves the cursor one column left, stopping at the name column
func (s *State) MoveLeft() {
	if s.phase == PhaseConfirming {
		return
	}
	if s.col > ColumnName {
		s.col--
	}
}

// MoveRight moves the cursor one column right, stopping at the remote column
func (s *State) MoveRight() {
	if s.phase == PhaseConfirming {
		return
	}
	if s.col < ColumnRemote {
		s.col++
	}
}

// Toggle flips the mark under the cursor. It returns a PolicyError when the
// side may not be deleted and leaves state unchanged.
func (s *State) Toggle() error {
	switch s.phase {
	case PhaseBusy:
		return reapererrors.ErrBusy
	case PhaseConfirming:
		return fmt.Errorf("cannot change marks while confirming")
	}

	b := s.Selected()
	if b == nil {
		return reapererrors.ErrNothingDeletable
	}
	side, ok := s.col.Side()
	if !ok {
		return reapererrors.ErrNoSideSelected
	}

	// Unmarking is always allowed so a stale mark can be cleared
	if b.Marked(side) {
		b.SetMarked(side, false)
		return nil
	}
	if err := s.policy.Check(b, side); err != nil {
		return err
	}
	b.SetMarked(side, true)
	return nil
}

// MarkedCount returns how many sides are marked
func (s *State) MarkedCount() int {
	n := 0
	for _, b := range s.branches {
		if b.LocalMarked {
			n++
		}
		if b.RemoteMarked {
			n++
		}
	}
	return n
}

// RequestDelete builds a Confirmation from the marks and enters the
// confirming phase.
func (s *State) RequestDelete() (*Confirmation, error) {
	switch s.phase {
	case PhaseBusy:
		return nil, reapererrors.ErrBusy
	case PhaseConfirming:
		return s.pending, nil
	}

	if !s.policy.AnyDeletable(s.branches) {
		return nil, reapererrors.ErrNothingDeletable
	}

	conf := &Confirmation{}
	for _, b := range s.branches {
		if b.LocalMarked {
			conf.Items = append(conf.Items, Item{Request: engine.DeletionRequest{Branch: b.Name, Side: engine.SideLocal}})
			if !b.HasRemote {
				kind := WarningLocalOnly
				if b.IsGone {
					kind = WarningRemoteGone
				}
				conf.Warnings = append(conf.Warnings, Warning{Kind: kind, Branch: b.Name})
			}
		}
		if b.RemoteMarked {
			conf.Items = append(conf.Items, Item{
				Request: engine.DeletionRequest{Branch: b.Name, Side: engine.SideRemote},
				Remote:  b.RemoteOr(s.opts.DefaultRemote),
			})
			if !b.HasLocal {
				conf.Warnings = append(conf.Warnings, Warning{Kind: WarningNoLocalCopy, Branch: b.Name})
			}
		}
		if b.LocalMarked && b.RemoteMarked {
			conf.Warnings = append(conf.Warnings, Warning{Kind: WarningBothSides, Branch: b.Name})
		}
	}

	if len(conf.Items) == 0 {
		return nil, reapererrors.ErrNothingMarked
	}

	s.pending = conf
	s.phase = PhaseConfirming
	return conf, nil
}

// Cancel abandons a pending confirmation. Marks are kept.
func (s *State) Cancel() {
	if s.phase != PhaseConfirming {
		return
	}
	s.pending = nil
	s.phase = PhaseBrowsing
}

// Accept takes the pending confirmation and enters the busy phase. The
// caller runs the requests and then calls Finish.
func (s *State) Accept() ([]engine.DeletionRequest, error) {
	switch s.phase {
	case PhaseBusy:
		return nil, reapererrors.ErrBusy
	case PhaseBrowsing:
		return nil, fmt.Errorf("no deletion awaiting confirmation")
	}

	reqs := s.pending.Requests()
	s.pending = nil
	s.phase = PhaseBusy
	s.resume = PhaseBrowsing
	return reqs, nil
}

// Finish replaces the rows after a deletion, clears every mark and keeps the
// cursor row, clamped to the new row count.
func (s *State) Finish(branches []*engine.UnifiedBranch) {
	for _, b := range branches {
		b.LocalMarked = false
		b.RemoteMarked = false
	}
	s.branches = branches
	s.clamp()
	s.pending = nil
	s.phase = PhaseBrowsing
}

// Confirm runs the pending confirmation through exec and reloads from its
// snapshot. Per-item failures are in the result; the error reports a
// failed reload or a state that had nothing to confirm.
func (s *State) Confirm(ctx context.Context, exec Executor) (*engine.DeletionResult, error) {
	reqs, err := s.Accept()
	if err != nil {
		return nil, err
	}
	result, err := exec.Delete(ctx, reqs)
	s.Finish(exec.Snapshot())
	return result, err
}

// Begin enters the busy phase for an operation other than a confirmed delete.
// Only one operation may be outstanding.
func (s *State) Begin() error {
	if s.phase == PhaseBusy {
		return reapererrors.ErrBusy
	}
	s.resume = s.phase
	s.phase = PhaseBusy
	return nil
}

// End leaves the busy phase
func (s *State) End() {
	if s.phase != PhaseBusy {
		return
	}
	s.phase = s.resume
	if s.phase == PhaseConfirming && s.pending == nil {
		s.phase = PhaseBrowsing
	}
}

// Busy reports whether an operation is outstanding
func (s *State) Busy() bool {
	return s.phase == PhaseBusy
}

// Reload replaces the rows after an explicit refresh. Marks whose side is
// still deletable on the new rows are carried over; the rest are dropped
// and counted.
func (s *State) Reload(branches []*engine.UnifiedBranch) int {
	fresh := make(map[string]*engine.UnifiedBranch, len(branches))
	for _, b := range branches {
		b.LocalMarked = false
		b.RemoteMarked = false
		fresh[b.Name] = b
	}

	dropped := 0
	for _, old := range s.branches {
		for _, side := range []engine.Side{engine.SideLocal, engine.SideRemote} {
			if !old.Marked(side) {
				continue
			}
			nb, ok := fresh[old.Name]
			if s.opts.DropMarksOnReload || !ok || !s.policy.CanDelete(nb, side) {
				dropped++
				continue
			}
			nb.SetMarked(side, true)
		}
	}

	s.branches = branches
	s.clamp()
	if s.pending != nil {
		// The confirmation was built from rows that no longer exist
		s.pending = nil
		if s.phase == PhaseConfirming {
			s.phase = PhaseBrowsing
		}
		if s.resume == PhaseConfirming {
			s.resume = PhaseBrowsing
		}
	}
	return dropped
}

func (s *State) clamp() {
	if s.row >= len(s.branches) {
		s.row = len(s.branches) - 1
	}
	if s.row < 0 {
		s.row = 0
	}
}
