package engine

import "sort"

// Status classifies a branch by where it exists
type Status int

const (
	// StatusSynced means the branch exists locally and on a remote
	StatusSynced Status = iota
	// StatusOrphan means the local branch tracks a remote branch that is gone
	StatusOrphan
	// StatusLocal means the branch only exists locally and never tracked a remote
	StatusLocal
	// StatusRemote means the branch only exists on a remote
	StatusRemote
)

func (s Status) String() string {
	switch s {
	case StatusSynced:
		return "synced"
	case StatusOrphan:
		return "orphan"
	case StatusLocal:
		return "local"
	case StatusRemote:
		return "remote"
	default:
		return "unknown"
	}
}

// Side names one half of a branch
type Side int

const (
	// SideLocal is the branch in the local repository
	SideLocal Side = iota
	// SideRemote is the branch on its remote
	SideRemote
)

func (s Side) String() string {
	if s == SideRemote {
		return "remote"
	}
	return "local"
}

// UnifiedBranch merges what is known about one branch name on both sides.
// A fresh set is built on every reconciliation.
type UnifiedBranch struct {
	Name        string
	HasLocal    bool
	HasRemote   bool
	IsGone      bool
	IsCurrent   bool
	IsProtected bool
	RemoteName  string // remote alias, e.g. "origin"; empty when unknown

	// Tracking is the parsed upstream annotation of the local branch, if any
	Tracking *Tracking
	// Comment is the trailing subject text from `git branch -vv`
	Comment string

	LocalMarked  bool
	RemoteMarked bool
}

// Status derives the branch status from (HasLocal, HasRemote, IsGone) only.
func (b *UnifiedBranch) Status() Status {
	switch {
	case b.HasLocal && b.HasRemote:
		return StatusSynced
	case b.HasLocal && b.IsGone:
		return StatusOrphan
	case b.HasLocal:
		return StatusLocal
	default:
		return StatusRemote
	}
}

// Has reports whether the given side exists
func (b *UnifiedBranch) Has(side Side) bool {
	if side == SideRemote {
		return b.HasRemote
	}
	return b.HasLocal
}

// Marked reports whether the given side is marked for deletion
func (b *UnifiedBranch) Marked(side Side) bool {
	if side == SideRemote {
		return b.RemoteMarked
	}
	return b.LocalMarked
}

// SetMarked sets the mark bit for one side
func (b *UnifiedBranch) SetMarked(side Side, marked bool) {
	if side == SideRemote {
		b.RemoteMarked = marked
		return
	}
	b.LocalMarked = marked
}

// RemoteOr returns the recorded remote alias or fallback when none is known
func (b *UnifiedBranch) RemoteOr(fallback string) string {
	if b.RemoteName != "" {
		return b.RemoteName
	}
	return fallback
}

// Clone returns a deep copy of the branch
func (b *UnifiedBranch) Clone() *UnifiedBranch {
	c := *b
	if b.Tracking != nil {
		t := *b.Tracking
		c.Tracking = &t
	}
	return &c
}

// ProtectedSet is the set of branch names that may never be deleted
type ProtectedSet map[string]struct{}

// DefaultProtectedBranches are protected when no configuration says otherwise
var DefaultProtectedBranches = []string{"main", "master", "develop", "development"}

// NewProtectedSet builds a set from names, ignoring empty strings
func NewProtectedSet(names ...string) ProtectedSet {
	set := make(ProtectedSet, len(names))
	for _, name := range names {
		if name != "" {
			set[name] = struct{}{}
		}
	}
	return set
}

// Contains reports whether name is protected
func (p ProtectedSet) Contains(name string) bool {
	_, ok := p[name]
	return ok
}

// With returns a new set holding p and names
func (p ProtectedSet) With(names ...string) ProtectedSet {
	out := make(ProtectedSet, len(p)+len(names))
	for name := range p {
		out[name] = struct{}{}
	}
	for _, name := range names {
		if name != "" {
			out[name] = struct{}{}
		}
	}
	return out
}

// Names returns the protected names in sorted order
func (p ProtectedSet) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
