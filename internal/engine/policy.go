package engine

import (
	reapererrors "reaper.dev/reaper/internal/errors"
)

// Policy decides which sides of a branch may be deleted.
type Policy struct {
	Protected ProtectedSet
}

// NewPolicy creates a Policy protecting the given names
func NewPolicy(protected ProtectedSet) Policy {
	if protected == nil {
		protected = NewProtectedSet()
	}
	return Policy{Protected: protected}
}

// IsProtected reports whether the branch is protected, either by its own
// flag or by name. The name check covers branches built outside Reconcile.
func (p Policy) IsProtected(b *UnifiedBranch) bool {
	return b.IsProtected || p.Protected.Contains(b.Name)
}

// CanDeleteLocal reports hasLocal && !isCurrent && !isProtected
func (p Policy) CanDeleteLocal(b *UnifiedBranch) bool {
	return p.CheckLocal(b) == nil
}

// CanDeleteRemote reports hasRemote && !isProtected
func (p Policy) CanDeleteRemote(b *UnifiedBranch) bool {
	return p.CheckRemote(b) == nil
}

// CanDelete dispatches on side
func (p Policy) CanDelete(b *UnifiedBranch, side Side) bool {
	return p.Check(b, side) == nil
}

// CheckLocal returns a PolicyError explaining why the local side may not be deleted
func (p Policy) CheckLocal(b *UnifiedBranch) error {
	switch {
	case p.IsProtected(b):
		return reapererrors.NewPolicyError(b.Name, SideLocal.String(), reapererrors.ErrProtectedBranch)
	case b.IsCurrent:
		return reapererrors.NewPolicyError(b.Name, SideLocal.String(), reapererrors.ErrCurrentBranch)
	case !b.HasLocal:
		return reapererrors.NewPolicyError(b.Name, SideLocal.String(), reapererrors.ErrNoLocalBranch)
	}
	return nil
}

// CheckRemote returns a PolicyError explaining why the remote side may not be deleted
func (p Policy) CheckRemote(b *UnifiedBranch) error {
	switch {
	case p.IsProtected(b):
		return reapererrors.NewPolicyError(b.Name, SideRemote.String(), reapererrors.ErrProtectedBranch)
	case !b.HasRemote:
		return reapererrors.NewPolicyError(b.Name, SideRemote.String(), reapererrors.ErrNoRemoteBranch)
	}
	return nil
}

// Check dispatches on side
func (p Policy) Check(b *UnifiedBranch, side Side) error {
	if side == SideRemote {
		return p.CheckRemote(b)
	}
	return p.CheckLocal(b)
}

// AnyDeletable reports whether at least one side of one branch may be deleted
func (p Policy) AnyDeletable(branches []*UnifiedBranch) bool {
	for _, b := range branches {
		if p.CanDeleteLocal(b) || p.CanDeleteRemote(b) {
			return true
		}
	}
	return false
}
