package tui

import (
	"reaper.dev/reaper/internal/engine"
)

const lockGlyph = "🔒"

// NameCell is the text of the branch column; protected names carry a lock
func NameCell(b *engine.UnifiedBranch) string {
	if b.IsProtected {
		return b.Name + " " + lockGlyph
	}
	return b.Name
}

// LocalCell is the text of the local column
func LocalCell(b *engine.UnifiedBranch) string {
	switch {
	case b.LocalMarked:
		return "[DEL]"
	case b.HasLocal && b.IsCurrent:
		return "✓ *"
	case b.HasLocal:
		return "✓"
	case b.IsGone:
		return "GONE"
	default:
		return "nonexistent"
	}
}

// RemoteCell is the text of the remote column. defaultRemote names the alias
// shown for branches that record none.
func RemoteCell(b *engine.UnifiedBranch, defaultRemote string) string {
	remote := b.RemoteOr(defaultRemote)
	switch {
	case b.RemoteMarked:
		return "[DEL] " + remote
	case b.HasRemote:
		return "✓ " + remote
	case b.IsGone:
		return "GONE"
	default:
		return "nonexistent"
	}
}

// TrackingCell is the upstream annotation, or "-" when the branch tracks nothing
func TrackingCell(b *engine.UnifiedBranch) string {
	if b.Tracking == nil {
		return "-"
	}
	return b.Tracking.String()
}
