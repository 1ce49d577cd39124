package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"reaper.dev/reaper/internal/engine"
)

// TableOptions configures RenderBranchTable
type TableOptions struct {
	DefaultRemote string
	// Details adds the tracking and last commit columns
	Details bool
}

// RenderBranchTable renders the reconciled branches as a bordered table,
// in working set order.
func RenderBranchTable(branches []*engine.UnifiedBranch, opts TableOptions) string {
	if opts.DefaultRemote == "" {
		opts.DefaultRemote = engine.DefaultRemote
	}

	headers := []string{"Branch", "Local", "Remote", "Status"}
	if opts.Details {
		headers = append(headers, "Tracking", "Last Commit")
	}

	rows := make([][]string, 0, len(branches))
	for _, b := range branches {
		row := []string{
			NameCell(b),
			LocalCell(b),
			RemoteCell(b, opts.DefaultRemote),
			b.Status().String(),
		}
		if opts.Details {
			row = append(row, TrackingCell(b), truncate(b.Comment, 40))
		}
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return base.Inherit(headerStyle)
			}
			if row < 0 || row >= len(branches) {
				return base
			}
			b := branches[row]
			switch {
			case b.IsProtected:
				return base.Inherit(dimStyle)
			case col == 1 && b.LocalMarked, col == 2 && b.RemoteMarked:
				return base.Inherit(markedStyle)
			case col == 1 && !b.HasLocal, col == 2 && !b.HasRemote:
				return base.Inherit(dimStyle)
			case col == 3:
				return base.Foreground(StatusColor(b.Status()))
			case col >= 4:
				return base.Inherit(dimStyle)
			}
			return base
		})

	return t.String()
}
