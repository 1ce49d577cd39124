package actions

import (
	"context"
	"fmt"

	"reaper.dev/reaper/internal/engine"
	"reaper.dev/reaper/internal/runtime"
	"reaper.dev/reaper/internal/tui"
)

// ListOptions contains options for listing branches
type ListOptions struct {
	// Details adds the tracking and last commit columns
	Details bool
}

// List prints the reconciled branch table and a status summary
func List(gctx context.Context, ctx *runtime.Context, opts ListOptions) error {
	splog := ctx.Splog
	if err := loadBranches(gctx, ctx, ctx.Config.FetchOnStart); err != nil {
		return err
	}

	branches := ctx.Engine.Branches()
	if len(branches) == 0 {
		splog.Info("No branches found")
		return nil
	}

	splog.Page(tui.RenderBranchTable(branches, tui.TableOptions{
		DefaultRemote: ctx.Config.DefaultRemote,
		Details:       opts.Details,
	}))
	splog.Newline()
	splog.Info("%s", summary(branches))

	if orphans := ctx.Engine.Orphans(); len(orphans) > 0 {
		splog.Tip("Run 'reaper delete --gone' to remove %d orphaned branch(es)", len(orphans))
	}
	return nil
}

func summary(branches []*engine.UnifiedBranch) string {
	counts := make(map[engine.Status]int)
	for _, b := range branches {
		counts[b.Status()]++
	}
	return fmt.Sprintf("%d branches: %d synced, %d orphan, %d local, %d remote",
		len(branches),
		counts[engine.StatusSynced],
		counts[engine.StatusOrphan],
		counts[engine.StatusLocal],
		counts[engine.StatusRemote])
}
