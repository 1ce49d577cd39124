package actions

import (
	"context"
	"fmt"
	"strings"

	"reaper.dev/reaper/internal/engine"
	reapererrors "reaper.dev/reaper/internal/errors"
	"reaper.dev/reaper/internal/runtime"
	"reaper.dev/reaper/internal/tui"
)

// loadBranches fills the engine, fetching first when fetch is set.
// A failed fetch is reported and the local view is used.
func loadBranches(gctx context.Context, ctx *runtime.Context, fetch bool) error {
	if !fetch {
		return ctx.Engine.Load(gctx)
	}
	ctx.Splog.Debug("fetching and pruning all remotes")
	res, err := ctx.Engine.Refresh(gctx)
	if err != nil {
		return err
	}
	if res.FetchErr != nil {
		ctx.Splog.Warn("Fetch failed: %s", reapererrors.Message(res.FetchErr))
	}
	return nil
}

// printOutcomes writes one line per request and the note about local
// branches that outlived their deleted remote.
func printOutcomes(splog *tui.Splog, result *engine.DeletionResult) {
	for _, o := range result.Outcomes {
		if o.Kind == engine.OutcomeDeleted {
			splog.Success("%s", o.Message)
		} else {
			splog.Failure("%s", o.Message)
		}
	}
	if len(result.RelatedLocals) > 0 {
		splog.Newline()
		splog.Tip("You may want to delete these corresponding local branches:\n%s", bulletList(result.RelatedLocals))
	}
}

func bulletList(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "  • " + item
	}
	return strings.Join(lines, "\n")
}

func confirmMessage(reqs []engine.DeletionRequest) string {
	remote := 0
	for _, r := range reqs {
		if r.Side == engine.SideRemote {
			remote++
		}
	}
	if remote > 0 {
		return fmt.Sprintf("Delete %d branch(es)? (includes %d REMOTE)", len(reqs), remote)
	}
	return fmt.Sprintf("Delete %d branch(es)?", len(reqs))
}
