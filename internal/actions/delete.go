package actions

import (
	"context"
	"errors"
	"fmt"

	"reaper.dev/reaper/internal/engine"
	reapererrors "reaper.dev/reaper/internal/errors"
	"reaper.dev/reaper/internal/runtime"
	"reaper.dev/reaper/internal/tui"
)

// DeleteOptions contains options for deleting branches
type DeleteOptions struct {
	// Branches are the names to delete
	Branches []string
	Local    bool
	Remote   bool
	// Gone deletes every local branch whose upstream was pruned
	Gone bool
	// Yes skips the confirmation
	Yes      bool
	Prompter tui.Prompter
}

// ErrDeletionFailed is returned when at least one side could not be deleted
var ErrDeletionFailed = errors.New("some branches could not be deleted")

// Delete deletes the requested sides without the interactive menu.
// Every request is checked against the policy before anything runs, so a
// refused request means nothing was deleted.
func Delete(gctx context.Context, ctx *runtime.Context, opts DeleteOptions) (*engine.DeletionResult, error) {
	splog := ctx.Splog

	if len(opts.Branches) == 0 && !opts.Gone {
		return nil, fmt.Errorf("no branches specified (pass names or --gone)")
	}

	if err := loadBranches(gctx, ctx, ctx.Config.FetchOnStart); err != nil {
		return nil, err
	}

	reqs, err := buildRequests(ctx, opts)
	if err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		splog.Info("No orphaned branches to delete")
		return nil, nil
	}

	splog.Info("%s", tui.ColorBold("Branches to delete:"))
	items := make([]string, len(reqs))
	for i, r := range reqs {
		items[i] = requestLabel(ctx, r)
	}
	splog.Info("%s", bulletList(items))

	if !opts.Yes {
		if opts.Prompter == nil {
			return nil, tui.ErrInteractiveDisabled
		}
		ok, err := opts.Prompter.Confirm(confirmMessage(reqs), false)
		if err != nil {
			return nil, err
		}
		if !ok {
			splog.Info("%s", tui.ColorDim("Cancelled"))
			return nil, tui.ErrCanceled
		}
	}

	result, err := ctx.Engine.Delete(gctx, reqs)
	if result != nil {
		printOutcomes(splog, result)
	}
	if err != nil {
		return result, err
	}
	if result.HasErrors() {
		return result, fmt.Errorf("%w: %d of %d failed", ErrDeletionFailed, result.Failed+result.Skipped, len(reqs))
	}
	return result, nil
}

func buildRequests(ctx *runtime.Context, opts DeleteOptions) ([]engine.DeletionRequest, error) {
	eng := ctx.Engine
	policy := eng.Policy()

	var reqs []engine.DeletionRequest
	seen := make(map[engine.DeletionRequest]bool)
	add := func(r engine.DeletionRequest) {
		if !seen[r] {
			seen[r] = true
			reqs = append(reqs, r)
		}
	}

	if opts.Gone {
		for _, b := range eng.Orphans() {
			if policy.CanDelete(b, engine.SideLocal) {
				add(engine.DeletionRequest{Branch: b.Name, Side: engine.SideLocal})
			}
		}
	}

	var sides []engine.Side
	if opts.Local || !opts.Remote {
		sides = append(sides, engine.SideLocal)
	}
	if opts.Remote {
		sides = append(sides, engine.SideRemote)
	}

	for _, name := range opts.Branches {
		b := eng.Branch(name)
		if b == nil {
			return nil, reapererrors.NewBranchNotFoundError(name)
		}
		for _, side := range sides {
			if err := policy.Check(b, side); err != nil {
				return nil, err
			}
			add(engine.DeletionRequest{Branch: name, Side: side})
		}
	}
	return reqs, nil
}

func requestLabel(ctx *runtime.Context, r engine.DeletionRequest) string {
	if r.Side == engine.SideRemote {
		remote := ctx.Config.DefaultRemote
		if b := ctx.Engine.Branch(r.Branch); b != nil {
			remote = b.RemoteOr(remote)
		}
		return fmt.Sprintf("[remote] %s/%s", remote, r.Branch)
	}
	return "[local] " + r.Branch
}
