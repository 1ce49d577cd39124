package actions

import (
	"context"
	"errors"
	"fmt"

	"reaper.dev/reaper/internal/engine"
	"reaper.dev/reaper/internal/runtime"
	"reaper.dev/reaper/internal/tui"
)

type menuAction int

const (
	menuDeleteLocal menuAction = iota
	menuDeleteRemote
	menuDeleteBoth
	menuRefresh
	menuExit
)

var menuChoices = []struct {
	label  string
	action menuAction
}{
	{"🗑️  Delete local branches", menuDeleteLocal},
	{"☁️  Delete remote branches", menuDeleteRemote},
	{"⚔️  Delete local & remote branches", menuDeleteBoth},
	{"🔄 Refresh from remote (git fetch --prune)", menuRefresh},
	{"👋 Exit", menuExit},
}

// MenuOptions contains options for the menu front end
type MenuOptions struct {
	Prompter tui.Prompter
}

// RunMenu runs the prompt-driven front end until the user exits. Operations
// run one at a time, so there is never more than one outstanding.
func RunMenu(gctx context.Context, ctx *runtime.Context, opts MenuOptions) error {
	splog := ctx.Splog
	printHeader(ctx)

	if err := loadBranches(gctx, ctx, ctx.Config.FetchOnStart); err != nil {
		return err
	}
	splog.Success("Ready")

	labels := make([]string, len(menuChoices))
	for i, c := range menuChoices {
		labels[i] = c.label
	}

	for {
		splog.Newline()
		splog.Page(tui.RenderBranchTable(ctx.Engine.Branches(), tui.TableOptions{DefaultRemote: ctx.Config.DefaultRemote}))
		splog.Newline()

		idx, err := opts.Prompter.Select("What would you like to do?", labels)
		if errors.Is(err, tui.ErrCanceled) {
			break
		}
		if err != nil {
			return err
		}

		switch menuChoices[idx].action {
		case menuExit:
			splog.Info("%s", tui.ColorCyan("Goodbye! 👋"))
			return nil
		case menuRefresh:
			refreshFromRemote(gctx, ctx)
			continue
		case menuDeleteLocal:
			err = deleteInteractive(gctx, ctx, opts.Prompter, engine.SideLocal)
		case menuDeleteRemote:
			err = deleteInteractive(gctx, ctx, opts.Prompter, engine.SideRemote)
		case menuDeleteBoth:
			err = deleteInteractive(gctx, ctx, opts.Prompter, engine.SideLocal, engine.SideRemote)
		}
		if err != nil {
			return err
		}
	}

	splog.Info("%s", tui.ColorCyan("Goodbye! 👋"))
	return nil
}

func printHeader(ctx *runtime.Context) {
	ctx.Splog.Newline()
	ctx.Splog.Info("%s", tui.ColorBold("🌾 Branch Reaper"))
	if ctx.RepoName != "" {
		ctx.Splog.Info("%s", tui.ColorDim("Repository: " + ctx.RepoName))
	}
	ctx.Splog.Newline()
}

func refreshFromRemote(gctx context.Context, ctx *runtime.Context) {
	splog := ctx.Splog
	res, err := ctx.Engine.Refresh(gctx)
	switch {
	case err != nil:
		splog.Failure("Failed to load branches: %v", err)
	case res.FetchErr != nil:
		splog.Failure("Fetch failed: %v", res.FetchErr)
	default:
		splog.Success("Fetched and pruned all remotes")
	}
}

// candidate is one deletable side offered in a multi-select
type candidate struct {
	label   string
	request engine.DeletionRequest
}

// candidates lists every deletable side of every branch, grouped by side in
// the order given.
func candidates(ctx *runtime.Context, sides ...engine.Side) []candidate {
	var out []candidate
	for _, side := range sides {
		for _, b := range ctx.Engine.Deletable(side) {
			label := b.Name
			switch {
			case side == engine.SideRemote:
				label = fmt.Sprintf("[remote] %s/%s", b.RemoteOr(ctx.Config.DefaultRemote), b.Name)
			case b.IsGone:
				label = b.Name + " [GONE - remote deleted]"
			}
			out = append(out, candidate{label: label, request: engine.DeletionRequest{Branch: b.Name, Side: side}})
		}
	}
	return out
}

// deleteInteractive offers the deletable sides, confirms, and executes.
// Only prompt failures other than a cancel are returned.
func deleteInteractive(gctx context.Context, ctx *runtime.Context, prompter tui.Prompter, sides ...engine.Side) error {
	splog := ctx.Splog
	splog.Newline()

	options := candidates(ctx, sides...)
	if len(options) == 0 {
		splog.Info("%s", tui.ColorYellow("No branches to delete"))
		splog.Info("%s", tui.ColorDim("Protected branches and the current branch are excluded"))
		return nil
	}

	gone := 0
	anyRemote := false
	for _, c := range options {
		if c.request.Side == engine.SideRemote {
			anyRemote = true
		}
		if c.request.Side == engine.SideLocal {
			if b := ctx.Engine.Branch(c.request.Branch); b != nil && b.IsGone {
				gone++
			}
		}
	}
	if gone > 0 {
		splog.Tip("%d local branch(es) marked as GONE - their remote tracking branch no longer exists", gone)
	}
	if anyRemote {
		splog.Warn("This will delete branches from the remote server! This action affects the shared repository.")
	}

	labels := make([]string, len(options))
	for i, c := range options {
		labels[i] = c.label
	}
	picked, err := prompter.MultiSelect("Select branches to delete:", labels)
	if errors.Is(err, tui.ErrCanceled) {
		splog.Info("%s", tui.ColorDim("Cancelled"))
		return nil
	}
	if err != nil {
		return err
	}
	if len(picked) == 0 {
		splog.Info("%s", tui.ColorDim("No branches selected"))
		return nil
	}

	reqs := make([]engine.DeletionRequest, 0, len(picked))
	items := make([]string, 0, len(picked))
	for _, i := range picked {
		reqs = append(reqs, options[i].request)
		items = append(items, options[i].label)
	}

	splog.Newline()
	splog.Info("%s", tui.ColorBold("Branches to delete:"))
	splog.Info("%s", bulletList(items))
	splog.Newline()

	ok, err := prompter.Confirm(confirmMessage(reqs), false)
	if errors.Is(err, tui.ErrCanceled) || (err == nil && !ok) {
		splog.Info("%s", tui.ColorDim("Cancelled"))
		return nil
	}
	if err != nil {
		return err
	}

	splog.Newline()
	result, err := ctx.Engine.Delete(gctx, reqs)
	if result != nil {
		printOutcomes(splog, result)
	}
	if err != nil {
		splog.Failure("%v", err)
	}
	return nil
}
