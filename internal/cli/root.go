package cli

import (
	"context"

	"github.com/spf13/cobra"

	"reaper.dev/reaper/internal/actions"
	"reaper.dev/reaper/internal/cli/helpers"
	"reaper.dev/reaper/internal/runtime"
	"reaper.dev/reaper/internal/tui"
	"reaper.dev/reaper/internal/watch"
)

// NewRootCmd creates the root cobra command
func NewRootCmd(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "reaper",
		Short: "Branch Reaper finds and deletes stale git branches, locally and on remotes",
		Long: `Branch Reaper shows every branch of the current repository in one grid,
local and remote side by side, and deletes the ones you mark.

Run without a subcommand on a terminal to open the interactive grid:
  ↑/↓ or j/k   move            ←/→ or h/l   pick the local or remote column
  space        mark or unmark   d            delete marked
  r            fetch and prune  q            quit

Protected branches (main, master, develop, development and whatever you
configure) and the checked out branch are never deleted locally.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				if !tui.IsInteractive() {
					return actions.List(cmd.Context(), ctx, actions.ListOptions{})
				}
				return runGrid(cmd.Context(), ctx)
			})
		},
	}

	helpers.AddPersistentFlags(rootCmd)

	rootCmd.AddCommand(newMenuCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd(version, commit, date))
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

// runGrid runs the full screen grid. The splog is muted while the alternate
// screen is up so log lines don't tear the frame; they still reach the log file.
func runGrid(gctx context.Context, ctx *runtime.Context) error {
	opts := tui.GridOptions{
		RepoName:      ctx.RepoName,
		DefaultRemote: ctx.Config.DefaultRemote,
		FetchOnStart:  ctx.Config.FetchOnStart,
		KeepMarks:     ctx.Config.KeepMarksOnRefresh,
	}

	if ctx.Config.AutoRefresh && ctx.Runner != nil {
		w := watch.NewRefWatcher(ctx.Runner, ctx.Splog.Debug)
		started, err := w.Start(gctx)
		switch {
		case err != nil:
			ctx.Splog.Warn("Auto refresh disabled: %v", err)
		case started:
			defer w.Stop()
			opts.Watcher = w
		}
	}

	ctx.Splog.SetQuiet(true)
	defer ctx.Splog.SetQuiet(false)
	return tui.RunGrid(gctx, ctx.Engine, opts)
}
