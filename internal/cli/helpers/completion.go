package helpers

import (
	"io"

	"github.com/spf13/cobra"

	"reaper.dev/reaper/internal/engine"
	"reaper.dev/reaper/internal/runtime"
	"reaper.dev/reaper/internal/tui"
)

// CompleteBranches is a helper for cobra.ValidArgsFunction and RegisterFlagCompletionFunc
// that returns all branch names in the repository, local and remote.
func CompleteBranches(cmd *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return completeBranches(cmd, func(*engine.UnifiedBranch) bool { return true })
}

// CompleteDeletableBranches completes names with at least one side reaper may delete
func CompleteDeletableBranches(cmd *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return completeBranches(cmd, func(b *engine.UnifiedBranch) bool {
		return !b.IsProtected && (b.HasRemote || !b.IsCurrent)
	})
}

func completeBranches(cmd *cobra.Command, keep func(*engine.UnifiedBranch) bool) ([]string, cobra.ShellCompDirective) {
	// Completion output must only contain candidates
	splog, _ := tui.NewSplogWithConfig(io.Discard, "")
	opts := OptionsFromFlags(cmd)
	opts.Splog = splog

	ctx, err := runtime.GetContext(cmd.Context(), opts)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	if err := ctx.Engine.Load(cmd.Context()); err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var names []string
	for _, b := range ctx.Engine.Branches() {
		if keep(b) {
			names = append(names, b.Name)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
