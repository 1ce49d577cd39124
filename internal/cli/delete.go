package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"reaper.dev/reaper/internal/actions"
	"reaper.dev/reaper/internal/cli/helpers"
	"reaper.dev/reaper/internal/runtime"
	"reaper.dev/reaper/internal/tui"
	"reaper.dev/reaper/internal/utils"
)

// newDeleteCmd creates the delete command
func newDeleteCmd() *cobra.Command {
	var (
		local  bool
		remote bool
		gone   bool
		yes    bool
	)

	cmd := &cobra.Command{
		Use:   "delete [branches...]",
		Short: "Delete branches locally, on their remote, or both",
		Long: `Delete the named branches. Without --local or --remote only the local
copy is deleted. With --gone, every local branch whose remote tracking
branch was deleted is removed as well. A single "-" reads the names from
standard input, one per line or separated by spaces.

Protected branches and the checked out branch are refused before anything
is deleted.

Examples:
  reaper delete feature/old-login
  reaper delete --remote --yes spike/unmerged
  reaper delete --local --remote fix/typo hotfix/cache
  reaper delete --gone
  git branch --merged main | grep -v main | reaper delete --yes -`,
		Aliases:           []string{"rm"},
		ValidArgsFunction: helpers.CompleteDeletableBranches,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := branchArgs(args)
			if err != nil {
				return err
			}
			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				opts := actions.DeleteOptions{
					Branches: names,
					Local:    local,
					Remote:   remote,
					Gone:     gone,
					Yes:      yes,
				}
				if !yes {
					opts.Prompter = tui.NewSurveyPrompter()
				}
				_, err := actions.Delete(cmd.Context(), ctx, opts)
				return err
			})
		},
	}

	cmd.Flags().BoolVarP(&local, "local", "l", false, "Delete the local branch")
	cmd.Flags().BoolVarP(&remote, "remote", "r", false, "Delete the branch on its remote")
	cmd.Flags().BoolVar(&gone, "gone", false, "Also delete every local branch whose remote branch is gone")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

// branchArgs expands a lone "-" into names read from stdin
func branchArgs(args []string) ([]string, error) {
	if len(args) != 1 || args[0] != "-" {
		return args, nil
	}
	names, err := utils.ReadBranchNamesFromStdin()
	if err != nil {
		return nil, fmt.Errorf("failed to read branch names: %w", err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no branch names on standard input")
	}
	return names, nil
}
