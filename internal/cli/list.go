package cli

import (
	"github.com/spf13/cobra"

	"reaper.dev/reaper/internal/actions"
	"reaper.dev/reaper/internal/cli/helpers"
	"reaper.dev/reaper/internal/runtime"
)

// newListCmd creates the list command
func newListCmd() *cobra.Command {
	var details bool

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "Print every branch with its local and remote status",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				return actions.List(cmd.Context(), ctx, actions.ListOptions{Details: details})
			})
		},
	}

	cmd.Flags().BoolVarP(&details, "details", "d", false, "Show the upstream and last commit of each local branch")

	return cmd
}
