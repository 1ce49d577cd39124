package cli

import (
	"github.com/spf13/cobra"

	"reaper.dev/reaper/internal/actions"
	"reaper.dev/reaper/internal/cli/helpers"
	"reaper.dev/reaper/internal/runtime"
	"reaper.dev/reaper/internal/tui"
)

// newMenuCmd creates the menu command
func newMenuCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Delete branches through a sequence of prompts instead of the grid",
		Long: `Show the branch table and a menu of actions. Each deletion asks which
branches to remove and for a confirmation before anything runs.`,
		Aliases: []string{"m"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				return actions.RunMenu(cmd.Context(), ctx, actions.MenuOptions{
					Prompter: tui.NewSurveyPrompter(),
				})
			})
		},
	}

	return cmd
}
