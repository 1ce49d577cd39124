package cli

import (
	"github.com/spf13/cobra"

	"reaper.dev/reaper/internal/actions"
	"reaper.dev/reaper/internal/cli/helpers"
	"reaper.dev/reaper/internal/runtime"
)

// newConfigCmd creates the config command
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration and edit repository settings",
		Long: `Show the effective configuration or change the settings stored for the
current repository in .git/.reaper_config.

Examples:
  reaper config
  reaper config protect staging release/1.4
  reaper config unprotect staging
  reaper config remote upstream`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return helpers.Run(cmd, actions.ConfigShowAction)
		},
	}

	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigProtectCmd())
	cmd.AddCommand(newConfigUnprotectCmd())
	cmd.AddCommand(newConfigRemoteCmd())

	return cmd
}

// newConfigShowCmd creates the config show command
func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return helpers.Run(cmd, actions.ConfigShowAction)
		},
	}
}

// newConfigProtectCmd creates the config protect command
func newConfigProtectCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "protect <branch>...",
		Short:             "Protect branches in this repository",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: helpers.CompleteBranches,
		RunE: func(cmd *cobra.Command, args []string) error {
			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				return actions.ConfigProtectAction(ctx, args)
			})
		},
	}
}

// newConfigUnprotectCmd creates the config unprotect command
func newConfigUnprotectCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "unprotect <branch>...",
		Short:             "Remove branches protected in this repository",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: helpers.CompleteBranches,
		RunE: func(cmd *cobra.Command, args []string) error {
			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				return actions.ConfigUnprotectAction(ctx, args)
			})
		},
	}
}

// newConfigRemoteCmd creates the config remote command
func newConfigRemoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remote <name>",
		Short: "Set the remote used for branches that record none",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return helpers.Run(cmd, func(ctx *runtime.Context) error {
				return actions.ConfigRemoteAction(cmd.Context(), ctx, args[0])
			})
		},
	}
}
