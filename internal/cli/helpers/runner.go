// Package helpers provides shared helper functions for CLI commands.
package helpers

import (
	"github.com/spf13/cobra"

	"reaper.dev/reaper/internal/runtime"
)

// Persistent flags defined on the root command
const (
	FlagConfig    = "config"
	FlagProtected = "protected"
	FlagRemote    = "remote"
	FlagNoFetch   = "no-fetch"
)

// AddPersistentFlags registers the flags every command shares
func AddPersistentFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String(FlagConfig, "", "Path to the user config file (default $XDG_CONFIG_HOME/reaper/config.yaml)")
	flags.StringSlice(FlagProtected, nil, "Additional branch names to protect (repeatable or comma separated)")
	flags.String(FlagRemote, "", "Remote used for branches that record none (default origin)")
	flags.Bool(FlagNoFetch, false, "Do not fetch and prune before loading branches")
}

// OptionsFromFlags reads the persistent flags into context options
func OptionsFromFlags(cmd *cobra.Command) runtime.Options {
	flags := cmd.Flags()
	configPath, _ := flags.GetString(FlagConfig)
	protected, _ := flags.GetStringSlice(FlagProtected)
	remote, _ := flags.GetString(FlagRemote)
	noFetch, _ := flags.GetBool(FlagNoFetch)
	return runtime.Options{
		ConfigPath: configPath,
		Protected:  protected,
		Remote:     remote,
		NoFetch:    noFetch,
	}
}

// Run is a helper that provides a runtime context to a command's execution function
func Run(cmd *cobra.Command, fn func(ctx *runtime.Context) error) error {
	ctx, err := runtime.GetContext(cmd.Context(), OptionsFromFlags(cmd))
	if err != nil {
		return err
	}
	defer func() { _ = ctx.Close() }()
	return fn(ctx)
}
