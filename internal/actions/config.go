package actions

import (
	"context"
	"fmt"
	"strings"

	"reaper.dev/reaper/internal/config"
	"reaper.dev/reaper/internal/runtime"
	"reaper.dev/reaper/internal/tui"
	"reaper.dev/reaper/internal/utils"
)

// ConfigShowAction prints the effective configuration in a formatted way
func ConfigShowAction(ctx *runtime.Context) error {
	cfg := ctx.Config

	source := cfg.Path
	if source == "" {
		source = "(defaults)"
	}

	var lines []string
	add := func(key string, value any) {
		lines = append(lines, fmt.Sprintf("%s: %v", tui.ColorCyan(key), value))
	}
	add("config file", source)
	add("protected_branches", strings.Join(cfg.ProtectedBranches, ", "))
	add("default_remote", cfg.DefaultRemote)
	add("fetch_on_start", cfg.FetchOnStart)
	add("force_local_delete", cfg.ForceLocalDelete)
	add("command_timeout", cfg.CommandTimeout)
	add("github_protection", cfg.GitHubProtection)
	add("keep_marks_on_refresh", cfg.KeepMarksOnRefresh)
	add("auto_refresh", cfg.AutoRefresh)
	if ctx.RepoRoot != "" {
		add("repository config", config.RepoConfigPath(ctx.RepoRoot))
	}

	ctx.Splog.Page(strings.Join(lines, "\n"))
	ctx.Splog.Newline()
	return nil
}

// ConfigProtectAction protects names in the current repository
func ConfigProtectAction(ctx *runtime.Context, names []string) error {
	if err := requireRepo(ctx); err != nil {
		return err
	}
	for _, name := range names {
		if err := utils.ValidateBranchName(name); err != nil {
			return err
		}
	}
	for _, name := range names {
		if err := config.AddProtectedBranch(ctx.RepoRoot, name); err != nil {
			return err
		}
		ctx.Splog.Success("Protected %s", name)
	}
	return nil
}

// ConfigUnprotectAction removes names from the repository's protected list.
// Names protected by the user config stay protected.
func ConfigUnprotectAction(ctx *runtime.Context, names []string) error {
	if err := requireRepo(ctx); err != nil {
		return err
	}
	for _, name := range names {
		if err := config.RemoveProtectedBranch(ctx.RepoRoot, name); err != nil {
			return err
		}
		ctx.Splog.Success("Unprotected %s", name)
	}
	return nil
}

// ConfigRemoteAction sets the default remote for the current repository
func ConfigRemoteAction(gctx context.Context, ctx *runtime.Context, remote string) error {
	if err := requireRepo(ctx); err != nil {
		return err
	}
	if ctx.Runner != nil {
		if err := ctx.Runner.ValidateRemote(gctx, remote); err != nil {
			return err
		}
	}
	if err := config.SetDefaultRemote(ctx.RepoRoot, remote); err != nil {
		return err
	}
	ctx.Splog.Success("Default remote set to %s", remote)
	return nil
}

func requireRepo(ctx *runtime.Context) error {
	if ctx.RepoRoot == "" {
		return fmt.Errorf("repository settings are not available in demo mode")
	}
	return nil
}
