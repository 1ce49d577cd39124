package git

import (
	"context"
	"fmt"
	"strings"
)

// Gateway is the boundary between the branch engine and the git binary.
// Listing methods return the raw text git prints; parsing belongs to the engine.
type Gateway interface {
	// IsRepository reports whether the working directory is inside a repository
	IsRepository(ctx context.Context) bool
	// RepoName returns the base name of the repository work tree
	RepoName(ctx context.Context) string
	// CurrentBranchName returns the checked-out branch, or "" when HEAD is detached
	CurrentBranchName(ctx context.Context) (string, error)
	// ListLocalBranchesVerbose returns `git branch -vv` output
	ListLocalBranchesVerbose(ctx context.Context) (string, error)
	// ListRemoteBranches returns `git branch -r` output
	ListRemoteBranches(ctx context.Context) (string, error)
	// FetchAndPrune fetches all remotes and prunes stale remote-tracking refs
	FetchAndPrune(ctx context.Context) error
	// DeleteLocalBranch deletes a local branch; force skips the merged check
	DeleteLocalBranch(ctx context.Context, name string, force bool) error
	// DeleteRemoteBranch deletes name on the given remote
	DeleteRemoteBranch(ctx context.Context, remote, name string) error
}

// NewGateway returns a Gateway that shells out to git through runner.
func NewGateway(runner *CommandRunner) Gateway {
	return &cliGateway{runner: runner}
}

// cliGateway implements Gateway with the git command line
type cliGateway struct {
	runner *CommandRunner
}

func (g *cliGateway) IsRepository(ctx context.Context) bool {
	_, err := g.runner.Run(ctx, "rev-parse", "--git-dir")
	return err == nil
}

func (g *cliGateway) RepoName(ctx context.Context) string {
	if root, err := RepoRoot(g.runner.WorkingDir()); err == nil {
		if name := repoNameFromRoot(root); name != "" {
			return name
		}
	}

	// go-git cannot open some layouts (e.g. bare repositories); ask git itself
	if top, err := g.runner.Run(ctx, "rev-parse", "--show-toplevel"); err == nil {
		if name := repoNameFromRoot(top); name != "" {
			return name
		}
	}
	return "unknown"
}

func (g *cliGateway) CurrentBranchName(ctx context.Context) (string, error) {
	name, err := g.runner.Run(ctx, "branch", "--show-current")
	if err != nil {
		return "", fmt.Errorf("failed to get current branch: %w", err)
	}
	return name, nil
}

func (g *cliGateway) ListLocalBranchesVerbose(ctx context.Context) (string, error) {
	output, err := g.runner.RunRaw(ctx, "branch", "-vv", "--no-color")
	if err != nil {
		return "", fmt.Errorf("failed to list local branches: %w", err)
	}
	return output, nil
}

func (g *cliGateway) ListRemoteBranches(ctx context.Context) (string, error) {
	output, err := g.runner.RunRaw(ctx, "branch", "-r", "--no-color")
	if err != nil {
		return "", fmt.Errorf("failed to list remote branches: %w", err)
	}
	return output, nil
}

func (g *cliGateway) FetchAndPrune(ctx context.Context) error {
	if _, err := g.runner.Run(ctx, "fetch", "--all", "--prune"); err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}
	return nil
}

func (g *cliGateway) DeleteLocalBranch(ctx context.Context, name string, force bool) error {
	flag := "-d"
	if force {
		flag = "-D"
	}
	if _, err := g.runner.Run(ctx, "branch", flag, name); err != nil {
		return fmt.Errorf("failed to delete branch %s: %w", name, err)
	}
	return nil
}

func (g *cliGateway) DeleteRemoteBranch(ctx context.Context, remote, name string) error {
	if strings.TrimSpace(remote) == "" {
		return fmt.Errorf("failed to delete remote branch %s: no remote given", name)
	}
	if _, err := g.runner.Run(ctx, "push", remote, "--delete", name); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", remote, name, err)
	}
	return nil
}
