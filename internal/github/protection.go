// Package github asks the GitHub API which branches are protected so reaper
// can refuse to delete them alongside the configured protected names.
package github

import (
	"context"
	"fmt"

	"github.com/google/go-github/v62/github"

	"reaper.dev/reaper/internal/git"
)

// ProtectionSource lists protected branches of one GitHub repository
type ProtectionSource struct {
	client *github.Client
	owner  string
	repo   string
}

// NewProtectionSource creates a ProtectionSource for the repository behind
// remote. It needs a token from GITHUB_TOKEN or `gh auth token`.
func NewProtectionSource(ctx context.Context, runner *git.CommandRunner, remote string) (*ProtectionSource, error) {
	token, err := getGitHubToken(ctx)
	if err != nil {
		return nil, err
	}

	repoInfo, err := RepoInfoForRemote(ctx, runner, remote)
	if err != nil {
		return nil, fmt.Errorf("failed to get repository info: %w", err)
	}

	client, err := createGitHubClient(ctx, repoInfo.Hostname, token)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}

	return NewProtectionSourceWithClient(client, repoInfo.Owner, repoInfo.Repo), nil
}

// NewProtectionSourceWithClient wraps an existing client
func NewProtectionSourceWithClient(client *github.Client, owner, repo string) *ProtectionSource {
	return &ProtectionSource{
		client: client,
		owner:  owner,
		repo:   repo,
	}
}

// GetOwnerRepo returns the repository owner and name
func (s *ProtectionSource) GetOwnerRepo() (string, string) {
	return s.owner, s.repo
}

// ProtectedBranches returns the names of every protected branch, following pagination.
func (s *ProtectionSource) ProtectedBranches(ctx context.Context) ([]string, error) {
	opts := &github.BranchListOptions{
		Protected:   github.Bool(true),
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var names []string
	for {
		branches, resp, err := s.client.Repositories.ListBranches(ctx, s.owner, s.repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list protected branches of %s/%s: %w", s.owner, s.repo, err)
		}
		for _, b := range branches {
			if name := b.GetName(); name != "" {
				names = append(names, name)
			}
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return names, nil
}
