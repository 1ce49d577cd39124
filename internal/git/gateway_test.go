package git_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	reapererrors "reaper.dev/reaper/internal/errors"
	"reaper.dev/reaper/internal/git"
	"reaper.dev/reaper/testhelpers"
)

func newGateway(dir string) git.Gateway {
	return git.NewGateway(git.NewCommandRunner(dir))
}

func TestGatewayListing(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewSceneParallel(t, testhelpers.MixedBranchesSetup)
	gw := newGateway(scene.Dir)
	ctx := context.Background()

	require.True(t, gw.IsRepository(ctx))
	require.Equal(t, "repo", gw.RepoName(ctx))

	current, err := gw.CurrentBranchName(ctx)
	require.NoError(t, err)
	require.Equal(t, "main", current)

	local, err := gw.ListLocalBranchesVerbose(ctx)
	require.NoError(t, err)
	require.Contains(t, local, "* main")
	require.Contains(t, local, "[origin/feature-x: gone]")
	require.Contains(t, local, "[origin/topic]")
	require.Contains(t, local, "scratch")
	require.NotContains(t, local, "feature-y")

	remote, err := gw.ListRemoteBranches(ctx)
	require.NoError(t, err)
	require.Contains(t, remote, "origin/feature-y")
	require.Contains(t, remote, "origin/topic")
	require.NotContains(t, remote, "origin/feature-x")
}

func TestGatewayFetchAndPrune(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewSceneParallel(t, testhelpers.MixedBranchesSetup)
	gw := newGateway(scene.Dir)
	ctx := context.Background()
	origin := scene.Remotes["origin"]

	require.NoError(t, scene.Repo.CreateBranchOnRemote(origin, "pushed-by-teammate", "main"))
	require.NoError(t, scene.Repo.DeleteBranchOnRemote(origin, "topic"))
	require.NoError(t, gw.FetchAndPrune(ctx))

	remote, err := gw.ListRemoteBranches(ctx)
	require.NoError(t, err)
	require.Contains(t, remote, "origin/pushed-by-teammate")
	require.NotContains(t, remote, "origin/topic")

	local, err := gw.ListLocalBranchesVerbose(ctx)
	require.NoError(t, err)
	require.Contains(t, local, "[origin/topic: gone]")
}

func TestGatewayDeleteLocalBranch(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewSceneParallel(t, testhelpers.MixedBranchesSetup)
	gw := newGateway(scene.Dir)
	ctx := context.Background()

	err := gw.DeleteLocalBranch(ctx, "scratch", false)
	require.Error(t, err)
	var gce *reapererrors.GitCommandError
	require.True(t, errors.As(err, &gce))
	require.Contains(t, gce.Summary(), "not fully merged")

	require.NoError(t, gw.DeleteLocalBranch(ctx, "scratch", true))
	testhelpers.ExpectBranches(t, scene.Repo, []string{"main", "topic", "feature-x"})

	require.Error(t, gw.DeleteLocalBranch(ctx, "main", true), "the checked out branch cannot be deleted")
	require.Error(t, gw.DeleteLocalBranch(ctx, "no-such-branch", true))
}

func TestGatewayDeleteRemoteBranch(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewSceneParallel(t, testhelpers.MixedBranchesSetup)
	gw := newGateway(scene.Dir)
	ctx := context.Background()
	origin := scene.Remotes["origin"]

	require.NoError(t, gw.DeleteRemoteBranch(ctx, "origin", "feature-y"))
	testhelpers.ExpectRemoteBranches(t, scene.Repo, origin, []string{"main", "topic"})

	err := gw.DeleteRemoteBranch(ctx, "origin", "feature-y")
	require.Error(t, err)
	require.Contains(t, reapererrors.Message(err), "remote ref does not exist")

	require.Error(t, gw.DeleteRemoteBranch(ctx, "", "topic"))
	require.Error(t, gw.DeleteRemoteBranch(ctx, "nowhere", "topic"))
}

func TestGatewayDetachedHead(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewSceneParallel(t, testhelpers.MixedBranchesSetup)
	require.NoError(t, scene.Repo.CheckoutDetached("HEAD"))
	gw := newGateway(scene.Dir)

	current, err := gw.CurrentBranchName(context.Background())
	require.NoError(t, err)
	require.Empty(t, current)

	local, err := gw.ListLocalBranchesVerbose(context.Background())
	require.NoError(t, err)
	require.Contains(t, local, "HEAD detached")
}

func TestGatewayOutsideRepository(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	gw := newGateway(dir)
	require.False(t, gw.IsRepository(context.Background()))

	_, err := git.RepoRoot(dir)
	require.Error(t, err)
}

func TestRepoRoot(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewSceneParallel(t, testhelpers.MixedBranchesSetup)

	expected, err := filepath.EvalSymlinks(scene.Dir)
	require.NoError(t, err)

	root, err := git.RepoRoot(scene.Dir)
	require.NoError(t, err)
	root, err = filepath.EvalSymlinks(root)
	require.NoError(t, err)
	require.Equal(t, expected, root)

	t.Run("linked worktree", func(t *testing.T) {
		wt, err := scene.Repo.AddWorktree("topic")
		require.NoError(t, err)
		gw := newGateway(wt)
		require.True(t, gw.IsRepository(context.Background()))

		current, err := gw.CurrentBranchName(context.Background())
		require.NoError(t, err)
		require.Equal(t, "topic", current)

		// topic is checked out in the worktree, so the main repository cannot delete it
		require.Error(t, newGateway(scene.Dir).DeleteLocalBranch(context.Background(), "topic", true))
	})
}
