package demo_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"reaper.dev/reaper/internal/demo"
	"reaper.dev/reaper/internal/engine"
)

func loadDemo(t *testing.T, gw *demo.Gateway) *engine.Engine {
	t.Helper()
	eng := engine.NewEngine(gw, engine.Options{
		Protected:  engine.NewProtectedSet(engine.DefaultProtectedBranches...),
		ForceLocal: true,
	})
	require.NoError(t, eng.Load(context.Background()))
	return eng
}

func TestDemoGatewayCoversEveryStatus(t *testing.T) {
	t.Parallel()
	eng := loadDemo(t, demo.NewGateway())

	statuses := map[engine.Status]int{}
	for _, b := range eng.Branches() {
		statuses[b.Status()]++
	}
	require.Equal(t, 4, statuses[engine.StatusSynced])
	require.Equal(t, 2, statuses[engine.StatusOrphan])
	require.Equal(t, 2, statuses[engine.StatusLocal])
	require.Equal(t, 3, statuses[engine.StatusRemote])

	main := eng.Branch("main")
	require.NotNil(t, main)
	require.True(t, main.IsCurrent)
	require.True(t, main.IsProtected)

	graphql := eng.Branch("experiment/graphql")
	require.NotNil(t, graphql)
	require.Equal(t, "upstream", graphql.RemoteName)

	auth := eng.Branch("feature/auth-base")
	require.NotNil(t, auth.Tracking)
	require.Equal(t, 2, auth.Tracking.Ahead)
}

func TestDemoGatewayDeletes(t *testing.T) {
	t.Parallel()

	t.Run("remote delete orphans the tracking local", func(t *testing.T) {
		t.Parallel()
		gw := demo.NewGateway()
		eng := loadDemo(t, gw)

		result, err := eng.Delete(context.Background(), []engine.DeletionRequest{
			{Branch: "hotfix/cache", Side: engine.SideRemote},
		})
		require.NoError(t, err)
		require.Equal(t, 1, result.Succeeded)
		require.Equal(t, []string{"hotfix/cache"}, result.RelatedLocals)
		require.Equal(t, engine.StatusOrphan, eng.Branch("hotfix/cache").Status())
		require.Equal(t, []string{"push origin --delete hotfix/cache"}, gw.Calls())
	})

	t.Run("deleting both sides removes the branch", func(t *testing.T) {
		t.Parallel()
		gw := demo.NewGateway()
		eng := loadDemo(t, gw)

		result, err := eng.Delete(context.Background(), []engine.DeletionRequest{
			{Branch: "hotfix/cache", Side: engine.SideLocal},
			{Branch: "hotfix/cache", Side: engine.SideRemote},
		})
		require.NoError(t, err)
		require.Equal(t, 2, result.Succeeded)
		require.Nil(t, eng.Branch("hotfix/cache"))
	})

	t.Run("unforced delete of an unmerged branch fails", func(t *testing.T) {
		t.Parallel()
		gw := demo.NewGateway()
		err := gw.DeleteLocalBranch(context.Background(), "spike/unmerged", false)
		require.ErrorContains(t, err, "not fully merged")
		require.NoError(t, gw.DeleteLocalBranch(context.Background(), "spike/unmerged", true))
	})

	t.Run("injected failures are reported per item", func(t *testing.T) {
		t.Parallel()
		gw := demo.NewGateway()
		gw.FailLocalDelete("fix/typo", errors.New("permission denied"))
		eng := loadDemo(t, gw)

		result, err := eng.Delete(context.Background(), []engine.DeletionRequest{
			{Branch: "fix/typo", Side: engine.SideLocal},
			{Branch: "feature/old-login", Side: engine.SideLocal},
		})
		require.NoError(t, err)
		require.Equal(t, 1, result.Succeeded)
		require.Equal(t, 1, result.Failed)
		require.NotNil(t, eng.Branch("fix/typo"))
		require.Nil(t, eng.Branch("feature/old-login"))
	})

	t.Run("missing remote ref", func(t *testing.T) {
		t.Parallel()
		gw := demo.NewGateway()
		err := gw.DeleteRemoteBranch(context.Background(), "upstream", "release/1.4")
		require.ErrorContains(t, err, "remote ref does not exist")
	})
}

func TestDemoGatewayFetch(t *testing.T) {
	t.Parallel()
	gw := demo.NewGateway()
	eng := loadDemo(t, gw)

	gw.AddRemoteBranch("origin", "feature/new")
	gw.FailFetch(errors.New("could not resolve host"))

	res, err := eng.Refresh(context.Background())
	require.NoError(t, err)
	require.Error(t, res.FetchErr)
	require.NotNil(t, eng.Branch("feature/new"))
	require.Equal(t, engine.StatusRemote, eng.Branch("feature/new").Status())
}

func TestDemoGatewayHonoursCancellation(t *testing.T) {
	t.Parallel()
	gw := demo.NewGateway()
	gw.Delay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, gw.FetchAndPrune(ctx), context.Canceled)
}
