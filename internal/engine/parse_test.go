package engine_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"reaper.dev/reaper/internal/engine"
)

func TestParseLocalBranches(t *testing.T) {
	t.Run("parses current marker, hash, tracking and comment", func(t *testing.T) {
		output := "* main      1a2b3c4 [origin/main] Initial commit\n" +
			"  feature-x 5d6e7f8 [origin/feature-x: gone] Add x\n" +
			"  feature-y 9a8b7c6 [origin/feature-y: ahead 2, behind 1] Work on y\n" +
			"  scratch   0f0f0f0 Just local\n"

		facts := engine.ParseLocalBranches(output)
		require.Len(t, facts, 4)

		require.Equal(t, "main", facts[0].Name)
		require.Equal(t, "1a2b3c4", facts[0].Hash)
		require.True(t, facts[0].Current)
		require.NotNil(t, facts[0].Tracking)
		require.Equal(t, "origin", facts[0].Tracking.Remote)
		require.Equal(t, "main", facts[0].Tracking.Branch)
		require.False(t, facts[0].Tracking.Gone)
		require.Equal(t, "Initial commit", facts[0].Comment)

		require.False(t, facts[1].Current)
		require.True(t, facts[1].Tracking.Gone)
		require.Equal(t, "Add x", facts[1].Comment)

		require.Equal(t, 2, facts[2].Tracking.Ahead)
		require.Equal(t, 1, facts[2].Tracking.Behind)

		require.Nil(t, facts[3].Tracking)
		require.Equal(t, "Just local", facts[3].Comment)
	})

	t.Run("ignores blank lines and empty input", func(t *testing.T) {
		require.Empty(t, engine.ParseLocalBranches(""))
		require.Empty(t, engine.ParseLocalBranches("\n   \n\t\n"))
	})

	t.Run("skips detached HEAD", func(t *testing.T) {
		facts := engine.ParseLocalBranches("* (HEAD detached at 1a2b3c4) 1a2b3c4 msg\n  main 1a2b3c4 [origin/main] msg\n")
		require.Len(t, facts, 1)
		require.Equal(t, "main", facts[0].Name)
		require.False(t, facts[0].Current)
	})

	t.Run("strips worktree marker and path without marking current", func(t *testing.T) {
		facts := engine.ParseLocalBranches("+ wt-branch 1a2b3c4 (/tmp/wt) [origin/wt-branch] in worktree\n")
		require.Len(t, facts, 1)
		require.Equal(t, "wt-branch", facts[0].Name)
		require.False(t, facts[0].Current)
		require.NotNil(t, facts[0].Tracking)
		require.Equal(t, "in worktree", facts[0].Comment)
	})

	t.Run("missing closing bracket leaves tracking unset", func(t *testing.T) {
		facts := engine.ParseLocalBranches("  broken 1a2b3c4 [origin/broken: gone oops\n")
		require.Len(t, facts, 1)
		require.Equal(t, "broken", facts[0].Name)
		require.Nil(t, facts[0].Tracking)
		require.Equal(t, "[origin/broken: gone oops", facts[0].Comment)
	})

	t.Run("bracketed subject without upstream is not tracking", func(t *testing.T) {
		facts := engine.ParseLocalBranches("  wip 1a2b3c4 Fix [WIP] thing\n")
		require.Len(t, facts, 1)
		require.Nil(t, facts[0].Tracking)
		require.Equal(t, "Fix [WIP] thing", facts[0].Comment)
	})

	t.Run("line with only a name still yields a fact", func(t *testing.T) {
		facts := engine.ParseLocalBranches("  lonely\n")
		require.Len(t, facts, 1)
		require.Equal(t, "lonely", facts[0].Name)
		require.Empty(t, facts[0].Hash)
	})

	t.Run("branch names with slashes", func(t *testing.T) {
		facts := engine.ParseLocalBranches("  feature/a/b 1a2b3c4 [upstream/feature/a/b] msg\n")
		require.Len(t, facts, 1)
		require.Equal(t, "feature/a/b", facts[0].Name)
		require.Equal(t, "upstream", facts[0].Tracking.Remote)
		require.Equal(t, "feature/a/b", facts[0].Tracking.Branch)
	})
}

func TestParseRemoteBranches(t *testing.T) {
	t.Run("parses alias and name", func(t *testing.T) {
		output := "  origin/HEAD -> origin/main\n  origin/main\n  origin/feature/deep\n  upstream/fix\n"
		facts := engine.ParseRemoteBranches(output)
		require.Equal(t, []engine.RemoteFact{
			{Remote: "origin", Name: "main"},
			{Remote: "origin", Name: "feature/deep"},
			{Remote: "upstream", Name: "fix"},
		}, facts)
	})

	t.Run("skips lines without a slash", func(t *testing.T) {
		facts := engine.ParseRemoteBranches("  nonsense\n  origin/ok\n  /empty-alias\n  origin/\n")
		require.Equal(t, []engine.RemoteFact{{Remote: "origin", Name: "ok"}}, facts)
	})

	t.Run("empty input", func(t *testing.T) {
		require.Empty(t, engine.ParseRemoteBranches(""))
	})
}

func TestTrackingRoundTrip(t *testing.T) {
	cases := []string{
		"origin/feature",
		"origin/feature: gone",
		"origin/feature: ahead 3",
		"origin/feature: behind 4",
		"origin/feature: ahead 1, behind 2",
		"upstream/nested/name: gone",
		"main",
	}

	for _, tc := range cases {
		t.Run(tc, func(t *testing.T) {
			parsed := engine.ParseTracking(tc)
			require.Equal(t, tc, parsed.String())

			again := engine.ParseTracking(parsed.String())
			require.Equal(t, parsed.Remote, again.Remote)
			require.Equal(t, parsed.Gone, again.Gone)
		})
	}

	t.Run("remote alias is text before first slash", func(t *testing.T) {
		parsed := engine.ParseTracking("origin/a/b: gone")
		require.Equal(t, "origin", parsed.Remote)
		require.Equal(t, "a/b", parsed.Branch)
		require.Equal(t, "origin/a/b", parsed.Ref())
	})
}
