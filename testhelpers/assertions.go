// Package testhelpers provides testing utilities for reaper,
// including a scene system, Git repository helpers, and custom assertions.
package testhelpers

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// Must is a generic helper function that panics if err is not nil,
// otherwise returns the value. This is useful for test setup code
// where errors are not expected and should halt execution immediately.
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// ExpectBranches asserts that the repository has exactly the expected local branches.
func ExpectBranches(t *testing.T, repo *GitRepo, expected []string) {
	t.Helper()

	branches, err := repo.GetLocalBranches()
	require.NoError(t, err, "Failed to list branches")

	expectSameSet(t, expected, branches, "Branches do not match")
}

// ExpectRemoteBranches asserts that a bare remote has exactly the expected branches.
func ExpectRemoteBranches(t *testing.T, repo *GitRepo, bareDir string, expected []string) {
	t.Helper()

	branches, err := repo.RemoteBranches(bareDir)
	require.NoError(t, err, "Failed to list remote branches")

	expectSameSet(t, expected, branches, "Remote branches do not match")
}

func expectSameSet(t *testing.T, expected, actual []string, msg string) {
	t.Helper()

	expectedSorted := append([]string{}, expected...)
	actualSorted := append([]string{}, actual...)
	sort.Strings(expectedSorted)
	sort.Strings(actualSorted)

	require.Equal(t, expectedSorted, actualSorted, msg)
}
