// Package scenario provides a high-level test scenario that combines a Scene
// and a runtime Context to provide a terse API for integration tests.
package scenario

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"reaper.dev/reaper/internal/engine"
	"reaper.dev/reaper/internal/runtime"
	"reaper.dev/reaper/internal/tui"
	"reaper.dev/reaper/testhelpers"
)

// Scenario is a real repository with a reaper context over it. Everything
// the context logs goes to Output.
type Scenario struct {
	T       *testing.T
	Scene   *testhelpers.Scene
	Context *runtime.Context
	Output  *bytes.Buffer
}

// NewScenario creates a Scenario with an optional setup function. It reads
// an empty config file instead of the user's, so it is safe for parallel tests.
func NewScenario(t *testing.T, setup testhelpers.SceneSetup) *Scenario {
	t.Helper()
	return NewScenarioWithOptions(t, setup, runtime.Options{})
}

// NewScenarioWithOptions is NewScenario with extra context options.
// Dir, ConfigPath and Splog are filled in when empty.
func NewScenarioWithOptions(t *testing.T, setup testhelpers.SceneSetup, opts runtime.Options) *Scenario {
	t.Helper()
	scene := testhelpers.NewSceneParallel(t, setup)

	var out bytes.Buffer
	splog, err := tui.NewSplogWithConfig(&out, "")
	require.NoError(t, err)

	if opts.Dir == "" {
		opts.Dir = scene.Dir
	}
	if opts.ConfigPath == "" {
		opts.ConfigPath = filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(opts.ConfigPath, nil, 0o600))
	}
	if opts.Splog == nil {
		opts.Splog = splog
	}

	ctx, err := runtime.GetContext(context.Background(), opts)
	require.NoError(t, err)

	return &Scenario{
		T:       t,
		Scene:   scene,
		Context: ctx,
		Output:  &out,
	}
}

// Engine returns the scenario's engine
func (s *Scenario) Engine() *engine.Engine {
	return s.Context.Engine
}

// RunGit runs a git command in the scenario's repository.
func (s *Scenario) RunGit(args ...string) *Scenario {
	s.T.Helper()
	err := s.Scene.Repo.RunGitCommand(args...)
	require.NoError(s.T, err)
	return s
}

// Checkout checks out a branch and reloads the engine.
func (s *Scenario) Checkout(branch string) *Scenario {
	s.T.Helper()
	err := s.Scene.Repo.CheckoutBranch(branch)
	require.NoError(s.T, err)
	return s.Load()
}

// Load reloads the engine from the repository without fetching.
func (s *Scenario) Load() *Scenario {
	s.T.Helper()
	require.NoError(s.T, s.Engine().Load(context.Background()))
	return s
}

// Refresh fetches, prunes and reloads, failing the test when the fetch fails.
func (s *Scenario) Refresh() *Scenario {
	s.T.Helper()
	res, err := s.Engine().Refresh(context.Background())
	require.NoError(s.T, err)
	require.NoError(s.T, res.FetchErr)
	return s
}

// Delete runs requests through the engine and returns the result.
func (s *Scenario) Delete(requests ...engine.DeletionRequest) *engine.DeletionResult {
	s.T.Helper()
	result, err := s.Engine().Delete(context.Background(), requests)
	require.NoError(s.T, err)
	return result
}

// ExpectStatus asserts the classification of a loaded branch.
func (s *Scenario) ExpectStatus(branch string, expected engine.Status) *Scenario {
	s.T.Helper()
	b := s.Engine().Branch(branch)
	require.NotNil(s.T, b, "branch %s is not in the working set", branch)
	require.Equal(s.T, expected, b.Status(), "status of %s", branch)
	return s
}

// ExpectAbsent asserts that a branch is in neither the local repository nor any remote.
func (s *Scenario) ExpectAbsent(branch string) *Scenario {
	s.T.Helper()
	require.Nil(s.T, s.Engine().Branch(branch), "branch %s should be gone", branch)
	return s
}

// ExpectLocalBranches asserts the exact set of local branches in the repository.
func (s *Scenario) ExpectLocalBranches(expected ...string) *Scenario {
	s.T.Helper()
	testhelpers.ExpectBranches(s.T, s.Scene.Repo, expected)
	return s
}

// ExpectRemoteBranches asserts the exact set of branches in a scene remote.
func (s *Scenario) ExpectRemoteBranches(remote string, expected ...string) *Scenario {
	s.T.Helper()
	bare, ok := s.Scene.Remotes[remote]
	require.True(s.T, ok, "no remote %s in scene", remote)
	testhelpers.ExpectRemoteBranches(s.T, s.Scene.Repo, bare, expected)
	return s
}

// RunCli executes the reaper binary in the scenario's repository and requires success.
func (s *Scenario) RunCli(args ...string) string {
	s.T.Helper()
	out, err := testhelpers.RunBinary(s.T, s.Scene.Dir, nil, args...)
	require.NoError(s.T, err, "reaper %v failed: %s", args, out)
	return out
}

// RunExpectError executes the reaper binary and expects it to fail.
func (s *Scenario) RunExpectError(args ...string) string {
	s.T.Helper()
	out, err := testhelpers.RunBinary(s.T, s.Scene.Dir, nil, args...)
	require.Error(s.T, err, "expected reaper %v to fail, output: %s", args, out)
	return out
}
