package testhelpers

import (
	"os"
	"path/filepath"
	"testing"
)

// Scene represents a test scene with a temporary directory and Git repository.
type Scene struct {
	Dir     string
	Repo    *GitRepo
	Remotes map[string]string
}

// SceneSetup is a function type for setting up a scene.
type SceneSetup func(*Scene) error

// NewScene creates a new test scene with a temporary directory and Git
// repository and changes into it. Tests using it must not run in parallel.
func NewScene(t *testing.T, setup SceneSetup) *Scene {
	t.Helper()
	scene := newScene(t, setup)

	oldDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get current directory: %v", err)
	}
	if err := os.Chdir(scene.Dir); err != nil {
		t.Fatalf("Failed to change directory: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(oldDir)
	})

	return scene
}

// NewSceneParallel creates a scene without changing the working directory
// or the environment, so it is safe for parallel tests.
func NewSceneParallel(t *testing.T, setup SceneSetup) *Scene {
	t.Helper()
	return newScene(t, setup)
}

func newScene(t *testing.T, setup SceneSetup) *Scene {
	t.Helper()

	// Sibling bare remotes are created next to the repo, inside the test's temp root
	tmpDir := filepath.Join(t.TempDir(), "repo")

	repo, err := NewGitRepo(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create Git repo: %v", err)
	}

	scene := &Scene{
		Dir:     tmpDir,
		Repo:    repo,
		Remotes: make(map[string]string),
	}

	if setup != nil {
		if err := setup(scene); err != nil {
			t.Fatalf("Setup failed: %v", err)
		}
	}

	return scene
}

// IsolateUserConfig points XDG_CONFIG_HOME at an empty directory so a
// developer's own reaper config cannot leak into tests.
func IsolateUserConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("REAPER_CONFIG", "")
	return dir
}

// AddRemote creates a bare remote for the scene and records its path.
func (s *Scene) AddRemote(name string) (string, error) {
	bare, err := s.Repo.CreateBareRemote(name)
	if err != nil {
		return "", err
	}
	s.Remotes[name] = bare
	return bare, nil
}

// BasicSceneSetup is a setup function that creates a basic scene with a single commit.
func BasicSceneSetup(scene *Scene) error {
	return scene.Repo.CreateChangeAndCommit("1", "1")
}

// MixedBranchesSetup builds a repository with an origin remote and one
// branch of every kind, leaving main checked out:
//
//	main       synced, protected, current
//	topic      synced
//	feature-x  orphan (deleted on origin, pruned locally)
//	feature-y  remote only
//	scratch    local only
func MixedBranchesSetup(scene *Scene) error {
	repo := scene.Repo
	if err := repo.CreateChangeAndCommit("initial", "init"); err != nil {
		return err
	}
	origin, err := scene.AddRemote("origin")
	if err != nil {
		return err
	}
	if err := repo.PushBranch("origin", "main"); err != nil {
		return err
	}

	for _, name := range []string{"topic", "feature-x", "feature-y"} {
		if err := repo.CreateAndCheckoutBranch(name); err != nil {
			return err
		}
		if err := repo.CreateChangeAndCommit("work on "+name, name); err != nil {
			return err
		}
		if err := repo.PushBranch("origin", name); err != nil {
			return err
		}
		if err := repo.CheckoutBranch("main"); err != nil {
			return err
		}
	}

	if err := repo.CreateAndCheckoutBranch("scratch"); err != nil {
		return err
	}
	if err := repo.CreateChangeAndCommit("scratch work", "scratch"); err != nil {
		return err
	}
	if err := repo.CheckoutBranch("main"); err != nil {
		return err
	}

	if err := repo.DeleteBranch("feature-y"); err != nil {
		return err
	}
	if err := repo.DeleteBranchOnRemote(origin, "feature-x"); err != nil {
		return err
	}
	return repo.FetchPrune()
}
