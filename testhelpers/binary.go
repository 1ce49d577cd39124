package testhelpers

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

var (
	sharedBinaryPath string
	binaryOnce       sync.Once
	binaryErr        error
)

// SetSharedBinaryPath sets the shared binary path for tests.
func SetSharedBinaryPath(path string) {
	sharedBinaryPath = path
}

// GetSharedBinaryPath returns the shared binary path, building it if necessary.
// It is safe to call from any test package and builds the binary lazily on
// first access if it hasn't been set via SetSharedBinaryPath.
func GetSharedBinaryPath() string {
	binaryOnce.Do(func() {
		if sharedBinaryPath == "" {
			path, _, err := buildBinary()
			if err != nil {
				binaryErr = err
				return
			}
			sharedBinaryPath = path
		}
	})
	return sharedBinaryPath
}

// GetBinaryError returns any error that occurred during binary building.
func GetBinaryError() error {
	return binaryErr
}

// findModuleRoot walks up the directory tree from startDir to find the module root
// (directory containing go.mod file).
func findModuleRoot(startDir string) string {
	dir := startDir
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// TestMain builds the reaper binary once, runs the package's tests and
// cleans up. Packages use it from their own TestMain.
func TestMain(m *testing.M, cleanup func()) {
	binaryPath, binaryCleanup, err := buildBinary()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build reaper binary: %v\n", err)
		os.Exit(1)
	}

	SetSharedBinaryPath(binaryPath)

	code := m.Run()

	binaryCleanup()
	if cleanup != nil {
		cleanup()
	}
	os.Exit(code)
}

// buildBinary builds the reaper binary and returns its path and cleanup function.
func buildBinary() (string, func(), error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	moduleRoot := findModuleRoot(wd)
	if moduleRoot == "" {
		return "", nil, fmt.Errorf("could not find module root (go.mod) starting from %s", wd)
	}

	tmpDir, err := os.MkdirTemp("", "reaper-test-binary-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	binaryPath := filepath.Join(tmpDir, "reaper")

	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/reaper")
	cmd.Dir = moduleRoot
	output, err := cmd.CombinedOutput()
	if err != nil {
		_ = os.RemoveAll(tmpDir) // Ignore cleanup errors
		return "", nil, fmt.Errorf("failed to build: %s: %w", string(output), err)
	}

	cleanup := func() {
		_ = os.RemoveAll(tmpDir) // Ignore cleanup errors
	}

	return binaryPath, cleanup, nil
}

// RunBinary runs the reaper binary in dir with extra environment and returns
// combined output. Prompts, colors and the log file are off, and the user
// config directory is an empty temporary one.
func RunBinary(t *testing.T, dir string, env []string, args ...string) (string, error) {
	t.Helper()
	cmd := binaryCommand(t, dir, env, args...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

// RunBinaryWithStdin is RunBinary with stdin fed from input.
func RunBinaryWithStdin(t *testing.T, dir string, input string, args ...string) (string, error) {
	t.Helper()
	cmd := binaryCommand(t, dir, nil, args...)
	cmd.Stdin = strings.NewReader(input)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func binaryCommand(t *testing.T, dir string, env []string, args ...string) *exec.Cmd {
	t.Helper()

	binaryPath := GetSharedBinaryPath()
	if binaryPath == "" {
		t.Fatalf("reaper binary not built: %v", GetBinaryError())
	}

	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = dir
	cmd.Env = append(gitEnv(),
		"NO_COLOR=1",
		"REAPER_LOG_FILE=off",
		"REAPER_NON_INTERACTIVE=1",
		"REAPER_CONFIG=",
		"REAPER_DEMO=",
		"XDG_CONFIG_HOME="+t.TempDir(),
	)
	cmd.Env = append(cmd.Env, env...)
	return cmd
}
