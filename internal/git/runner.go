package git

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	reapererrors "reaper.dev/reaper/internal/errors"
)

// DefaultCommandTimeout is the default timeout for git commands
const DefaultCommandTimeout = 5 * time.Minute

// CommandRunner handles execution of git commands
type CommandRunner struct {
	workingDir string
	timeout    time.Duration
	env        []string
}

// NewCommandRunner creates a new CommandRunner
func NewCommandRunner(workingDir string) *CommandRunner {
	return &CommandRunner{workingDir: workingDir, timeout: DefaultCommandTimeout}
}

// WithTimeout returns a copy of the runner that applies timeout to commands
// whose context carries no deadline. A zero timeout disables the default.
func (r *CommandRunner) WithTimeout(timeout time.Duration) *CommandRunner {
	c := *r
	c.timeout = timeout
	return &c
}

// WithEnv returns a copy of the runner that appends env to the process environment.
func (r *CommandRunner) WithEnv(env ...string) *CommandRunner {
	c := *r
	c.env = append(append([]string{}, r.env...), env...)
	return &c
}

// WorkingDir returns the directory commands run in ("" means the process cwd)
func (r *CommandRunner) WorkingDir() string {
	return r.workingDir
}

// Run executes a git command with the given context and returns the trimmed output
func (r *CommandRunner) Run(ctx context.Context, args ...string) (string, error) {
	return r.runInternal(ctx, true, args...)
}

// RunRaw executes a git command and returns the untrimmed output.
// Leading whitespace matters for `git branch` listings.
func (r *CommandRunner) RunRaw(ctx context.Context, args ...string) (string, error) {
	return r.runInternal(ctx, false, args...)
}

// RunLines executes a git command and returns output as lines
func (r *CommandRunner) RunLines(ctx context.Context, args ...string) ([]string, error) {
	output, err := r.Run(ctx, args...)
	if err != nil {
		return nil, err
	}
	if output == "" {
		return []string{}, nil
	}
	return strings.Split(output, "\n"), nil
}

// runInternal is the internal implementation that handles directory, env and timeout
func (r *CommandRunner) runInternal(ctx context.Context, trim bool, args ...string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	// If no timeout/deadline is set in the context, add the default one
	if _, ok := ctx.Deadline(); !ok && r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	if r.workingDir != "" {
		cmd.Dir = r.workingDir
	}
	if len(r.env) > 0 {
		cmd.Env = append(os.Environ(), r.env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", reapererrors.NewGitCommandError("git", args, stdout.String(), stderr.String(), ctx.Err())
		}
		return "", reapererrors.NewGitCommandError("git", args, stdout.String(), stderr.String(), err)
	}
	if trim {
		return strings.TrimSpace(stdout.String()), nil
	}
	return stdout.String(), nil
}

// CheckGitAvailable returns ErrGitNotFound when the git binary cannot be found on PATH.
func CheckGitAvailable() error {
	if _, err := exec.LookPath("git"); err != nil {
		return reapererrors.ErrGitNotFound
	}
	return nil
}
