// Package errors provides sentinel errors and custom error types for reaper.
// Use errors.Is() and errors.As() to check for specific error types.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common conditions
var (
	// ErrGitNotFound indicates that the git binary is not on PATH
	ErrGitNotFound = errors.New("git not found")

	// ErrNotARepository indicates that the working directory is not inside a git repository
	ErrNotARepository = errors.New("not a git repository")

	// ErrBranchNotFound indicates that a branch does not exist in the working set
	ErrBranchNotFound = errors.New("branch not found")

	// ErrProtectedBranch indicates an attempt to delete a protected branch
	ErrProtectedBranch = errors.New("protected branch")

	// ErrCurrentBranch indicates an attempt to delete the checked-out branch
	ErrCurrentBranch = errors.New("current branch")

	// ErrNoLocalBranch indicates that the branch has no local side to delete
	ErrNoLocalBranch = errors.New("no local branch to delete")

	// ErrNoRemoteBranch indicates that the branch has no remote side to delete
	ErrNoRemoteBranch = errors.New("no remote branch to delete")

	// ErrNothingDeletable indicates that no branch in the working set may be deleted
	ErrNothingDeletable = errors.New("no branches can be deleted (all protected or current)")

	// ErrNothingMarked indicates a delete request with no marked branches
	ErrNothingMarked = errors.New("no branches marked for deletion")

	// ErrNoSideSelected indicates a mark toggle outside the local and remote columns
	ErrNoSideSelected = errors.New("select the local or remote column to mark")

	// ErrBusy indicates that another operation is still running
	ErrBusy = errors.New("another operation is in progress")
)

// BranchNotFoundError represents an error when a branch is not found
type BranchNotFoundError struct {
	BranchName string
}

func (e *BranchNotFoundError) Error() string {
	return fmt.Sprintf("branch %s does not exist", e.BranchName)
}

// Is returns true if the target error is ErrBranchNotFound
func (e *BranchNotFoundError) Is(target error) bool {
	return target == ErrBranchNotFound
}

// NewBranchNotFoundError creates a new BranchNotFoundError
func NewBranchNotFoundError(branchName string) *BranchNotFoundError {
	return &BranchNotFoundError{BranchName: branchName}
}

// PolicyError reports that a deletion was refused before any command ran.
// Reason is one of ErrProtectedBranch, ErrCurrentBranch, ErrNoLocalBranch
// or ErrNoRemoteBranch.
type PolicyError struct {
	BranchName string
	Side       string
	Reason     error
}

func (e *PolicyError) Error() string {
	switch e.Reason {
	case ErrProtectedBranch:
		return fmt.Sprintf("cannot delete protected branch: %s", e.BranchName)
	case ErrCurrentBranch:
		return fmt.Sprintf("cannot delete current branch: %s", e.BranchName)
	case nil:
		return fmt.Sprintf("cannot delete %s branch %s", e.Side, e.BranchName)
	default:
		return fmt.Sprintf("%s: %s", e.Reason.Error(), e.BranchName)
	}
}

// Is matches the underlying reason so callers can use errors.Is(err, ErrProtectedBranch).
func (e *PolicyError) Is(target error) bool {
	return e.Reason != nil && target == e.Reason
}

// Unwrap returns the reason sentinel
func (e *PolicyError) Unwrap() error {
	return e.Reason
}

// NewPolicyError creates a new PolicyError
func NewPolicyError(branchName, side string, reason error) *PolicyError {
	return &PolicyError{
		BranchName: branchName,
		Side:       side,
		Reason:     reason,
	}
}

// IsPolicyError reports whether err (or anything it wraps) is a PolicyError
func IsPolicyError(err error) bool {
	var pe *PolicyError
	return errors.As(err, &pe)
}

// GitCommandError represents an error from a git command execution
type GitCommandError struct {
	Command string
	Args    []string
	Stdout  string
	Stderr  string
	Err     error
}

func (e *GitCommandError) Error() string {
	msg := fmt.Sprintf("git command failed: %s", e.Command)
	if len(e.Args) > 0 {
		msg += fmt.Sprintf(" %v", e.Args)
	}
	if e.Stderr != "" {
		msg += fmt.Sprintf("\nstderr: %s", e.Stderr)
	}
	if e.Stdout != "" {
		msg += fmt.Sprintf("\nstdout: %s", e.Stdout)
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n%v", e.Err)
	}
	return msg
}

func (e *GitCommandError) Unwrap() error {
	return e.Err
}

// Summary returns a single line suitable for a status bar. A rejected ref
// line wins, then the first error: or fatal: line with its prefix trimmed,
// then the first other line. hint: lines are never picked.
func (e *GitCommandError) Summary() string {
	var rejected, first, generic string
	for _, raw := range strings.Split(e.Stderr, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "hint:") {
			continue
		}
		if strings.HasPrefix(line, "!") {
			if rejected == "" {
				rejected = line
			}
			continue
		}
		if msg, ok := trimGitPrefix(line); ok {
			// "failed to push some refs" only says that something above failed
			if strings.HasPrefix(msg, "failed to push some refs") {
				if generic == "" {
					generic = msg
				}
				continue
			}
			return firstNonEmpty(rejected, msg)
		}
		if first == "" {
			first = line
		}
	}
	if s := firstNonEmpty(rejected, generic, first); s != "" {
		return s
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "git " + strings.Join(e.Args, " ") + " failed"
}

// NewGitCommandError creates a new GitCommandError
func NewGitCommandError(command string, args []string, stdout, stderr string, err error) *GitCommandError {
	return &GitCommandError{
		Command: command,
		Args:    args,
		Stdout:  stdout,
		Stderr:  stderr,
		Err:     err,
	}
}

// Message returns a one-line description of err, preferring the git stderr
// summary when err wraps a GitCommandError.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var gce *GitCommandError
	if errors.As(err, &gce) {
		return gce.Summary()
	}
	return err.Error()
}

func trimGitPrefix(line string) (string, bool) {
	for _, prefix := range []string{"error:", "fatal:"} {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix)), true
		}
	}
	return "", false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
