package utils

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// MaxBranchNameByteLength is the maximum length for a branch name
	// Git refs have a max length of 256 bytes, minus 11 for "refs/heads/"
	MaxBranchNameByteLength = 245
)

var (
	// BranchNameInvalidRegex matches characters git refuses in ref names
	BranchNameInvalidRegex = regexp.MustCompile(`[\x00-\x20\x7f~^:?*\[\\]`)

	// branchListPrefixRegex matches the markers git branch prints before names
	branchListPrefixRegex = regexp.MustCompile(`^[*+]\s+`)
)

// ValidateBranchName reports whether name could be a git branch name.
// It follows the rules of git check-ref-format for a single branch.
func ValidateBranchName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("branch name is empty")
	case len(name) > MaxBranchNameByteLength:
		return fmt.Errorf("branch name is longer than %d bytes: %s", MaxBranchNameByteLength, name)
	case BranchNameInvalidRegex.MatchString(name):
		return fmt.Errorf("branch name contains an invalid character: %q", name)
	case strings.HasPrefix(name, "-"), strings.HasPrefix(name, "/"):
		return fmt.Errorf("branch name cannot start with %q: %s", name[:1], name)
	case strings.HasSuffix(name, "/"), strings.HasSuffix(name, "."), strings.HasSuffix(name, ".lock"):
		return fmt.Errorf("branch name has an invalid ending: %s", name)
	case strings.Contains(name, ".."), strings.Contains(name, "//"), strings.Contains(name, "@{"), strings.Contains(name, "/."):
		return fmt.Errorf("branch name contains an invalid sequence: %s", name)
	case name == "@":
		return fmt.Errorf("branch name cannot be @")
	}
	return nil
}

// NormalizeBranchListName strips the current and worktree markers that
// `git branch` prints, so its output can be piped back in.
func NormalizeBranchListName(line string) string {
	line = strings.TrimSpace(line)
	return branchListPrefixRegex.ReplaceAllString(line, "")
}
