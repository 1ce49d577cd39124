package git

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

// ListRemotes returns the names of the configured remotes
func (r *CommandRunner) ListRemotes(ctx context.Context) ([]string, error) {
	return r.RunLines(ctx, "remote")
}

// ValidateRemote returns an error when remote is not configured in the repository
func (r *CommandRunner) ValidateRemote(ctx context.Context, remote string) error {
	remotes, err := r.ListRemotes(ctx)
	if err != nil {
		return err
	}
	if slices.Contains(remotes, remote) {
		return nil
	}
	if len(remotes) == 0 {
		return fmt.Errorf("unknown remote %s: the repository has no remotes", remote)
	}
	return fmt.Errorf("unknown remote %s (configured: %s)", remote, strings.Join(remotes, ", "))
}
