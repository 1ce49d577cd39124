// Package git provides low-level Git operations.
//
// It wraps git command execution behind the Gateway interface:
//   - Repository checks (is this a repository, what is it called)
//   - Branch listings (`git branch -vv`, `git branch -r`)
//   - Remote maintenance (fetch with prune)
//   - Branch deletion, locally and on a remote
//
// This package should be the only place where direct git commands are executed.
package git
