// Package engine reconciles local and remote branch listings into one view
// and deletes branches from either side.
//
// It is the core of reaper, responsible for:
//   - Parsing `git branch -vv` and `git branch -r` output into facts
//   - Merging those facts into one UnifiedBranch per name
//   - Classifying branches as synced, orphan, local or remote
//   - Deciding which sides may be deleted (protected and current branches never)
//   - Running deletion batches that tolerate partial failure
//
// The engine talks to git only through git.Gateway.
package engine
