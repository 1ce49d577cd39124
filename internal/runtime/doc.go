// Package runtime provides the execution context for reaper commands.
//
// It resolves the repository, merges configuration layers, and builds the
// engine and logger that actions and front ends share. Setting REAPER_DEMO
// swaps the git gateway for the in-memory demo repository.
package runtime
