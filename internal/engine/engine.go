package engine

import (
	"context"
	"fmt"

	"reaper.dev/reaper/internal/git"
)

// Options configures an Engine
type Options struct {
	Protected     ProtectedSet
	DefaultRemote string
	ForceLocal    bool
	Logger        Logger
}

// Engine owns the reconciled working set for one repository. It is not safe
// for concurrent use; front ends render from Snapshot while an operation runs.
type Engine struct {
	gateway      git.Gateway
	policy       Policy
	orchestrator *Orchestrator
	log          Logger

	branches []*UnifiedBranch
	current  string
}

// NewEngine creates an Engine. Call Load before reading branches.
func NewEngine(gateway git.Gateway, opts Options) *Engine {
	policy := NewPolicy(opts.Protected)
	if opts.Logger == nil {
		opts.Logger = nopLogger{}
	}
	return &Engine{
		gateway: gateway,
		policy:  policy,
		orchestrator: NewOrchestrator(gateway, policy, OrchestratorOptions{
			DefaultRemote: opts.DefaultRemote,
			ForceLocal:    opts.ForceLocal,
			Logger:        opts.Logger,
		}),
		log: opts.Logger,
	}
}

// Policy returns the deletion policy in force
func (e *Engine) Policy() Policy {
	return e.policy
}

// Gateway returns the underlying gateway
func (e *Engine) Gateway() git.Gateway {
	return e.gateway
}

// CurrentBranch returns the checked-out branch as of the last Load
func (e *Engine) CurrentBranch() string {
	return e.current
}

// Load rebuilds the working set from scratch: list both sides, parse, reconcile.
func (e *Engine) Load(ctx context.Context) error {
	current, err := e.gateway.CurrentBranchName(ctx)
	if err != nil {
		// Detached HEAD and fresh repositories still list branches
		e.log.Debug("could not determine current branch: %v", err)
		current = ""
	}

	localText, err := e.gateway.ListLocalBranchesVerbose(ctx)
	if err != nil {
		return err
	}
	remoteText, err := e.gateway.ListRemoteBranches(ctx)
	if err != nil {
		return err
	}

	local := ParseLocalBranches(localText)
	remote := ParseRemoteBranches(remoteText)

	// git knows best which branch is checked out; the marker is a fallback
	if current != "" {
		for i := range local {
			local[i].Current = local[i].Name == current
		}
	}

	e.branches = Reconcile(local, remote, e.policy.Protected)
	e.current = current
	e.log.Debug("reconciled %d local and %d remote facts into %d branches", len(local), len(remote), len(e.branches))
	return nil
}

// RefreshResult reports how a refresh went. A failed fetch is not fatal:
// the working set is still reloaded from the local view.
type RefreshResult struct {
	FetchErr error
}

// Refresh fetches and prunes every remote, then reloads.
func (e *Engine) Refresh(ctx context.Context) (RefreshResult, error) {
	var res RefreshResult
	if err := e.gateway.FetchAndPrune(ctx); err != nil {
		e.log.Debug("fetch failed: %v", err)
		res.FetchErr = err
	}
	if err := e.Load(ctx); err != nil {
		return res, err
	}
	return res, nil
}

// Branches returns the working set. Callers must not retain it across operations.
func (e *Engine) Branches() []*UnifiedBranch {
	return e.branches
}

// Snapshot returns deep copies of the working set
func (e *Engine) Snapshot() []*UnifiedBranch {
	out := make([]*UnifiedBranch, len(e.branches))
	for i, b := range e.branches {
		out[i] = b.Clone()
	}
	return out
}

// Branch returns the branch with the given name, or nil
func (e *Engine) Branch(name string) *UnifiedBranch {
	for _, b := range e.branches {
		if b.Name == name {
			return b
		}
	}
	return nil
}

// Delete executes requests, drops branches gone from both sides, and then
// reloads everything so side effects (newly orphaned locals) show up.
// The returned error only reports a failed reload; per-item failures live in
// the result.
func (e *Engine) Delete(ctx context.Context, requests []DeletionRequest) (*DeletionResult, error) {
	result, kept := e.orchestrator.Execute(ctx, e.branches, requests)
	e.branches = kept

	if err := e.Load(ctx); err != nil {
		return result, fmt.Errorf("failed to reload branches after deletion: %w", err)
	}

	result.RelatedLocals = e.relatedLocals(result)
	return result, nil
}

// relatedLocals finds local branches named after remote branches deleted in result
func (e *Engine) relatedLocals(result *DeletionResult) []string {
	var names []string
	seen := make(map[string]bool)
	for _, o := range result.Outcomes {
		if o.Kind != OutcomeDeleted || o.Request.Side != SideRemote || seen[o.Request.Branch] {
			continue
		}
		seen[o.Request.Branch] = true
		if b := e.Branch(o.Request.Branch); b != nil && b.HasLocal {
			names = append(names, b.Name)
		}
	}
	return names
}

// Deletable returns the branches whose given side may be deleted
func (e *Engine) Deletable(side Side) []*UnifiedBranch {
	var out []*UnifiedBranch
	for _, b := range e.branches {
		if e.policy.CanDelete(b, side) {
			out = append(out, b)
		}
	}
	return out
}

// Orphans returns local branches whose upstream is gone
func (e *Engine) Orphans() []*UnifiedBranch {
	var out []*UnifiedBranch
	for _, b := range e.branches {
		if b.Status() == StatusOrphan {
			out = append(out, b)
		}
	}
	return out
}
