package engine

import (
	"context"
	"fmt"

	reapererrors "reaper.dev/reaper/internal/errors"
	"reaper.dev/reaper/internal/git"
)

// DefaultRemote is used for remote deletes when a branch records no alias
const DefaultRemote = "origin"

// DeletionRequest asks for one side of one branch to be deleted
type DeletionRequest struct {
	Branch string
	Side   Side
}

func (r DeletionRequest) String() string {
	return fmt.Sprintf("[%s] %s", r.Side, r.Branch)
}

// OutcomeKind says what happened to a request
type OutcomeKind int

const (
	// OutcomeDeleted means the command ran and succeeded
	OutcomeDeleted OutcomeKind = iota
	// OutcomeFailed means the command ran and git refused
	OutcomeFailed
	// OutcomeSkipped means policy re-validation refused the request; no command ran
	OutcomeSkipped
)

// Outcome is the result of one DeletionRequest
type Outcome struct {
	Request DeletionRequest
	Kind    OutcomeKind
	Remote  string // remote alias used for remote deletes
	Message string
	Err     error
}

// DeletionResult summarises a batch
type DeletionResult struct {
	Outcomes  []Outcome
	Succeeded int
	Failed    int
	Skipped   int
	// RelatedLocals lists local branches that still exist under the name of a
	// remote branch deleted in this batch.
	RelatedLocals []string
}

// Errors returns the messages of every failed or skipped request, in order
func (r *DeletionResult) Errors() []string {
	var msgs []string
	for _, o := range r.Outcomes {
		if o.Kind != OutcomeDeleted {
			msgs = append(msgs, o.Message)
		}
	}
	return msgs
}

// HasErrors reports whether anything was not deleted
func (r *DeletionResult) HasErrors() bool {
	return r.Failed > 0 || r.Skipped > 0
}

// Logger receives debug output from the engine
type Logger interface {
	Debug(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}

// Orchestrator executes deletion batches against a gateway.
type Orchestrator struct {
	gateway       git.Gateway
	policy        Policy
	defaultRemote string
	forceLocal    bool
	log           Logger
}

// OrchestratorOptions configures an Orchestrator
type OrchestratorOptions struct {
	DefaultRemote string
	// ForceLocal deletes local branches regardless of merge status (git branch -D)
	ForceLocal bool
	Logger     Logger
}

// NewOrchestrator creates an Orchestrator
func NewOrchestrator(gateway git.Gateway, policy Policy, opts OrchestratorOptions) *Orchestrator {
	if opts.DefaultRemote == "" {
		opts.DefaultRemote = DefaultRemote
	}
	if opts.Logger == nil {
		opts.Logger = nopLogger{}
	}
	return &Orchestrator{
		gateway:       gateway,
		policy:        policy,
		defaultRemote: opts.DefaultRemote,
		forceLocal:    opts.ForceLocal,
		log:           opts.Logger,
	}
}

// Execute processes every request in order against branches. Each request is
// re-validated against the entity as it is now; failures are recorded and the
// batch continues. Successful deletes clear the side's existence flag and mark.
// The returned slice drops entities that no longer exist on either side.
func (o *Orchestrator) Execute(ctx context.Context, branches []*UnifiedBranch, requests []DeletionRequest) (*DeletionResult, []*UnifiedBranch) {
	byName := make(map[string]*UnifiedBranch, len(branches))
	for _, b := range branches {
		byName[b.Name] = b
	}

	result := &DeletionResult{}
	for _, req := range requests {
		outcome := o.executeOne(ctx, byName[req.Branch], req)
		switch outcome.Kind {
		case OutcomeDeleted:
			result.Succeeded++
		case OutcomeFailed:
			result.Failed++
		case OutcomeSkipped:
			result.Skipped++
		}
		o.log.Debug("delete %s: %s", req, outcome.Message)
		result.Outcomes = append(result.Outcomes, outcome)
	}

	kept := branches[:0:0]
	for _, b := range branches {
		if b.HasLocal || b.HasRemote {
			kept = append(kept, b)
		}
	}

	return result, kept
}

func (o *Orchestrator) executeOne(ctx context.Context, b *UnifiedBranch, req DeletionRequest) Outcome {
	outcome := Outcome{Request: req}

	if b == nil {
		err := reapererrors.NewBranchNotFoundError(req.Branch)
		outcome.Kind = OutcomeSkipped
		outcome.Err = err
		outcome.Message = fmt.Sprintf("Skipped %s: %v", req.Branch, err)
		return outcome
	}

	if err := o.policy.Check(b, req.Side); err != nil {
		outcome.Kind = OutcomeSkipped
		outcome.Err = err
		outcome.Message = fmt.Sprintf("Skipped %s: %v", req.Branch, err)
		return outcome
	}

	switch req.Side {
	case SideLocal:
		if err := o.gateway.DeleteLocalBranch(ctx, b.Name, o.forceLocal); err != nil {
			outcome.Kind = OutcomeFailed
			outcome.Err = err
			outcome.Message = fmt.Sprintf("Failed to delete local %s: %s", b.Name, reapererrors.Message(err))
			return outcome
		}
		b.HasLocal = false
		b.IsCurrent = false
		b.LocalMarked = false
		outcome.Message = fmt.Sprintf("Deleted local: %s", b.Name)

	case SideRemote:
		remote := b.RemoteOr(o.defaultRemote)
		outcome.Remote = remote
		if err := o.gateway.DeleteRemoteBranch(ctx, remote, b.Name); err != nil {
			outcome.Kind = OutcomeFailed
			outcome.Err = err
			outcome.Message = fmt.Sprintf("Failed to delete remote %s/%s: %s", remote, b.Name, reapererrors.Message(err))
			return outcome
		}
		b.HasRemote = false
		b.RemoteMarked = false
		outcome.Message = fmt.Sprintf("Deleted remote: %s/%s", remote, b.Name)
	}

	outcome.Kind = OutcomeDeleted
	return outcome
}
