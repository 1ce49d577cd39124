package demo

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"sync"
	"time"

	"reaper.dev/reaper/internal/git"
)

// Latency is the Delay used when reaper runs in demo mode
const Latency = 400 * time.Millisecond

// Gateway is an in-memory git.Gateway. It renders the same text git prints
// and applies deletions to its branch list. It is safe for concurrent use.
type Gateway struct {
	// Delay is added to fetch and delete calls to simulate network latency
	Delay time.Duration

	mu       sync.Mutex
	current  string
	branches []Branch
	fetchErr error
	listErr  error
	failures map[string]error
	calls    []string
}

// NewGateway creates a Gateway over the demo repository
func NewGateway() *Gateway {
	return NewGatewayWithBranches(CurrentBranch, Branches())
}

// NewGatewayWithBranches creates a Gateway over the given branches
func NewGatewayWithBranches(current string, branches []Branch) *Gateway {
	return &Gateway{
		current:  current,
		branches: branches,
		failures: make(map[string]error),
	}
}

var _ git.Gateway = (*Gateway)(nil)

// FailFetch makes FetchAndPrune return err
func (g *Gateway) FailFetch(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fetchErr = err
}

// FailList makes both listing calls return err
func (g *Gateway) FailList(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listErr = err
}

// FailLocalDelete makes deleting the local branch name return err
func (g *Gateway) FailLocalDelete(name string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failures["local:"+name] = err
}

// FailRemoteDelete makes deleting remote/name return err
func (g *Gateway) FailRemoteDelete(remote, name string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failures["remote:"+remote+"/"+name] = err
}

// Calls returns the mutating commands run so far, e.g. "branch -D topic"
func (g *Gateway) Calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.calls...)
}

// Checkout changes the current branch
func (g *Gateway) Checkout(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.current = name
}

// AddRemoteBranch simulates a teammate pushing a branch
func (g *Gateway) AddRemoteBranch(remote, name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if b := g.find(name); b != nil {
		if !contains(b.Remotes, remote) {
			b.Remotes = append(b.Remotes, remote)
		}
		return
	}
	g.branches = append(g.branches, Branch{Name: name, Remotes: []string{remote}})
}

func (g *Gateway) IsRepository(context.Context) bool { return true }

func (g *Gateway) RepoName(context.Context) string { return "reaper-demo" }

func (g *Gateway) CurrentBranchName(context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current, nil
}

func (g *Gateway) ListLocalBranchesVerbose(context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.listErr != nil {
		return "", g.listErr
	}

	var locals []Branch
	width := 0
	for _, b := range g.branches {
		if b.Local {
			locals = append(locals, b)
			if len(b.Name) > width {
				width = len(b.Name)
			}
		}
	}
	sort.Slice(locals, func(i, j int) bool { return locals[i].Name < locals[j].Name })

	var sb strings.Builder
	for _, b := range locals {
		marker := " "
		if b.Name == g.current {
			marker = "*"
		}
		fmt.Fprintf(&sb, "%s %-*s %s", marker, width, b.Name, shortHash(b.Name))
		if tracking := trackingText(b); tracking != "" {
			fmt.Fprintf(&sb, " [%s]", tracking)
		}
		fmt.Fprintf(&sb, " %s\n", b.Subject)
	}
	return sb.String(), nil
}

func (g *Gateway) ListRemoteBranches(context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.listErr != nil {
		return "", g.listErr
	}

	var refs []string
	for _, b := range g.branches {
		for _, remote := range b.Remotes {
			refs = append(refs, remote+"/"+b.Name)
		}
	}
	sort.Strings(refs)

	var sb strings.Builder
	sb.WriteString("  origin/HEAD -> origin/main\n")
	for _, ref := range refs {
		fmt.Fprintf(&sb, "  %s\n", ref)
	}
	return sb.String(), nil
}

func (g *Gateway) FetchAndPrune(ctx context.Context) error {
	if err := g.wait(ctx); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, "fetch --all --prune")
	return g.fetchErr
}

func (g *Gateway) DeleteLocalBranch(ctx context.Context, name string, force bool) error {
	if err := g.wait(ctx); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	flag := "-d"
	if force {
		flag = "-D"
	}
	g.calls = append(g.calls, "branch "+flag+" "+name)

	if err := g.failures["local:"+name]; err != nil {
		return err
	}
	b := g.find(name)
	if b == nil || !b.Local {
		return fmt.Errorf("error: branch '%s' not found", name)
	}
	if name == g.current {
		return fmt.Errorf("error: cannot delete branch '%s' used by worktree", name)
	}
	if !force && b.Ahead > 0 {
		return fmt.Errorf("error: the branch '%s' is not fully merged", name)
	}

	b.Local = false
	b.Tracking = ""
	b.Gone = false
	g.compact()
	return nil
}

func (g *Gateway) DeleteRemoteBranch(ctx context.Context, remote, name string) error {
	if err := g.wait(ctx); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls = append(g.calls, "push "+remote+" --delete "+name)

	if err := g.failures["remote:"+remote+"/"+name]; err != nil {
		return err
	}
	b := g.find(name)
	if b == nil || !contains(b.Remotes, remote) {
		return fmt.Errorf("error: unable to delete '%s': remote ref does not exist", name)
	}

	kept := b.Remotes[:0]
	for _, r := range b.Remotes {
		if r != remote {
			kept = append(kept, r)
		}
	}
	b.Remotes = kept
	if b.Tracking == remote+"/"+name {
		b.Gone = true
		b.Ahead, b.Behind = 0, 0
	}
	g.compact()
	return nil
}

func (g *Gateway) wait(ctx context.Context) error {
	if g.Delay <= 0 {
		return nil
	}
	select {
	case <-time.After(g.Delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// find returns the branch named name; the caller holds mu
func (g *Gateway) find(name string) *Branch {
	for i := range g.branches {
		if g.branches[i].Name == name {
			return &g.branches[i]
		}
	}
	return nil
}

// compact drops branches that exist nowhere; the caller holds mu
func (g *Gateway) compact() {
	kept := g.branches[:0]
	for _, b := range g.branches {
		if b.Local || len(b.Remotes) > 0 {
			kept = append(kept, b)
		}
	}
	g.branches = kept
}

func trackingText(b Branch) string {
	if b.Tracking == "" {
		return ""
	}
	if b.Gone {
		return b.Tracking + ": gone"
	}
	var parts []string
	if b.Ahead > 0 {
		parts = append(parts, fmt.Sprintf("ahead %d", b.Ahead))
	}
	if b.Behind > 0 {
		parts = append(parts, fmt.Sprintf("behind %d", b.Behind))
	}
	if len(parts) == 0 {
		return b.Tracking
	}
	return b.Tracking + ": " + strings.Join(parts, ", ")
}

func shortHash(name string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	return fmt.Sprintf("%07x", h.Sum32()&0xfffffff)
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
