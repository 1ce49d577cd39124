package engine_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// fakeGateway is a scripted git.Gateway. Listing output is rendered from its
// branch maps so deletions show up on the next Load.
type fakeGateway struct {
	current string
	// local maps branch name to the bracketed tracking text ("" for none)
	local map[string]string
	// remote maps "alias/name" refs that exist
	remote map[string]bool

	fetchErr      error
	listErr       error
	deleteErrs    map[string]error
	deletedLocal  []string
	deletedRemote []string
	fetched       int
	forced        []bool
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		local:      make(map[string]string),
		remote:     make(map[string]bool),
		deleteErrs: make(map[string]error),
	}
}

func (f *fakeGateway) withLocal(name, tracking string) *fakeGateway {
	f.local[name] = tracking
	return f
}

func (f *fakeGateway) withRemote(ref string) *fakeGateway {
	f.remote[ref] = true
	return f
}

func (f *fakeGateway) IsRepository(context.Context) bool { return true }

func (f *fakeGateway) RepoName(context.Context) string { return "fake" }

func (f *fakeGateway) CurrentBranchName(context.Context) (string, error) {
	return f.current, nil
}

func (f *fakeGateway) ListLocalBranchesVerbose(context.Context) (string, error) {
	if f.listErr != nil {
		return "", f.listErr
	}
	names := make([]string, 0, len(f.local))
	for name := range f.local {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		marker := " "
		if name == f.current {
			marker = "*"
		}
		line := fmt.Sprintf("%s %s abc1234", marker, name)
		if tracking := f.local[name]; tracking != "" {
			line += " [" + tracking + "]"
		}
		sb.WriteString(line + " commit message\n")
	}
	return sb.String(), nil
}

func (f *fakeGateway) ListRemoteBranches(context.Context) (string, error) {
	if f.listErr != nil {
		return "", f.listErr
	}
	refs := make([]string, 0, len(f.remote))
	for ref := range f.remote {
		refs = append(refs, ref)
	}
	sort.Strings(refs)

	var sb strings.Builder
	for _, ref := range refs {
		sb.WriteString("  " + ref + "\n")
	}
	return sb.String(), nil
}

func (f *fakeGateway) FetchAndPrune(context.Context) error {
	f.fetched++
	return f.fetchErr
}

func (f *fakeGateway) DeleteLocalBranch(_ context.Context, name string, force bool) error {
	f.forced = append(f.forced, force)
	if err := f.deleteErrs["local:"+name]; err != nil {
		return err
	}
	if _, ok := f.local[name]; !ok {
		return errors.New("error: branch '" + name + "' not found")
	}
	delete(f.local, name)
	f.deletedLocal = append(f.deletedLocal, name)
	return nil
}

func (f *fakeGateway) DeleteRemoteBranch(_ context.Context, remote, name string) error {
	ref := remote + "/" + name
	if err := f.deleteErrs["remote:"+ref]; err != nil {
		return err
	}
	if !f.remote[ref] {
		return errors.New("error: unable to delete '" + name + "': remote ref does not exist")
	}
	delete(f.remote, ref)
	// Deleting on the remote makes any local tracking ref go stale
	for local, tracking := range f.local {
		if tracking == ref {
			f.local[local] = ref + ": gone"
		}
	}
	f.deletedRemote = append(f.deletedRemote, ref)
	return nil
}
