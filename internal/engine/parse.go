package engine

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// Tracking is the upstream annotation `git branch -vv` prints in brackets,
// e.g. [origin/feature: ahead 2, behind 1] or [origin/feature: gone].
type Tracking struct {
	Remote string // text before the first slash; empty for a local upstream
	Branch string // upstream branch name after the remote alias
	Gone   bool
	Ahead  int
	Behind int
}

// Ref returns the upstream as git prints it, e.g. "origin/feature"
func (t Tracking) Ref() string {
	if t.Remote == "" {
		return t.Branch
	}
	return t.Remote + "/" + t.Branch
}

// String serializes the annotation back to the form git prints inside the brackets.
func (t Tracking) String() string {
	ref := t.Ref()
	if t.Gone {
		return ref + ": gone"
	}
	var parts []string
	if t.Ahead > 0 {
		parts = append(parts, fmt.Sprintf("ahead %d", t.Ahead))
	}
	if t.Behind > 0 {
		parts = append(parts, fmt.Sprintf("behind %d", t.Behind))
	}
	if len(parts) == 0 {
		return ref
	}
	return ref + ": " + strings.Join(parts, ", ")
}

// ParseTracking parses the text between the brackets of a tracking annotation.
// Unknown status words are ignored.
func ParseTracking(info string) Tracking {
	var t Tracking

	ref := strings.TrimSpace(info)
	status := ""
	if idx := strings.Index(ref, ":"); idx >= 0 {
		status = strings.TrimSpace(ref[idx+1:])
		ref = strings.TrimSpace(ref[:idx])
	}

	if remote, branch, ok := strings.Cut(ref, "/"); ok {
		t.Remote = remote
		t.Branch = branch
	} else {
		t.Branch = ref
	}

	for _, part := range strings.Split(status, ",") {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "gone":
			t.Gone = true
		case "ahead", "behind":
			if len(fields) < 2 {
				continue
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				continue
			}
			if fields[0] == "ahead" {
				t.Ahead = n
			} else {
				t.Behind = n
			}
		}
	}

	return t
}

// LocalFact is what one line of `git branch -vv` says about a local branch
type LocalFact struct {
	Name     string
	Hash     string
	Current  bool
	Tracking *Tracking
	Comment  string
}

// RemoteFact is what one line of `git branch -r` says about a remote branch
type RemoteFact struct {
	Remote string
	Name   string
}

// ParseLocalBranches parses `git branch -vv` output. Lines that cannot be
// understood are skipped or contribute partial facts; parsing never fails.
func ParseLocalBranches(output string) []LocalFact {
	var facts []LocalFact

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		fact, ok := parseLocalLine(scanner.Text())
		if ok {
			facts = append(facts, fact)
		}
	}

	return facts
}

func parseLocalLine(line string) (LocalFact, bool) {
	var fact LocalFact

	clean := strings.TrimLeft(line, " \t")
	if clean == "" {
		return fact, false
	}

	// "*" marks the checked-out branch, "+" a branch checked out in another worktree
	switch clean[0] {
	case '*':
		fact.Current = true
		clean = clean[1:]
	case '+':
		clean = clean[1:]
	}
	clean = strings.TrimSpace(clean)

	// Detached HEAD shows up as "(HEAD detached at abc123)"
	if clean == "" || strings.HasPrefix(clean, "(") {
		return fact, false
	}

	name, rest := cutField(clean)
	fact.Name = name
	fact.Hash, rest = cutField(rest)

	// -vv prints the worktree path of branches checked out elsewhere
	if strings.HasPrefix(rest, "(") {
		if end := strings.Index(rest, ")"); end > 0 {
			rest = strings.TrimLeft(rest[end+1:], " \t")
		}
	}

	if strings.HasPrefix(rest, "[") {
		if end := strings.Index(rest, "]"); end > 0 {
			tracking := ParseTracking(rest[1:end])
			fact.Tracking = &tracking
			rest = rest[end+1:]
		}
	}
	fact.Comment = strings.TrimSpace(rest)

	return fact, true
}

// cutField splits s into its first whitespace-delimited token and the trimmed remainder
func cutField(s string) (string, string) {
	s = strings.TrimLeft(s, " \t")
	idx := strings.IndexAny(s, " \t")
	if idx < 0 {
		return s, ""
	}
	return s[:idx], strings.TrimLeft(s[idx:], " \t")
}

// ParseRemoteBranches parses `git branch -r` output. Symbolic refs
// ("origin/HEAD -> origin/main") and lines without a remote alias are skipped.
func ParseRemoteBranches(output string) []RemoteFact {
	var facts []RemoteFact

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.Contains(line, "->") {
			continue
		}
		remote, name, ok := strings.Cut(line, "/")
		if !ok || remote == "" || name == "" {
			continue
		}
		facts = append(facts, RemoteFact{Remote: remote, Name: name})
	}

	return facts
}
