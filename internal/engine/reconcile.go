package engine

import "sort"

// Reconcile merges local and remote facts into one UnifiedBranch per name.
// The result is sorted with protected branches first, then by name.
// A side is never downgraded once any fact has shown it to exist.
func Reconcile(local []LocalFact, remote []RemoteFact, protected ProtectedSet) []*UnifiedBranch {
	byName := make(map[string]*UnifiedBranch, len(local)+len(remote))

	for _, fact := range local {
		if fact.Name == "" {
			continue
		}
		b, ok := byName[fact.Name]
		if !ok {
			b = &UnifiedBranch{Name: fact.Name}
			byName[fact.Name] = b
		}

		b.HasLocal = true
		b.IsCurrent = b.IsCurrent || fact.Current
		b.Comment = fact.Comment
		b.IsProtected = protected.Contains(fact.Name)

		if fact.Tracking != nil {
			tracking := *fact.Tracking
			b.Tracking = &tracking
			b.IsGone = b.IsGone || tracking.Gone
			b.HasRemote = b.HasRemote || !tracking.Gone
			if !tracking.Gone && tracking.Remote != "" {
				b.RemoteName = tracking.Remote
			}
		}
	}

	for _, fact := range remote {
		b, ok := byName[fact.Name]
		if !ok {
			b = &UnifiedBranch{
				Name:        fact.Name,
				IsProtected: protected.Contains(fact.Name),
			}
			byName[fact.Name] = b
		}
		// The remote listing is authoritative for existence and alias
		b.HasRemote = true
		b.RemoteName = fact.Remote
	}

	branches := make([]*UnifiedBranch, 0, len(byName))
	for _, b := range byName {
		// A tracking ref that says "gone" loses to a remote branch we actually saw
		if b.HasRemote {
			b.IsGone = false
		}
		branches = append(branches, b)
	}
	SortBranches(branches)

	return branches
}

// SortBranches orders branches protected-first, then lexicographically by name.
func SortBranches(branches []*UnifiedBranch) {
	sort.SliceStable(branches, func(i, j int) bool {
		if branches[i].IsProtected != branches[j].IsProtected {
			return branches[i].IsProtected
		}
		return branches[i].Name < branches[j].Name
	})
}
