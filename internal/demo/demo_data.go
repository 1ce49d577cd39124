// Package demo provides a simulated git gateway for trying reaper and for
// testing front ends without a real repository.
package demo

// Branch is one simulated branch name across the local repository and its remotes
type Branch struct {
	Name string
	// Local is true when the branch exists in the local repository
	Local bool
	// Tracking is the upstream ref, e.g. "origin/feature"; empty when none
	Tracking string
	// Gone marks the upstream as pruned
	Gone   bool
	Ahead  int
	Behind int
	// Remotes lists the aliases that hold a branch of this name
	Remotes []string
	Subject string
}

// CurrentBranch is checked out in the demo repository
const CurrentBranch = "main"

// Branches returns the demo repository: every status, protected branches,
// a second remote and an unmerged local branch.
func Branches() []Branch {
	return []Branch{
		{Name: "main", Local: true, Tracking: "origin/main", Remotes: []string{"origin"}, Subject: "Merge pull request #142 from feature/search"},
		{Name: "develop", Local: true, Tracking: "origin/develop", Behind: 3, Remotes: []string{"origin"}, Subject: "Bump dependencies"},
		{Name: "feature/auth-base", Local: true, Tracking: "origin/feature/auth-base", Ahead: 2, Remotes: []string{"origin"}, Subject: "Add authentication base module"},
		{Name: "feature/old-login", Local: true, Tracking: "origin/feature/old-login", Gone: true, Subject: "Implement login flow"},
		{Name: "chore/deps-2023", Local: true, Tracking: "origin/chore/deps-2023", Gone: true, Subject: "Update go modules"},
		{Name: "fix/typo", Local: true, Subject: "Fix typo in README"},
		{Name: "spike/unmerged", Local: true, Ahead: 4, Subject: "Try a new cache layout"},
		{Name: "feature/payments", Remotes: []string{"origin"}},
		{Name: "hotfix/cache", Local: true, Tracking: "origin/hotfix/cache", Behind: 1, Remotes: []string{"origin"}, Subject: "Invalidate stale cache entries"},
		{Name: "experiment/graphql", Remotes: []string{"upstream"}},
		{Name: "release/1.4", Remotes: []string{"origin"}},
	}
}
