package domain

// RepoContext captures the repository state a command starts from. It is
// recorded once at command entry and threaded through the workflow instead
// of re-reading ambient state mid-procedure.
type RepoContext struct {
	Root          string
	CurrentBranch string
	Clean         bool
}

// BranchInfo describes one local branch for listing and selection.
type BranchInfo struct {
	Name       string
	Hash       string
	CommitTime int64 // unix seconds of the tip commit, for recency ordering
}
