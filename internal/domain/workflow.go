package domain

import "strings"

// WorkflowKind identifies the branching workflow a branch belongs to.
type WorkflowKind string

const (
	WorkflowFeature WorkflowKind = "feature"
	WorkflowFix     WorkflowKind = "fix"
	WorkflowRelease WorkflowKind = "release"
	WorkflowHotfix  WorkflowKind = "hotfix"
)

// AllWorkflowKinds lists the kinds in prompt order.
func AllWorkflowKinds() []WorkflowKind {
	return []WorkflowKind{WorkflowFeature, WorkflowFix, WorkflowRelease, WorkflowHotfix}
}

// Versioned reports whether branches of this kind carry a version and bump
// the project manifest. Only release and hotfix branches do.
func (k WorkflowKind) Versioned() bool {
	return k == WorkflowRelease || k == WorkflowHotfix
}

// Reviewable reports whether branches of this kind go through a pull
// request. Release and hotfix branches merge by shipping, not by PR.
func (k WorkflowKind) Reviewable() bool {
	return k == WorkflowFeature || k == WorkflowFix
}

// PushOnCreate reports whether a freshly created branch of this kind is
// pushed upstream immediately. Release and hotfix pushes trigger the
// external staging deployment; feature and fix branches stay local.
func (k WorkflowKind) PushOnCreate() bool {
	return k == WorkflowRelease || k == WorkflowHotfix
}

// BranchRules is the resolved naming and base-branch policy for one kind.
type BranchRules struct {
	Kind         WorkflowKind
	Prefix       string
	RequiredBase string
}

// Workflows resolves per-kind branch rules from the configured prefixes and
// base branch names.
type Workflows struct {
	DevelopBranch string
	MainBranch    string
	prefixes      map[WorkflowKind]string
}

// DefaultPrefixes returns the conventional branch prefixes.
func DefaultPrefixes() map[WorkflowKind]string {
	return map[WorkflowKind]string{
		WorkflowFeature: "feature/",
		WorkflowFix:     "fix/",
		WorkflowRelease: "release/",
		WorkflowHotfix:  "hotfix/",
	}
}

// NewWorkflows creates the rule set. Empty prefix entries fall back to the
// conventional defaults.
func NewWorkflows(develop, main string, prefixes map[WorkflowKind]string) *Workflows {
	resolved := DefaultPrefixes()
	for kind, prefix := range prefixes {
		if prefix != "" {
			resolved[kind] = prefix
		}
	}
	return &Workflows{DevelopBranch: develop, MainBranch: main, prefixes: resolved}
}

// Rules returns the policy for kind. Feature, fix, and release branches
// start from develop; hotfix branches start from main.
func (w *Workflows) Rules(kind WorkflowKind) BranchRules {
	base := w.DevelopBranch
	if kind == WorkflowHotfix {
		base = w.MainBranch
	}
	return BranchRules{Kind: kind, Prefix: w.prefixes[kind], RequiredBase: base}
}

// Prefix returns the configured branch prefix for kind.
func (w *Workflows) Prefix(kind WorkflowKind) string {
	return w.prefixes[kind]
}

// Match returns the kind whose prefix starts branch, or false for
// non-workflow branches such as develop and main.
func (w *Workflows) Match(branch string) (WorkflowKind, bool) {
	for _, kind := range AllWorkflowKinds() {
		if strings.HasPrefix(branch, w.prefixes[kind]) {
			return kind, true
		}
	}
	return "", false
}

// Extract returns the kind and the embedded name or version of branch. For
// versioned kinds the leading "v" is stripped, so "release/v1.2.0" yields
// ("release", "1.2.0"). Returns false for non-workflow branches.
func (w *Workflows) Extract(branch string) (WorkflowKind, string, bool) {
	kind, ok := w.Match(branch)
	if !ok {
		return "", "", false
	}
	value := strings.TrimPrefix(branch, w.prefixes[kind])
	if kind.Versioned() {
		value = strings.TrimPrefix(value, "v")
	}
	return kind, value, true
}

// BranchName composes the branch name for kind and value, adding the "v"
// version marker for versioned kinds.
func (w *Workflows) BranchName(kind WorkflowKind, value string) string {
	if kind.Versioned() {
		return w.prefixes[kind] + "v" + value
	}
	return w.prefixes[kind] + value
}

// IsProtected reports whether branch must never be deleted. The configured
// base branches are protected, and the conventional develop/main names stay
// protected even when the bases are configured to something else.
func (w *Workflows) IsProtected(branch string) bool {
	switch branch {
	case w.DevelopBranch, w.MainBranch, "develop", "main":
		return true
	}
	return false
}
