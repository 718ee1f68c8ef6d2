package repository

import (
	"context"

	"github.com/compozy/flowctl/internal/domain"
)

// GitExtendedRepository extends GitRepository with the query and mutation
// operations the workflow orchestrators need.
type GitExtendedRepository interface {
	GitRepository
	// Repository layout
	Root() string
	// Branch operations
	DeleteBranch(ctx context.Context, name string) error
	DeleteRemoteBranch(ctx context.Context, name string) error
	ListBranches(ctx context.Context) ([]domain.BranchInfo, error)
	// Remote state
	Fetch(ctx context.Context) error
	RemoteTip(ctx context.Context, branch string) (string, bool, error)
	FastForwardPull(ctx context.Context, branch string) error
	// History queries
	ResolveRef(ctx context.Context, ref string) (string, error)
	IsAncestor(ctx context.Context, ancestor, descendant string) (bool, error)
	MergeBase(ctx context.Context, a, b string) (string, error)
	CountCommitsBetween(ctx context.Context, ancestor, tip string) (int, error)
	// Commit operations
	CommitPaths(ctx context.Context, paths []string, message string) error
	// Merge operations
	MergeNoFF(ctx context.Context, source, message string) error
}
