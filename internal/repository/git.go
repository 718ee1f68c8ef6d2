package repository

import "context"

// GitRepository defines the core version-control operations.

type GitRepository interface {
	CurrentBranch(ctx context.Context) (string, error)
	HeadCommit(ctx context.Context) (string, error)
	IsClean(ctx context.Context) (bool, error)
	CreateBranch(ctx context.Context, name string) error
	CheckoutBranch(ctx context.Context, name string) error
	PushBranch(ctx context.Context, name string) error
	ListTags(ctx context.Context) ([]string, error)
	LatestTag(ctx context.Context) (string, error)
	TagExists(ctx context.Context, tag string) (bool, error)
	CreateTag(ctx context.Context, tag, commit, msg string) error
	DeleteTag(ctx context.Context, tag string) error
	PushTag(ctx context.Context, tag string) error
}
