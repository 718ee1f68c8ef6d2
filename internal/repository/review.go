package repository

import (
	"context"

	"github.com/compozy/flowctl/internal/domain"
)

// ReviewRepository defines the review-platform operations the PR workflows
// delegate to.

type ReviewRepository interface {
	// FindOpenPR returns the open pull request whose head is branch, or nil
	// when none exists.
	FindOpenPR(ctx context.Context, branch string) (*domain.PullRequest, error)
	CreatePullRequest(ctx context.Context, title, body, head, base string) (*domain.PullRequest, error)
	MergePullRequest(ctx context.Context, number int, message string) error
	ListOpenPRs(ctx context.Context) ([]domain.PullRequest, error)
}
