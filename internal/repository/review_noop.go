package repository

import (
	"context"
	"errors"

	"github.com/compozy/flowctl/internal/domain"
)

// ErrReviewTokenRequired is returned when a pull request operation is
// attempted without a configured GitHub token.
var ErrReviewTokenRequired = errors.New("GitHub token required")

// noopReviewRepository is used when no GitHub token is configured. Read
// operations report nothing and write operations fail with a remedy.
type noopReviewRepository struct{}

// NewNoopReviewRepository creates a ReviewRepository that rejects every
// pull request operation with ErrReviewTokenRequired.
func NewNoopReviewRepository() ReviewRepository {
	return &noopReviewRepository{}
}

func (r *noopReviewRepository) operationError(operation string) error {
	return domain.NewPreconditionFailed("cannot %s without a GitHub token", operation).
		WithCause(ErrReviewTokenRequired).
		WithRemedy("set GITHUB_TOKEN or github.token in .flowctl.yaml")
}

func (r *noopReviewRepository) FindOpenPR(_ context.Context, _ string) (*domain.PullRequest, error) {
	return nil, nil
}

func (r *noopReviewRepository) CreatePullRequest(
	_ context.Context,
	_, _, _, _ string,
) (*domain.PullRequest, error) {
	return nil, r.operationError("create a pull request")
}

func (r *noopReviewRepository) MergePullRequest(_ context.Context, _ int, _ string) error {
	return r.operationError("merge a pull request")
}

func (r *noopReviewRepository) ListOpenPRs(_ context.Context) ([]domain.PullRequest, error) {
	return []domain.PullRequest{}, nil
}
