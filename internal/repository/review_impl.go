package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v74/github"
	"golang.org/x/oauth2"

	"github.com/compozy/flowctl/internal/config"
	"github.com/compozy/flowctl/internal/domain"
	"github.com/compozy/flowctl/pkg/version"
)

// githubReviewRepository is the implementation of the ReviewRepository
// interface backed by the GitHub API.
type githubReviewRepository struct {
	client *github.Client
	owner  string
	repo   string
}

// NewGithubReviewRepository creates a ReviewRepository with validation.
func NewGithubReviewRepository(token, owner, repo string) (ReviewRepository, error) {
	if err := config.ValidateGitHubToken(token); err != nil {
		return nil, fmt.Errorf("invalid GitHub token: %w", err)
	}
	if err := config.ValidateGitHubOwnerRepo(owner, repo); err != nil {
		return nil, fmt.Errorf("invalid repository configuration: %w", err)
	}
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: strings.TrimSpace(token)},
	)
	tc := oauth2.NewClient(context.Background(), ts)
	client := github.NewClient(tc)
	client.UserAgent = version.UserAgent()
	return &githubReviewRepository{
		client: client,
		owner:  owner,
		repo:   repo,
	}, nil
}

// FindOpenPR returns the open pull request for branch, or nil when none
// exists.
func (r *githubReviewRepository) FindOpenPR(ctx context.Context, branch string) (*domain.PullRequest, error) {
	prs, _, err := r.client.PullRequests.List(ctx, r.owner, r.repo, &github.PullRequestListOptions{
		Head:  fmt.Sprintf("%s:%s", r.owner, branch),
		State: "open",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pull requests for %s: %w", branch, err)
	}
	if len(prs) == 0 {
		return nil, nil
	}
	return toDomainPR(prs[0]), nil
}

// CreatePullRequest creates a new pull request.
func (r *githubReviewRepository) CreatePullRequest(
	ctx context.Context,
	title, body, head, base string,
) (*domain.PullRequest, error) {
	pr, _, err := r.client.PullRequests.Create(ctx, r.owner, r.repo, &github.NewPullRequest{
		Title: &title,
		Body:  &body,
		Head:  &head,
		Base:  &base,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pull request: %w", err)
	}
	return toDomainPR(pr), nil
}

// MergePullRequest merges an open pull request with a merge commit.
func (r *githubReviewRepository) MergePullRequest(ctx context.Context, number int, message string) error {
	result, _, err := r.client.PullRequests.Merge(ctx, r.owner, r.repo, number, message,
		&github.PullRequestOptions{MergeMethod: "merge"})
	if err != nil {
		return fmt.Errorf("failed to merge PR #%d: %w", number, err)
	}
	if !result.GetMerged() {
		return fmt.Errorf("PR #%d was not merged: %s", number, result.GetMessage())
	}
	return nil
}

// ListOpenPRs returns every open pull request of the repository.
func (r *githubReviewRepository) ListOpenPRs(ctx context.Context) ([]domain.PullRequest, error) {
	prs, _, err := r.client.PullRequests.List(ctx, r.owner, r.repo, &github.PullRequestListOptions{
		State: "open",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list open pull requests: %w", err)
	}
	out := make([]domain.PullRequest, 0, len(prs))
	for _, pr := range prs {
		out = append(out, *toDomainPR(pr))
	}
	return out, nil
}

func toDomainPR(pr *github.PullRequest) *domain.PullRequest {
	return &domain.PullRequest{
		Number: pr.GetNumber(),
		Title:  pr.GetTitle(),
		Head:   pr.GetHead().GetRef(),
		Base:   pr.GetBase().GetRef(),
		URL:    pr.GetHTMLURL(),
		Merged: pr.GetMerged(),
	}
}
