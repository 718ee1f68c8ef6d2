package orchestrator

import (
	"context"
	"strings"

	"github.com/compozy/flowctl/internal/domain"
	"github.com/compozy/flowctl/internal/usecase"
)

// CreatePR pushes a feature or fix branch and opens a pull request against
// develop. An already-open pull request is reported, not an error.
func (o *WorkflowOrchestrator) CreatePR(ctx context.Context, target string) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultWorkflowTimeout)
	defer cancel()
	record := o.beginRun(ctx, "pr create")
	err := o.createPR(ctx, record, target)
	o.finishRun(ctx, record, err)
	return err
}

func (o *WorkflowOrchestrator) createPR(
	ctx context.Context,
	record *domain.RunRecord,
	target string,
) error {
	rc, err := o.captureContext(ctx)
	if err != nil {
		return err
	}
	branch := strings.TrimSpace(target)
	if branch == "" {
		branch = rc.CurrentBranch
	}
	record.Branch = branch
	o.saveRun(ctx, record)
	kind, ok := o.workflows.Match(branch)
	if !ok || !kind.Reviewable() {
		return domain.NewPreconditionFailed(
			"%s is not reviewable: pull requests cover feature and fix branches", branch).
			WithRemedy("release and hotfix branches ship with flowctl release ship")
	}
	existing, err := o.reviewRepo.FindOpenPR(ctx, branch)
	if err != nil {
		return wrapExternal(err, "failed to look up open pull requests")
	}
	if existing != nil {
		o.printer.Info("pull request #%d is already open for %s: %s",
			existing.Number, branch, existing.URL)
		return nil
	}
	develop := o.workflows.DevelopBranch
	if err := o.fetchRemote(ctx); err != nil {
		return err
	}
	count, err := o.gitRepo.CountCommitsBetween(ctx, develop, branch)
	if err != nil {
		return wrapExternal(err, "failed to count commits on %s", branch)
	}
	if count == 0 {
		return domain.NewPreconditionFailed("%s has no commits beyond %s", branch, develop).
			WithRemedy("commit your work before opening a pull request")
	}
	if err := o.gitRepo.PushBranch(ctx, branch); err != nil {
		return wrapExternal(err, "failed to push %s", branch)
	}
	record.RecordStep("branch pushed", branch)
	o.saveRun(ctx, record)
	composer := &usecase.ComposePRUseCase{}
	title, body, err := composer.Execute(ctx, usecase.ComposePRInput{
		Branch:      branch,
		Kind:        kind,
		Base:        develop,
		CommitCount: count,
	})
	if err != nil {
		return wrapExternal(err, "failed to compose the pull request")
	}
	pr, err := o.reviewRepo.CreatePullRequest(ctx, title, body, branch, develop)
	if err != nil {
		return wrapExternal(err, "failed to create the pull request")
	}
	record.RecordStep("pull request opened", pr.URL)
	o.saveRun(ctx, record)
	o.printer.Success("opened pull request #%d: %s", pr.Number, pr.URL)
	return nil
}
