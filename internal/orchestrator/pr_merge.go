package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/compozy/flowctl/internal/domain"
)

// MergePR merges the open pull request of a feature or fix branch, brings
// develop up to date, and puts the user back where they started unless
// they started on the merged branch or on develop.
func (o *WorkflowOrchestrator) MergePR(ctx context.Context, target string) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultWorkflowTimeout)
	defer cancel()
	record := o.beginRun(ctx, "pr merge")
	err := o.mergePR(ctx, record, target)
	o.finishRun(ctx, record, err)
	return err
}

func (o *WorkflowOrchestrator) mergePR(
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
	develop := o.workflows.DevelopBranch
	record.Branch = branch
	record.OriginBranch = rc.CurrentBranch
	o.saveRun(ctx, record)
	defer o.returnToOrigin(rc.CurrentBranch, branch, develop)
	pr, err := o.reviewRepo.FindOpenPR(ctx, branch)
	if err != nil {
		return wrapExternal(err, "failed to look up open pull requests")
	}
	if pr == nil {
		return domain.NewPreconditionFailed("no open pull request found for %s", branch).
			WithRemedy("flowctl pr create %s", branch)
	}
	if err := o.reviewRepo.MergePullRequest(ctx, pr.Number, ""); err != nil {
		return wrapExternal(err, "failed to merge pull request #%d", pr.Number)
	}
	record.RecordStep("pull request merged", fmt.Sprintf("#%d", pr.Number))
	o.saveRun(ctx, record)
	o.printer.Success("merged pull request #%d (%s)", pr.Number, branch)
	if err := o.gitRepo.DeleteRemoteBranch(ctx, branch); err != nil {
		o.printer.Warn("could not delete %s on %s: %v", branch, o.cfg.Remote, err)
	} else {
		o.printer.Step("deleted %s on %s", branch, o.cfg.Remote)
	}
	if err := o.gitRepo.CheckoutBranch(ctx, develop); err != nil {
		return wrapExternal(err, "failed to checkout %s", develop)
	}
	if err := o.gitRepo.FastForwardPull(ctx, develop); err != nil {
		return wrapExternal(err, "failed to update %s", develop)
	}
	record.RecordStep("develop updated", develop)
	o.saveRun(ctx, record)
	o.printer.Step("%s is up to date", develop)
	o.offerLocalBranchDelete(ctx, record, branch)
	return nil
}

// offerLocalBranchDelete removes the merged branch locally when the user
// agrees. The merge is already done, so nothing here can fail the command.
func (o *WorkflowOrchestrator) offerLocalBranchDelete(
	ctx context.Context,
	record *domain.RunRecord,
	branch string,
) {
	exists, err := o.localBranchExists(ctx, branch)
	if err != nil || !exists {
		return
	}
	ok, err := o.prompter.Confirm(fmt.Sprintf("Delete the local branch %s?", branch), true)
	if err != nil || !ok {
		return
	}
	if err := o.gitRepo.DeleteBranch(ctx, branch); err != nil {
		o.printer.Warn("could not delete %s: %v", branch, err)
		return
	}
	record.RecordStep("local branch deleted", branch)
	o.saveRun(ctx, record)
	o.printer.Step("deleted local branch %s", branch)
}

func (o *WorkflowOrchestrator) localBranchExists(ctx context.Context, name string) (bool, error) {
	branches, err := o.gitRepo.ListBranches(ctx)
	if err != nil {
		return false, err
	}
	for _, branch := range branches {
		if branch.Name == name {
			return true, nil
		}
	}
	return false, nil
}
