package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/compozy/flowctl/internal/domain"
)

// DeleteBranch removes a workflow branch locally and, when a counterpart
// exists, on the remote. The base branches are never deletable, whatever
// they are named in the configuration.
func (o *WorkflowOrchestrator) DeleteBranch(ctx context.Context, target string) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultWorkflowTimeout)
	defer cancel()
	record := o.beginRun(ctx, "branch delete")
	err := o.deleteBranch(ctx, record, target)
	o.finishRun(ctx, record, err)
	return err
}

func (o *WorkflowOrchestrator) deleteBranch(
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
		branch, err = o.selectBranch(ctx, "Delete branch", rc.CurrentBranch)
		if err != nil {
			if errors.Is(err, errNoBranches) {
				return domain.NewPreconditionFailed("no workflow branches to delete")
			}
			return err
		}
	}
	record.Branch = branch
	o.saveRun(ctx, record)
	if o.workflows.IsProtected(branch) {
		return domain.NewPreconditionFailed("%s is protected and cannot be deleted", branch)
	}
	if _, ok := o.workflows.Match(branch); !ok {
		return domain.NewPreconditionFailed("%s is not a workflow branch", branch)
	}
	if branch == rc.CurrentBranch {
		return domain.NewPreconditionFailed("cannot delete the branch you are standing on").
			WithRemedy("git checkout %s first", o.workflows.DevelopBranch)
	}
	prompt := fmt.Sprintf("Delete %s locally and on %s?", branch, o.cfg.Remote)
	if err := o.confirmDestructive(prompt); err != nil {
		return err
	}
	if err := o.gitRepo.DeleteBranch(ctx, branch); err != nil {
		return wrapExternal(err, "failed to delete %s", branch)
	}
	record.RecordStep("local branch deleted", branch)
	o.saveRun(ctx, record)
	o.printer.Success("deleted %s", branch)
	o.deleteRemoteCounterpart(ctx, record, branch)
	return nil
}

// deleteRemoteCounterpart removes the branch on the remote, tolerating one
// that was never pushed or is already gone.
func (o *WorkflowOrchestrator) deleteRemoteCounterpart(
	ctx context.Context,
	record *domain.RunRecord,
	branch string,
) {
	_, found, err := o.gitRepo.RemoteTip(ctx, branch)
	if err != nil || !found {
		return
	}
	if err := o.gitRepo.DeleteRemoteBranch(ctx, branch); err != nil {
		o.printer.Warn("could not delete %s on %s: %v", branch, o.cfg.Remote, err)
		return
	}
	record.RecordStep("remote branch deleted", branch)
	o.saveRun(ctx, record)
	o.printer.Success("deleted %s on %s", branch, o.cfg.Remote)
}
