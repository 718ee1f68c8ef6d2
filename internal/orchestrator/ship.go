package orchestrator

import (
	"context"
	"fmt"

	"github.com/compozy/flowctl/internal/domain"
)

// ShipInput names the workflow being shipped and the optional version.
type ShipInput struct {
	Kind    domain.WorkflowKind // release or hotfix
	Version string
}

// Ship merges a release or hotfix branch into main and develop with merge
// commits, then tags the pre-merge tip as the production version. The tag
// points at the exact commit that was tested on the branch, never at a
// merge commit.
func (o *WorkflowOrchestrator) Ship(ctx context.Context, input ShipInput) error {
	ctx, cancel := context.WithTimeout(ctx, ShipWorkflowTimeout)
	defer cancel()
	record := o.beginRun(ctx, fmt.Sprintf("%s ship", input.Kind))
	err := o.ship(ctx, record, input)
	o.finishRun(ctx, record, err)
	return err
}

func (o *WorkflowOrchestrator) ship(ctx context.Context, record *domain.RunRecord, input ShipInput) error {
	if input.Kind != domain.WorkflowRelease && input.Kind != domain.WorkflowHotfix {
		return domain.NewInvalidInput("only release and hotfix branches ship, not %s", input.Kind)
	}
	rc, err := o.captureContext(ctx)
	if err != nil {
		return err
	}
	if err := o.ensureCleanTree(rc); err != nil {
		return err
	}
	origin := rc.CurrentBranch
	record.OriginBranch = origin
	defer o.returnToOrigin(origin, o.workflows.MainBranch)
	if err := o.ensureWorkflowBranch(ctx, &rc, input.Kind); err != nil {
		return err
	}
	branch := rc.CurrentBranch
	version, err := o.resolveBranchVersion(branch, input.Version)
	if err != nil {
		return err
	}
	record.Branch = branch
	record.Version = version.String()
	o.saveRun(ctx, record)
	main := o.workflows.MainBranch
	develop := o.workflows.DevelopBranch
	if err := o.fetchRemote(ctx); err != nil {
		return err
	}
	// One branch out of sync aborts the whole ship before anything merges.
	for _, name := range []string{branch, main, develop} {
		if err := o.ensureSynced(ctx, name, true); err != nil {
			return err
		}
	}
	tag := version.TagName()
	exists, err := o.gitRepo.TagExists(ctx, tag)
	if err != nil {
		return wrapExternal(err, "failed to check for tag %s", tag)
	}
	if exists {
		return domain.NewConflict("tag %s already exists: %s has already been shipped", tag, version).
			WithRemedy("bump to a new version before shipping")
	}
	tip, err := o.gitRepo.ResolveRef(ctx, branch)
	if err != nil {
		return wrapExternal(err, "failed to resolve the tip of %s", branch)
	}
	record.RecordStep("tip captured", shortSHA(tip))
	o.saveRun(ctx, record)
	if err := o.mergeInto(ctx, record, main, branch); err != nil {
		return err
	}
	if err := o.mergeInto(ctx, record, develop, branch); err != nil {
		return err
	}
	if err := o.gitRepo.CreateTag(ctx, tag, tip, fmt.Sprintf("Release %s", tag)); err != nil {
		return wrapExternal(err, "failed to create tag %s", tag)
	}
	record.RecordStep("tag created", tag)
	o.saveRun(ctx, record)
	if err := o.gitRepo.PushTag(ctx, tag); err != nil {
		return wrapExternal(err, "failed to push tag %s", tag)
	}
	record.RecordStep("tag pushed", tag)
	o.saveRun(ctx, record)
	o.printer.Success("shipped %s: %s merged into %s and %s, tagged %s at %s",
		version, branch, main, develop, tag, shortSHA(tip))
	o.printer.Warn("%s is kept; remove it with: flowctl branch delete %s", branch, branch)
	return nil
}

// mergeInto merges source into target with a merge commit and pushes the
// result. A failure leaves the repository exactly as git left it; the
// remedy names how to resume by hand.
func (o *WorkflowOrchestrator) mergeInto(
	ctx context.Context,
	record *domain.RunRecord,
	target, source string,
) error {
	if err := o.gitRepo.CheckoutBranch(ctx, target); err != nil {
		return wrapExternal(err, "failed to checkout %s", target)
	}
	message := fmt.Sprintf("Merge branch '%s' into %s", source, target)
	if err := o.gitRepo.MergeNoFF(ctx, source, message); err != nil {
		return domain.NewConflict("merge of %s into %s failed", source, target).
			WithCause(err).
			WithRemedy("resolve the merge in the worktree, push %s, then finish the remaining steps by hand", target)
	}
	if err := o.gitRepo.PushBranch(ctx, target); err != nil {
		return wrapExternal(err, "failed to push %s", target)
	}
	record.RecordStep("merged", fmt.Sprintf("%s into %s", source, target))
	o.saveRun(ctx, record)
	o.printer.Step("merged %s into %s", source, target)
	return nil
}
