package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/compozy/flowctl/internal/domain"
)

// TagProduction creates and pushes a production tag at the tip of main.
// This is the manual escape hatch for versions that reached main outside a
// ship, so the gate is strict: main only, and fully in sync.
func (o *WorkflowOrchestrator) TagProduction(ctx context.Context, rawVersion string) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultWorkflowTimeout)
	defer cancel()
	record := o.beginRun(ctx, "tag")
	err := o.tagProduction(ctx, record, rawVersion)
	o.finishRun(ctx, record, err)
	return err
}

func (o *WorkflowOrchestrator) tagProduction(
	ctx context.Context,
	record *domain.RunRecord,
	rawVersion string,
) error {
	rc, err := o.captureContext(ctx)
	if err != nil {
		return err
	}
	main := o.workflows.MainBranch
	if rc.CurrentBranch != main {
		return domain.NewPreconditionFailed("production tags are created from %s, not from %s",
			main, rc.CurrentBranch).
			WithRemedy("git checkout %s", main)
	}
	version, err := o.resolveTagVersion(ctx, rawVersion)
	if err != nil {
		return err
	}
	record.Branch = main
	record.Version = version.String()
	o.saveRun(ctx, record)
	if err := o.fetchRemote(ctx); err != nil {
		return err
	}
	report, err := o.checkSync(ctx, main)
	if err != nil {
		return err
	}
	// No pull offer here: the operator reconciles main before tagging it.
	if report.Status != domain.SyncUpToDate {
		return domain.NewPreconditionFailed("%s is not up to date with %s (%s)",
			main, o.cfg.Remote, report.Status).
			WithRemedy("reconcile %s before tagging", main)
	}
	tag := version.TagName()
	exists, err := o.gitRepo.TagExists(ctx, tag)
	if err != nil {
		return wrapExternal(err, "failed to check for tag %s", tag)
	}
	if exists {
		return domain.NewConflict("tag %s already exists", tag)
	}
	if err := o.confirmDestructive(fmt.Sprintf("Tag %s at %s and push it?", tag, main)); err != nil {
		return err
	}
	tip, err := o.gitRepo.HeadCommit(ctx)
	if err != nil {
		return wrapExternal(err, "failed to resolve the tip of %s", main)
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
	o.printer.Success("tagged %s at %s", tag, shortSHA(tip))
	return nil
}

// resolveTagVersion takes the explicit argument or falls back to the
// manifest version. A repository without a versioned manifest needs the
// argument.
func (o *WorkflowOrchestrator) resolveTagVersion(ctx context.Context, raw string) (*domain.Version, error) {
	if strings.TrimSpace(raw) != "" {
		return NormalizeVersion(raw)
	}
	manifest, err := o.pkgSvc.ReadVersion(ctx)
	if err != nil {
		return nil, wrapExternal(err, "failed to read the manifest version")
	}
	if manifest == "0.0.0" {
		return nil, domain.NewInvalidInput("no version found in the project manifest").
			WithRemedy("pass the version explicitly: flowctl tag 1.2.3")
	}
	return domain.NewVersion(manifest)
}
