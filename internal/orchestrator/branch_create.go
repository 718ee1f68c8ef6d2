package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/compozy/flowctl/internal/domain"
	"github.com/compozy/flowctl/internal/service"
	"github.com/compozy/flowctl/internal/ui"
	"github.com/compozy/flowctl/internal/usecase"
)

// customVersionOption marks the free-form entry in the version selector.
const customVersionOption = "custom"

// CreateBranchInput carries the optional command-line arguments for branch
// creation. Empty fields are resolved interactively.
type CreateBranchInput struct {
	Kind  string // feature, fix, release or hotfix
	Value string // branch name for feature/fix, version for release/hotfix
}

// CreateBranch starts a new workflow branch from its required base,
// bumping and committing the manifest version for release and hotfix
// branches.
func (o *WorkflowOrchestrator) CreateBranch(ctx context.Context, input CreateBranchInput) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultWorkflowTimeout)
	defer cancel()
	record := o.beginRun(ctx, "branch create")
	err := o.createBranch(ctx, record, input)
	o.finishRun(ctx, record, err)
	return err
}

func (o *WorkflowOrchestrator) createBranch(
	ctx context.Context,
	record *domain.RunRecord,
	input CreateBranchInput,
) error {
	kind, err := o.resolveKind(input.Kind)
	if err != nil {
		return err
	}
	rules := o.workflows.Rules(kind)
	rc, err := o.captureContext(ctx)
	if err != nil {
		return err
	}
	if rc.CurrentBranch != rules.RequiredBase {
		return domain.NewPreconditionFailed("%s branches start from %s, not from %s",
			kind, rules.RequiredBase, rc.CurrentBranch).
			WithRemedy("git checkout %s", rules.RequiredBase)
	}
	branch, version, err := o.resolveNewBranch(ctx, kind, input.Value)
	if err != nil {
		return err
	}
	if err := ValidateBranchName(branch); err != nil {
		return err
	}
	record.Branch = branch
	if version != nil {
		record.Version = version.String()
	}
	o.saveRun(ctx, record)
	if err := o.ensureCleanTree(rc); err != nil {
		return err
	}
	if err := o.fetchRemote(ctx); err != nil {
		return err
	}
	if err := o.ensureSynced(ctx, rules.RequiredBase, false); err != nil {
		return err
	}
	if err := o.gitRepo.CreateBranch(ctx, branch); err != nil {
		return domain.NewConflict("cannot create %s", branch).WithCause(err)
	}
	if err := o.gitRepo.CheckoutBranch(ctx, branch); err != nil {
		return wrapExternal(err, "failed to checkout %s", branch)
	}
	record.RecordStep("branch created", branch)
	o.saveRun(ctx, record)
	if kind.Versioned() && o.cfg.Versioning {
		if err := o.bumpManifestVersion(ctx, version); err != nil {
			o.rollbackCreate(record, branch, rules.RequiredBase, err)
			return err
		}
		record.RecordStep("manifest bumped", version.String())
		o.saveRun(ctx, record)
	}
	if kind.PushOnCreate() {
		if err := o.gitRepo.PushBranch(ctx, branch); err != nil {
			return wrapExternal(err, "failed to push %s", branch)
		}
		record.RecordStep("branch pushed", branch)
		o.saveRun(ctx, record)
		o.printer.Step("pushed %s to %s", branch, o.cfg.Remote)
	}
	o.printer.Success("created %s from %s", branch, rules.RequiredBase)
	return nil
}

// resolveNewBranch turns the kind plus the optional value argument into
// the full branch name, prompting for whatever is missing. For versioned
// kinds the returned version is never nil.
func (o *WorkflowOrchestrator) resolveNewBranch(
	ctx context.Context,
	kind domain.WorkflowKind,
	value string,
) (string, *domain.Version, error) {
	if !kind.Versioned() {
		name, err := o.resolveBranchValue(kind, value)
		if err != nil {
			return "", nil, err
		}
		return o.workflows.BranchName(kind, name), nil, nil
	}
	version, err := o.resolveNewVersion(ctx, kind, value)
	if err != nil {
		return "", nil, err
	}
	return o.workflows.BranchName(kind, version.String()), version, nil
}

// resolveBranchValue resolves the free-text part of a feature or fix
// branch name.
func (o *WorkflowOrchestrator) resolveBranchValue(kind domain.WorkflowKind, arg string) (string, error) {
	value := strings.TrimSpace(arg)
	if value == "" {
		input, err := o.prompter.Input(
			fmt.Sprintf("Name for the %s branch", kind), "short-description", nil)
		if err != nil {
			return "", err
		}
		value = strings.TrimSpace(input)
	}
	if value == "" {
		return "", domain.NewInvalidInput("branch name cannot be empty")
	}
	return value, nil
}

// resolveNewVersion suggests a patch, minor and major bump of the current
// project version and lets the user pick one or type another.
func (o *WorkflowOrchestrator) resolveNewVersion(
	ctx context.Context,
	kind domain.WorkflowKind,
	arg string,
) (*domain.Version, error) {
	if strings.TrimSpace(arg) != "" {
		return NormalizeVersion(arg)
	}
	uc := &usecase.ResolveVersionUseCase{GitRepo: o.gitRepo, PkgSvc: o.pkgSvc}
	current, err := uc.Execute(ctx)
	if err != nil {
		return nil, err
	}
	options := []ui.Option{
		{Label: fmt.Sprintf("patch (%s)", current.BumpPatch()), Value: current.BumpPatch().String()},
		{Label: fmt.Sprintf("minor (%s)", current.BumpMinor()), Value: current.BumpMinor().String()},
		{Label: fmt.Sprintf("major (%s)", current.BumpMajor()), Value: current.BumpMajor().String()},
		{Label: "custom version", Value: customVersionOption},
	}
	title := fmt.Sprintf("New %s version (current %s)", kind, current)
	choice, err := o.prompter.Select(title, options)
	if err != nil {
		return nil, err
	}
	if choice != customVersionOption {
		return domain.NewVersion(choice)
	}
	raw, err := o.prompter.Input("Version", "1.2.3", validateVersionInput)
	if err != nil {
		return nil, err
	}
	return NormalizeVersion(raw)
}

func validateVersionInput(raw string) error {
	if !domain.ValidateVersion(strings.TrimPrefix(strings.TrimSpace(raw), "v")) {
		return fmt.Errorf("expected MAJOR.MINOR.PATCH")
	}
	return nil
}

// bumpManifestVersion delegates the version write to the package tool and
// commits exactly the files it touches.
func (o *WorkflowOrchestrator) bumpManifestVersion(ctx context.Context, version *domain.Version) error {
	manager, err := o.pkgSvc.Detect(ctx)
	if err != nil {
		return wrapExternal(err, "failed to detect the package manager")
	}
	if manager == service.ManagerNone {
		o.printer.Warn("no package manifest found; skipping the version bump")
		return nil
	}
	if err := o.pkgSvc.WriteVersion(ctx, version.String()); err != nil {
		return wrapExternal(err, "failed to bump the manifest to %s", version)
	}
	files, err := o.pkgSvc.VersionFiles(ctx)
	if err != nil {
		return wrapExternal(err, "failed to resolve the manifest files")
	}
	message := fmt.Sprintf("chore: bump version to %s", version)
	if err := o.gitRepo.CommitPaths(ctx, files, message); err != nil {
		return wrapExternal(err, "failed to commit the version bump")
	}
	return nil
}

// rollbackCreate undoes a half-created branch: back to the base, drop the
// branch. Best effort on a fresh context; every failure names the manual
// command instead of blocking.
func (o *WorkflowOrchestrator) rollbackCreate(record *domain.RunRecord, branch, base string, cause error) {
	ctx, cancel := context.WithTimeout(context.Background(), RollbackTimeout)
	defer cancel()
	if err := o.gitRepo.CheckoutBranch(ctx, base); err != nil {
		o.printer.Warn("rollback could not return to %s: %v", base, err)
		o.printer.Warn("clean up manually: git checkout -f %s && git branch -D %s", base, branch)
		return
	}
	if err := o.gitRepo.DeleteBranch(ctx, branch); err != nil {
		o.printer.Warn("rollback could not delete %s: %v", branch, err)
		o.printer.Warn("clean up manually: git branch -D %s", branch)
		return
	}
	record.MarkRolledBack(cause)
	o.saveRun(ctx, record)
	o.printer.Warn("version bump failed; removed %s and returned to %s", branch, base)
}
