package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/compozy/flowctl/internal/config"
	"github.com/compozy/flowctl/internal/domain"
	"github.com/compozy/flowctl/internal/repository"
	"github.com/compozy/flowctl/internal/service"
	"github.com/compozy/flowctl/internal/ui"
	"github.com/compozy/flowctl/internal/usecase"
)

var errNoBranches = errors.New("no candidate branches")

// WorkflowOrchestrator drives the branching workflows end to end. Each
// command entry point lives in its own file; the shared precondition,
// synchronization and bookkeeping helpers live here.
type WorkflowOrchestrator struct {
	gitRepo    repository.GitExtendedRepository
	reviewRepo repository.ReviewRepository
	pkgSvc     service.PackageManagerService
	journal    repository.RunJournal
	workflows  *domain.Workflows
	cfg        *config.Config
	prompter   ui.Prompter
	printer    *ui.Printer
	log        *zap.Logger
}

// Deps carries the collaborators a WorkflowOrchestrator needs.
type Deps struct {
	GitRepo    repository.GitExtendedRepository
	ReviewRepo repository.ReviewRepository
	PkgSvc     service.PackageManagerService
	Journal    repository.RunJournal
	Workflows  *domain.Workflows
	Config     *config.Config
	Prompter   ui.Prompter
	Printer    *ui.Printer
	Log        *zap.Logger
}

// New creates a workflow orchestrator.
func New(deps Deps) *WorkflowOrchestrator {
	if deps.Printer == nil {
		deps.Printer = ui.NewPrinter()
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	return &WorkflowOrchestrator{
		gitRepo:    deps.GitRepo,
		reviewRepo: deps.ReviewRepo,
		pkgSvc:     deps.PkgSvc,
		journal:    deps.Journal,
		workflows:  deps.Workflows,
		cfg:        deps.Config,
		prompter:   deps.Prompter,
		printer:    deps.Printer,
		log:        deps.Log,
	}
}

// wrapExternal wraps a failed delegated operation, passing errors the lower
// layers already classified through untouched so their remedies survive.
func wrapExternal(err error, format string, args ...any) error {
	var derr *domain.Error
	if errors.As(err, &derr) {
		return err
	}
	return domain.NewExternalTool(fmt.Sprintf(format, args...), err)
}

// captureContext records the repository state the command starts from. The
// workflow threads this value instead of re-reading ambient state between
// steps.
func (o *WorkflowOrchestrator) captureContext(ctx context.Context) (domain.RepoContext, error) {
	branch, err := o.gitRepo.CurrentBranch(ctx)
	if err != nil {
		return domain.RepoContext{}, wrapExternal(err, "failed to resolve the current branch")
	}
	clean, err := o.gitRepo.IsClean(ctx)
	if err != nil {
		return domain.RepoContext{}, wrapExternal(err, "failed to inspect the working tree")
	}
	return domain.RepoContext{Root: o.gitRepo.Root(), CurrentBranch: branch, Clean: clean}, nil
}

// beginRun opens a journal record for operation. Journal failures never
// block a workflow; they degrade to a logged warning.
func (o *WorkflowOrchestrator) beginRun(ctx context.Context, operation string) *domain.RunRecord {
	record := domain.NewRunRecord(uuid.New().String(), operation)
	o.saveRun(ctx, record)
	return record
}

func (o *WorkflowOrchestrator) saveRun(ctx context.Context, record *domain.RunRecord) {
	if o.journal == nil {
		return
	}
	if err := o.journal.Save(ctx, record); err != nil {
		o.log.Warn("failed to save run record",
			zap.String("run_id", record.RunID),
			zap.String("operation", record.Operation),
			zap.Error(err))
	}
}

// finishRun closes the record with the workflow outcome. A record a
// rollback already finalized keeps its status.
func (o *WorkflowOrchestrator) finishRun(ctx context.Context, record *domain.RunRecord, err error) {
	switch {
	case record.Status == domain.RunStatusRolledBack:
	case err == nil:
		record.Complete()
	case domain.IsCancelled(err):
		record.Cancel()
	default:
		record.Fail(err)
	}
	o.saveRun(ctx, record)
}

// ensureCleanTree fails when the working tree carries uncommitted changes.
func (o *WorkflowOrchestrator) ensureCleanTree(rc domain.RepoContext) error {
	if rc.Clean {
		return nil
	}
	return domain.NewPreconditionFailed("working tree has uncommitted changes").
		WithRemedy("commit or stash your changes, then rerun")
}

// fetchRemote refreshes the remote-tracking refs once per command so every
// following sync classification compares against current remote state.
func (o *WorkflowOrchestrator) fetchRemote(ctx context.Context) error {
	err := o.gitRepo.Fetch(ctx)
	if err == nil {
		return nil
	}
	var derr *domain.Error
	if errors.As(err, &derr) {
		return err
	}
	return domain.NewExternalTool(fmt.Sprintf("failed to fetch from %s", o.cfg.Remote), err).
		WithRemedy("check network access and the %s remote configuration", o.cfg.Remote)
}

func (o *WorkflowOrchestrator) checkSync(ctx context.Context, branch string) (*domain.SyncReport, error) {
	uc := &usecase.CheckSyncUseCase{GitRepo: o.gitRepo}
	report, err := uc.Execute(ctx, branch)
	if err != nil {
		return nil, wrapExternal(err, "failed to compare %s with its remote", branch)
	}
	return report, nil
}

// ensureSynced classifies branch against its remote and applies the shared
// policy: up to date passes, behind offers a fast-forward pull, ahead and
// diverged abort. A missing remote counterpart is a warning when
// requireRemote is false and an abort when true.
func (o *WorkflowOrchestrator) ensureSynced(ctx context.Context, branch string, requireRemote bool) error {
	report, err := o.checkSync(ctx, branch)
	if err != nil {
		return err
	}
	switch report.Status {
	case domain.SyncUpToDate:
		return nil
	case domain.SyncNoRemote:
		if !requireRemote {
			o.printer.Warn("%s has no counterpart on %s yet", branch, o.cfg.Remote)
			return nil
		}
		return domain.NewPreconditionFailed("%s has no counterpart on %s", branch, o.cfg.Remote).
			WithRemedy("git push -u %s %s", o.cfg.Remote, branch)
	case domain.SyncBehind:
		return o.offerFastForward(ctx, report)
	case domain.SyncAhead:
		return domain.NewPreconditionFailed("%s has %d unpushed %s",
			branch, report.Ahead, plural("commit", report.Ahead)).
			WithRemedy("git push %s %s", o.cfg.Remote, branch)
	default:
		return domain.NewConflict("%s has diverged from %s (%d local, %d remote %s)",
			branch, o.cfg.Remote, report.Ahead, report.Behind, plural("commit", report.Behind)).
			WithRemedy("reconcile manually, e.g. git pull --rebase %s %s", o.cfg.Remote, branch)
	}
}

// offerFastForward handles a branch that is strictly behind its remote: the
// user may pull, and declining aborts the workflow. The pull is never
// forced on anyone.
func (o *WorkflowOrchestrator) offerFastForward(ctx context.Context, report *domain.SyncReport) error {
	branch := report.Branch
	o.printer.Warn("%s is %d %s behind %s", branch, report.Behind, plural("commit", report.Behind), o.cfg.Remote)
	pull, err := o.prompter.Confirm(fmt.Sprintf("Fast-forward %s from %s now?", branch, o.cfg.Remote), true)
	if err != nil {
		return err
	}
	if !pull {
		return domain.NewPreconditionFailed("%s is behind its remote", branch).
			WithRemedy("git pull --ff-only %s %s", o.cfg.Remote, branch)
	}
	if err := o.gitRepo.FastForwardPull(ctx, branch); err != nil {
		return wrapExternal(err, "failed to fast-forward %s", branch)
	}
	o.printer.Success("%s fast-forwarded to match %s", branch, o.cfg.Remote)
	return nil
}

// confirmDestructive asks before an irreversible operation. Declining is a
// cancellation, not a failure.
func (o *WorkflowOrchestrator) confirmDestructive(title string) error {
	ok, err := o.prompter.Confirm(title, false)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrCancelled
	}
	return nil
}

// selectBranch prompts over the local workflow branches, most recent commit
// first. exclude removes one branch from the candidates; kinds narrow them.
// Returns errNoBranches when nothing qualifies.
func (o *WorkflowOrchestrator) selectBranch(
	ctx context.Context,
	title, exclude string,
	kinds ...domain.WorkflowKind,
) (string, error) {
	uc := &usecase.ListWorkflowBranchesUseCase{GitRepo: o.gitRepo, Workflows: o.workflows}
	branches, err := uc.Execute(ctx, kinds...)
	if err != nil {
		return "", wrapExternal(err, "failed to list local branches")
	}
	options := make([]ui.Option, 0, len(branches))
	for _, branch := range branches {
		if branch.Name == exclude {
			continue
		}
		options = append(options, ui.Option{Label: branch.Name, Value: branch.Name})
	}
	if len(options) == 0 {
		return "", errNoBranches
	}
	return o.prompter.Select(title, options)
}

// ensureWorkflowBranch leaves the user on a branch of kind, offering a
// switch over the existing candidates when the current branch does not
// match. rc tracks the move.
func (o *WorkflowOrchestrator) ensureWorkflowBranch(
	ctx context.Context,
	rc *domain.RepoContext,
	kind domain.WorkflowKind,
) error {
	if current, ok := o.workflows.Match(rc.CurrentBranch); ok && current == kind {
		return nil
	}
	target, err := o.selectBranch(ctx, fmt.Sprintf("Switch to a %s branch", kind), "", kind)
	if err != nil {
		if errors.Is(err, errNoBranches) {
			return domain.NewPreconditionFailed("no %s branches exist", kind).
				WithRemedy("flowctl branch create %s", kind)
		}
		return err
	}
	if err := o.gitRepo.CheckoutBranch(ctx, target); err != nil {
		return wrapExternal(err, "failed to checkout %s", target)
	}
	o.printer.Step("switched to %s", target)
	rc.CurrentBranch = target
	return nil
}

// resolveKind parses a workflow kind argument, or prompts when it is empty.
func (o *WorkflowOrchestrator) resolveKind(arg string) (domain.WorkflowKind, error) {
	if trimmed := strings.TrimSpace(arg); trimmed != "" {
		return parseKind(trimmed)
	}
	kinds := domain.AllWorkflowKinds()
	options := make([]ui.Option, 0, len(kinds))
	for _, kind := range kinds {
		options = append(options, ui.Option{Label: string(kind), Value: string(kind)})
	}
	value, err := o.prompter.Select("Branch kind", options)
	if err != nil {
		return "", err
	}
	return domain.WorkflowKind(value), nil
}

func parseKind(arg string) (domain.WorkflowKind, error) {
	switch strings.ToLower(arg) {
	case "feature":
		return domain.WorkflowFeature, nil
	case "fix":
		return domain.WorkflowFix, nil
	case "release":
		return domain.WorkflowRelease, nil
	case "hotfix":
		return domain.WorkflowHotfix, nil
	}
	return "", domain.NewInvalidInput("unknown branch kind %q: expected feature, fix, release or hotfix", arg)
}

// resolveBranchVersion derives the version a release or hotfix branch
// embeds, reconciling it with an explicitly supplied argument.
func (o *WorkflowOrchestrator) resolveBranchVersion(branch, arg string) (*domain.Version, error) {
	_, embedded, ok := o.workflows.Extract(branch)
	if !ok {
		return nil, domain.NewPreconditionFailed("%s is not a workflow branch", branch)
	}
	version, err := domain.NewVersion(embedded)
	if err != nil {
		return nil, domain.NewPreconditionFailed("%s does not embed a valid version", branch).WithCause(err)
	}
	if strings.TrimSpace(arg) == "" {
		return version, nil
	}
	supplied, err := NormalizeVersion(arg)
	if err != nil {
		return nil, err
	}
	if supplied.Compare(version) != 0 {
		return nil, domain.NewInvalidInput("version %s does not match branch %s", supplied, branch).
			WithRemedy("omit the version argument to use %s", version)
	}
	return version, nil
}

// returnToOrigin checks the starting branch out again after a workflow
// moved away. stay lists branches the user should keep standing on when
// they started there. Restore failures downgrade to a warning so they
// never mask the workflow's own outcome, and the restore runs on a fresh
// context so a timed-out workflow can still put the user back.
func (o *WorkflowOrchestrator) returnToOrigin(origin string, stay ...string) {
	for _, branch := range stay {
		if origin == branch {
			return
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), RollbackTimeout)
	defer cancel()
	current, err := o.gitRepo.CurrentBranch(ctx)
	if err != nil {
		o.log.Warn("failed to resolve current branch during restore", zap.Error(err))
		return
	}
	if current == origin {
		return
	}
	if err := o.gitRepo.CheckoutBranch(ctx, origin); err != nil {
		o.printer.Warn("could not return to %s: %v", origin, err)
		return
	}
	o.printer.Step("returned to %s", origin)
}

func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}

func plural(word string, n int) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
