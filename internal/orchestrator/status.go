package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/compozy/flowctl/internal/domain"
	"github.com/compozy/flowctl/internal/usecase"
)

// statusBranchLimit caps the recent-branch section of the report.
const statusBranchLimit = 5

// Status reports where the repository stands: branch, workflow kind, tree
// state, synchronization with the remote, manifest version, open pull
// request, recent workflow branches and the last recorded run. Read-only;
// optional sources that fail are skipped, never fatal.
func (o *WorkflowOrchestrator) Status(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultWorkflowTimeout)
	defer cancel()
	rc, err := o.captureContext(ctx)
	if err != nil {
		return err
	}
	o.printer.Info("repository   %s", rc.Root)
	kindLabel := "none"
	if kind, ok := o.workflows.Match(rc.CurrentBranch); ok {
		kindLabel = string(kind)
	}
	o.printer.Info("branch       %s (workflow: %s)", rc.CurrentBranch, kindLabel)
	tree := "clean"
	if !rc.Clean {
		tree = "uncommitted changes"
	}
	o.printer.Info("working tree %s", tree)
	if raw, err := o.pkgSvc.ReadVersion(ctx); err == nil {
		o.printer.Info("version      %s", raw)
	}
	o.reportSync(ctx, rc.CurrentBranch)
	if tag, err := o.gitRepo.LatestTag(ctx); err == nil && tag != "" {
		o.printer.Info("latest tag   %s", tag)
	}
	o.reportCandidates(ctx, rc.CurrentBranch)
	if pr, err := o.reviewRepo.FindOpenPR(ctx, rc.CurrentBranch); err == nil && pr != nil {
		o.printer.Info("open pr      #%d %s", pr.Number, pr.URL)
	}
	o.reportBranches(ctx, rc.CurrentBranch)
	o.reportLastRun(ctx)
	return nil
}

func (o *WorkflowOrchestrator) reportSync(ctx context.Context, branch string) {
	if err := o.fetchRemote(ctx); err != nil {
		o.printer.Warn("sync check skipped: %v", err)
		return
	}
	report, err := o.checkSync(ctx, branch)
	if err != nil {
		o.printer.Warn("sync check skipped: %v", err)
		return
	}
	o.printer.Info("sync         %s", describeSync(report))
}

func describeSync(report *domain.SyncReport) string {
	switch report.Status {
	case domain.SyncBehind:
		return fmt.Sprintf("behind by %d %s", report.Behind, plural("commit", report.Behind))
	case domain.SyncAhead:
		return fmt.Sprintf("ahead by %d %s", report.Ahead, plural("commit", report.Ahead))
	case domain.SyncDiverged:
		return fmt.Sprintf("diverged (%d local, %d remote)", report.Ahead, report.Behind)
	case domain.SyncNoRemote:
		return "no remote counterpart"
	default:
		return "up to date"
	}
}

// reportCandidates lists the release-candidate tags already cut for the
// version embedded in a release or hotfix branch.
func (o *WorkflowOrchestrator) reportCandidates(ctx context.Context, branch string) {
	kind, value, ok := o.workflows.Extract(branch)
	if !ok || !kind.Versioned() {
		return
	}
	version, err := domain.NewVersion(value)
	if err != nil {
		return
	}
	tags, err := o.gitRepo.ListTags(ctx)
	if err != nil {
		return
	}
	candidates := domain.RcTagsFor(tags, version)
	if len(candidates) == 0 {
		return
	}
	names := make([]string, len(candidates))
	for i, candidate := range candidates {
		names[i] = candidate.String()
	}
	o.printer.Info("candidates   %s", strings.Join(names, ", "))
}

func (o *WorkflowOrchestrator) reportBranches(ctx context.Context, current string) {
	uc := &usecase.ListWorkflowBranchesUseCase{GitRepo: o.gitRepo, Workflows: o.workflows}
	branches, err := uc.Execute(ctx)
	if err != nil || len(branches) == 0 {
		return
	}
	o.printer.Info("workflow branches:")
	for i, branch := range branches {
		if i == statusBranchLimit {
			o.printer.Info("  and %d more", len(branches)-statusBranchLimit)
			break
		}
		marker := " "
		if branch.Name == current {
			marker = "*"
		}
		o.printer.Info("  %s %s", marker, branch.Name)
	}
}

func (o *WorkflowOrchestrator) reportLastRun(ctx context.Context) {
	if o.journal == nil {
		return
	}
	record, err := o.journal.LoadLatest(ctx)
	if err != nil || record == nil {
		return
	}
	o.printer.Info("last run     %s (%s, %s)",
		record.Operation, record.Status, record.UpdatedAt.Format(time.RFC3339))
}
