package orchestrator

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/compozy/flowctl/internal/domain"
	"github.com/compozy/flowctl/internal/ui"
	"github.com/compozy/flowctl/internal/usecase"
)

// customRcOption marks the free-form entry in the candidate selector.
const customRcOption = "custom"

// TagRcInput carries the optional version and candidate number arguments.
type TagRcInput struct {
	Version string
	Number  int // 0 suggests the next free number
}

// TagRc creates a release-candidate tag at the tip of the release branch
// and pushes it. No merge happens; candidates drive external staging
// deployments only.
func (o *WorkflowOrchestrator) TagRc(ctx context.Context, input TagRcInput) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultWorkflowTimeout)
	defer cancel()
	record := o.beginRun(ctx, "release rc")
	err := o.tagRc(ctx, record, input)
	o.finishRun(ctx, record, err)
	return err
}

func (o *WorkflowOrchestrator) tagRc(ctx context.Context, record *domain.RunRecord, input TagRcInput) error {
	if input.Number < 0 {
		return domain.NewInvalidInput("candidate number must be positive")
	}
	rc, err := o.captureContext(ctx)
	if err != nil {
		return err
	}
	if err := o.ensureWorkflowBranch(ctx, &rc, domain.WorkflowRelease); err != nil {
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
	if err := o.fetchRemote(ctx); err != nil {
		return err
	}
	if err := o.ensureSynced(ctx, branch, true); err != nil {
		return err
	}
	number := input.Number
	if number == 0 {
		number, err = o.resolveRcNumber(ctx, version)
		if err != nil {
			return err
		}
	}
	tag := version.RcTagName(number)
	exists, err := o.gitRepo.TagExists(ctx, tag)
	if err != nil {
		return wrapExternal(err, "failed to check for tag %s", tag)
	}
	if exists {
		return domain.NewConflict("tag %s already exists", tag).
			WithRemedy("rerun without --rc to pick the next free number")
	}
	tip, err := o.gitRepo.ResolveRef(ctx, branch)
	if err != nil {
		return wrapExternal(err, "failed to resolve the tip of %s", branch)
	}
	if err := o.gitRepo.CreateTag(ctx, tag, tip, tag); err != nil {
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

// resolveRcNumber suggests the next free candidate number for version and
// lets the user override it.
func (o *WorkflowOrchestrator) resolveRcNumber(ctx context.Context, version *domain.Version) (int, error) {
	uc := &usecase.NextRcUseCase{GitRepo: o.gitRepo}
	suggested, err := uc.Execute(ctx, version)
	if err != nil {
		return 0, wrapExternal(err, "failed to derive the next candidate number")
	}
	options := []ui.Option{
		{Label: fmt.Sprintf("%s (next)", suggested), Value: strconv.Itoa(suggested.Number)},
		{Label: "another number", Value: customRcOption},
	}
	choice, err := o.prompter.Select(fmt.Sprintf("Release candidate for %s", version), options)
	if err != nil {
		return 0, err
	}
	if choice != customRcOption {
		return strconv.Atoi(choice)
	}
	raw, err := o.prompter.Input("Candidate number", strconv.Itoa(suggested.Number), validateRcNumber)
	if err != nil {
		return 0, err
	}
	number, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || number < 1 {
		return 0, domain.NewInvalidInput("candidate number must be a positive integer")
	}
	return number, nil
}

func validateRcNumber(raw string) error {
	number, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || number < 1 {
		return fmt.Errorf("expected a positive number")
	}
	return nil
}
