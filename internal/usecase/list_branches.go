package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/compozy/flowctl/internal/domain"
	"github.com/compozy/flowctl/internal/repository"
)

// WorkflowBranch pairs a local branch with the workflow kind that owns it.
type WorkflowBranch struct {
	domain.BranchInfo
	Kind domain.WorkflowKind
}

// ListWorkflowBranchesUseCase lists local workflow branches ordered most
// recent commit first. Optional kinds narrow the result, which selectors
// use when only one workflow is eligible.

type ListWorkflowBranchesUseCase struct {
	GitRepo   repository.GitExtendedRepository
	Workflows *domain.Workflows
}

// Execute runs the use case.
func (uc *ListWorkflowBranchesUseCase) Execute(
	ctx context.Context,
	kinds ...domain.WorkflowKind,
) ([]WorkflowBranch, error) {
	branches, err := uc.GitRepo.ListBranches(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	var out []WorkflowBranch
	for _, branch := range branches {
		kind, ok := uc.Workflows.Match(branch.Name)
		if !ok {
			continue
		}
		if len(kinds) > 0 && !kindIn(kinds, kind) {
			continue
		}
		out = append(out, WorkflowBranch{BranchInfo: branch, Kind: kind})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CommitTime > out[j].CommitTime
	})
	return out, nil
}

func kindIn(kinds []domain.WorkflowKind, kind domain.WorkflowKind) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}
