package usecase

import (
	"context"
	"fmt"

	"github.com/compozy/flowctl/internal/domain"
	"github.com/compozy/flowctl/internal/repository"
)

// CheckSyncUseCase classifies a local branch tip against its remote
// counterpart. Callers fetch first; remote-tracking refs are only as fresh
// as the last fetch.

type CheckSyncUseCase struct {
	GitRepo repository.GitExtendedRepository
}

// Execute runs the use case.
func (uc *CheckSyncUseCase) Execute(ctx context.Context, branch string) (*domain.SyncReport, error) {
	remoteTip, found, err := uc.GitRepo.RemoteTip(ctx, branch)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve remote tip of %s: %w", branch, err)
	}
	report := &domain.SyncReport{Branch: branch, RemoteRef: remoteTip}
	if !found {
		report.Status = domain.SyncNoRemote
		return report, nil
	}
	localTip, err := uc.GitRepo.ResolveRef(ctx, branch)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve local tip of %s: %w", branch, err)
	}
	if localTip == remoteTip {
		report.Status = domain.SyncUpToDate
		return report, nil
	}
	localIsAncestor, err := uc.GitRepo.IsAncestor(ctx, localTip, remoteTip)
	if err != nil {
		return nil, fmt.Errorf("failed to compare %s with its remote: %w", branch, err)
	}
	if localIsAncestor {
		behind, err := uc.GitRepo.CountCommitsBetween(ctx, localTip, remoteTip)
		if err != nil {
			return nil, fmt.Errorf("failed to count commits behind on %s: %w", branch, err)
		}
		report.Status = domain.SyncBehind
		report.Behind = behind
		return report, nil
	}
	remoteIsAncestor, err := uc.GitRepo.IsAncestor(ctx, remoteTip, localTip)
	if err != nil {
		return nil, fmt.Errorf("failed to compare %s with its remote: %w", branch, err)
	}
	if remoteIsAncestor {
		ahead, err := uc.GitRepo.CountCommitsBetween(ctx, remoteTip, localTip)
		if err != nil {
			return nil, fmt.Errorf("failed to count commits ahead on %s: %w", branch, err)
		}
		report.Status = domain.SyncAhead
		report.Ahead = ahead
		return report, nil
	}
	base, err := uc.GitRepo.MergeBase(ctx, localTip, remoteTip)
	if err != nil {
		return nil, fmt.Errorf("failed to find merge base for %s: %w", branch, err)
	}
	ahead, err := uc.GitRepo.CountCommitsBetween(ctx, base, localTip)
	if err != nil {
		return nil, fmt.Errorf("failed to count diverged commits on %s: %w", branch, err)
	}
	behind, err := uc.GitRepo.CountCommitsBetween(ctx, base, remoteTip)
	if err != nil {
		return nil, fmt.Errorf("failed to count diverged commits on %s: %w", branch, err)
	}
	report.Status = domain.SyncDiverged
	report.Ahead = ahead
	report.Behind = behind
	return report, nil
}
