package usecase

import (
	"context"
	"fmt"

	"github.com/compozy/flowctl/internal/domain"
	"github.com/compozy/flowctl/internal/repository"
)

// NextRcUseCase suggests the next release candidate tag for a version.

type NextRcUseCase struct {
	GitRepo repository.GitRepository
}

// Execute runs the use case.
func (uc *NextRcUseCase) Execute(ctx context.Context, version *domain.Version) (domain.RcTag, error) {
	tags, err := uc.GitRepo.ListTags(ctx)
	if err != nil {
		return domain.RcTag{}, fmt.Errorf("failed to list tags: %w", err)
	}
	return domain.RcTag{
		Version: version,
		Number:  domain.NextRcNumber(tags, version),
	}, nil
}
