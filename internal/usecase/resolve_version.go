package usecase

import (
	"context"
	"fmt"

	"github.com/compozy/flowctl/internal/domain"
	"github.com/compozy/flowctl/internal/repository"
	"github.com/compozy/flowctl/internal/service"
)

// ResolveVersionUseCase determines the version a release starts from: the
// package manifest when one exists, otherwise the highest production tag,
// otherwise 0.0.0.

type ResolveVersionUseCase struct {
	GitRepo repository.GitRepository
	PkgSvc  service.PackageManagerService
}

// Execute runs the use case.
func (uc *ResolveVersionUseCase) Execute(ctx context.Context) (*domain.Version, error) {
	raw, err := uc.PkgSvc.ReadVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest version: %w", err)
	}
	version, err := domain.NewVersion(raw)
	if err != nil {
		return nil, fmt.Errorf("manifest carries invalid version %q: %w", raw, err)
	}
	if version.String() != "0.0.0" {
		return version, nil
	}
	tags, err := uc.GitRepo.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	highest := version
	for _, tag := range tags {
		tagged, ok := domain.ParseReleaseTag(tag)
		if !ok {
			continue
		}
		if tagged.Compare(highest) > 0 {
			highest = tagged
		}
	}
	return highest, nil
}
