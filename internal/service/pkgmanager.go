package service

import (
	"context"

	"github.com/compozy/flowctl/internal/domain"
)

// Manager identifies a JavaScript package manager binary.
type Manager string

const (
	ManagerNpm  Manager = "npm"
	ManagerPnpm Manager = "pnpm"
	ManagerYarn Manager = "yarn"
	// ManagerNone disables manifest version handling entirely.
	ManagerNone Manager = "none"
)

// Lockfile returns the lockfile name a manager maintains, or "" when it
// has none.
func (m Manager) Lockfile() string {
	switch m {
	case ManagerNpm:
		return "package-lock.json"
	case ManagerPnpm:
		return "pnpm-lock.yaml"
	case ManagerYarn:
		return "yarn.lock"
	default:
		return ""
	}
}

// PackageManagerService defines the interface for reading and bumping the
// version recorded in the project's package manifest.

type PackageManagerService interface {
	// Detect resolves which package manager the project uses. ManagerNone
	// means the project carries no manifest and version steps are skipped.
	Detect(ctx context.Context) (Manager, error)
	// ReadManifest parses package.json from the project root.
	ReadManifest(ctx context.Context) (*domain.Manifest, error)
	// ReadVersion returns the manifest version, or "0.0.0" when no
	// manifest or version field exists.
	ReadVersion(ctx context.Context) (string, error)
	// WriteVersion bumps the manifest version through the package manager
	// so the lockfile stays consistent.
	WriteVersion(ctx context.Context, version string) error
	// VersionFiles lists the files WriteVersion touches, for committing.
	VersionFiles(ctx context.Context) ([]string, error)
}
