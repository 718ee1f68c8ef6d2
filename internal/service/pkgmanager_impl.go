package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/compozy/flowctl/internal/domain"
)

const manifestFile = "package.json"

// pkgManagerService is the implementation of the PackageManagerService
// interface. The manifest is read through the filesystem abstraction;
// version bumps shell out to the package manager so lockfiles stay in
// sync.
type pkgManagerService struct {
	fs        afero.Fs
	root      string
	preferred Manager
	// timeout for command execution
	timeout time.Duration
}

// NewPackageManagerService creates a PackageManagerService rooted at the
// project directory. An empty preferred manager enables lockfile
// detection.
func NewPackageManagerService(fs afero.Fs, root string, preferred Manager) PackageManagerService {
	return &pkgManagerService{
		fs:        fs,
		root:      root,
		preferred: preferred,
		timeout:   DefaultPackageManagerTimeout,
	}
}

// Detect resolves the package manager by configuration first, then by the
// lockfile present next to package.json.
func (s *pkgManagerService) Detect(_ context.Context) (Manager, error) {
	switch s.preferred {
	case ManagerNone, ManagerNpm, ManagerPnpm, ManagerYarn:
		return s.preferred, nil
	}
	hasManifest, err := s.fileExists(manifestFile)
	if err != nil {
		return ManagerNone, err
	}
	if !hasManifest {
		return ManagerNone, nil
	}
	for _, m := range []Manager{ManagerPnpm, ManagerYarn, ManagerNpm} {
		found, err := s.fileExists(m.Lockfile())
		if err != nil {
			return ManagerNone, err
		}
		if found {
			return m, nil
		}
	}
	return ManagerNpm, nil
}

// ReadManifest parses package.json from the project root.
func (s *pkgManagerService) ReadManifest(_ context.Context) (*domain.Manifest, error) {
	data, err := afero.ReadFile(s.fs, filepath.Join(s.root, manifestFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no %s found in %s: %w", manifestFile, s.root, err)
		}
		return nil, fmt.Errorf("failed to read %s: %w", manifestFile, err)
	}
	var manifest domain.Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", manifestFile, err)
	}
	return &manifest, nil
}

// ReadVersion returns the manifest version. A missing manifest or empty
// version field reads as 0.0.0 so first releases can still be suggested.
func (s *pkgManagerService) ReadVersion(ctx context.Context) (string, error) {
	manifest, err := s.ReadManifest(ctx)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "0.0.0", nil
		}
		return "", err
	}
	if manifest.Version == "" {
		return "0.0.0", nil
	}
	return manifest.Version, nil
}

// WriteVersion bumps the manifest version through the package manager
// binary without creating a git tag.
func (s *pkgManagerService) WriteVersion(ctx context.Context, version string) error {
	if !domain.ValidateVersion(version) {
		return fmt.Errorf("invalid version %q: expected MAJOR.MINOR.PATCH", version)
	}
	manager, err := s.Detect(ctx)
	if err != nil {
		return err
	}
	if manager == ManagerNone {
		return fmt.Errorf("no package manifest to update in %s", s.root)
	}
	hasManifest, err := s.fileExists(manifestFile)
	if err != nil {
		return err
	}
	if !hasManifest {
		return fmt.Errorf("%s not found in %s", manifestFile, s.root)
	}
	args := []string{"version", version, "--no-git-tag-version"}
	if manager == ManagerYarn {
		args = []string{"version", "--new-version", version, "--no-git-tag-version"}
	}
	if err := s.executeCommand(ctx, string(manager), args...); err != nil {
		return fmt.Errorf("failed to set version %s with %s: %w", version, manager, err)
	}
	return nil
}

// VersionFiles lists the manifest and, when present, the lockfile the
// version bump rewrote.
func (s *pkgManagerService) VersionFiles(ctx context.Context) ([]string, error) {
	manager, err := s.Detect(ctx)
	if err != nil {
		return nil, err
	}
	if manager == ManagerNone {
		return nil, nil
	}
	files := []string{manifestFile}
	if lockfile := manager.Lockfile(); lockfile != "" {
		found, err := s.fileExists(lockfile)
		if err != nil {
			return nil, err
		}
		if found {
			files = append(files, lockfile)
		}
	}
	return files, nil
}

func (s *pkgManagerService) fileExists(name string) (bool, error) {
	if name == "" {
		return false, nil
	}
	_, err := s.fs.Stat(filepath.Join(s.root, name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check %s: %w", name, err)
	}
	return true, nil
}

// executeCommand runs a command in the project root with timeout and
// proper resource cleanup.
func (s *pkgManagerService) executeCommand(ctx context.Context, name string, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = s.root

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("command timed out after %v", s.timeout)
		}
		if detail := strings.TrimSpace(stderr.String()); detail != "" {
			return fmt.Errorf("command failed: %w: %s", err, detail)
		}
		return fmt.Errorf("command failed: %w", err)
	}
	return nil
}
