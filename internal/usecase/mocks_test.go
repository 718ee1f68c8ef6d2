package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/compozy/flowctl/internal/domain"
	"github.com/compozy/flowctl/internal/service"
)

func mustVersion(t *testing.T, raw string) *domain.Version {
	t.Helper()
	version, err := domain.NewVersion(raw)
	require.NoError(t, err)
	return version
}

// Mock for GitExtendedRepository
type mockGitRepo struct {
	mock.Mock
}

func (m *mockGitRepo) CurrentBranch(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockGitRepo) HeadCommit(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockGitRepo) IsClean(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *mockGitRepo) CreateBranch(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *mockGitRepo) CheckoutBranch(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *mockGitRepo) PushBranch(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *mockGitRepo) ListTags(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockGitRepo) LatestTag(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockGitRepo) TagExists(ctx context.Context, tag string) (bool, error) {
	args := m.Called(ctx, tag)
	return args.Bool(0), args.Error(1)
}

func (m *mockGitRepo) CreateTag(ctx context.Context, tag, commit, msg string) error {
	args := m.Called(ctx, tag, commit, msg)
	return args.Error(0)
}

func (m *mockGitRepo) DeleteTag(ctx context.Context, tag string) error {
	args := m.Called(ctx, tag)
	return args.Error(0)
}

func (m *mockGitRepo) PushTag(ctx context.Context, tag string) error {
	args := m.Called(ctx, tag)
	return args.Error(0)
}

func (m *mockGitRepo) Root() string {
	args := m.Called()
	return args.String(0)
}

func (m *mockGitRepo) DeleteBranch(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *mockGitRepo) DeleteRemoteBranch(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *mockGitRepo) ListBranches(ctx context.Context) ([]domain.BranchInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BranchInfo), args.Error(1)
}

func (m *mockGitRepo) Fetch(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockGitRepo) RemoteTip(ctx context.Context, branch string) (string, bool, error) {
	args := m.Called(ctx, branch)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *mockGitRepo) FastForwardPull(ctx context.Context, branch string) error {
	args := m.Called(ctx, branch)
	return args.Error(0)
}

func (m *mockGitRepo) ResolveRef(ctx context.Context, ref string) (string, error) {
	args := m.Called(ctx, ref)
	return args.String(0), args.Error(1)
}

func (m *mockGitRepo) IsAncestor(ctx context.Context, ancestor, descendant string) (bool, error) {
	args := m.Called(ctx, ancestor, descendant)
	return args.Bool(0), args.Error(1)
}

func (m *mockGitRepo) MergeBase(ctx context.Context, a, b string) (string, error) {
	args := m.Called(ctx, a, b)
	return args.String(0), args.Error(1)
}

func (m *mockGitRepo) CountCommitsBetween(ctx context.Context, ancestor, tip string) (int, error) {
	args := m.Called(ctx, ancestor, tip)
	return args.Int(0), args.Error(1)
}

func (m *mockGitRepo) CommitPaths(ctx context.Context, paths []string, message string) error {
	args := m.Called(ctx, paths, message)
	return args.Error(0)
}

func (m *mockGitRepo) MergeNoFF(ctx context.Context, source, message string) error {
	args := m.Called(ctx, source, message)
	return args.Error(0)
}

// Mock for PackageManagerService
type mockPkgManager struct {
	mock.Mock
}

func (m *mockPkgManager) Detect(ctx context.Context) (service.Manager, error) {
	args := m.Called(ctx)
	return args.Get(0).(service.Manager), args.Error(1)
}

func (m *mockPkgManager) ReadManifest(ctx context.Context) (*domain.Manifest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Manifest), args.Error(1)
}

func (m *mockPkgManager) ReadVersion(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockPkgManager) WriteVersion(ctx context.Context, version string) error {
	args := m.Called(ctx, version)
	return args.Error(0)
}

func (m *mockPkgManager) VersionFiles(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
