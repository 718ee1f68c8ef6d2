package orchestrator

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/compozy/flowctl/internal/config"
	"github.com/compozy/flowctl/internal/domain"
	"github.com/compozy/flowctl/internal/service"
	"github.com/compozy/flowctl/internal/ui"
)

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

// Mock for ReviewRepository
type mockReviewRepo struct {
	mock.Mock
}

func (m *mockReviewRepo) FindOpenPR(ctx context.Context, branch string) (*domain.PullRequest, error) {
	args := m.Called(ctx, branch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PullRequest), args.Error(1)
}

func (m *mockReviewRepo) CreatePullRequest(
	ctx context.Context,
	title, body, head, base string,
) (*domain.PullRequest, error) {
	args := m.Called(ctx, title, body, head, base)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PullRequest), args.Error(1)
}

func (m *mockReviewRepo) MergePullRequest(ctx context.Context, number int, message string) error {
	args := m.Called(ctx, number, message)
	return args.Error(0)
}

func (m *mockReviewRepo) ListOpenPRs(ctx context.Context) ([]domain.PullRequest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PullRequest), args.Error(1)
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

// Mock for RunJournal
type mockJournal struct {
	mock.Mock
}

func (m *mockJournal) Save(ctx context.Context, record *domain.RunRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *mockJournal) Load(ctx context.Context, runID string) (*domain.RunRecord, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RunRecord), args.Error(1)
}

func (m *mockJournal) LoadLatest(ctx context.Context) (*domain.RunRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RunRecord), args.Error(1)
}

func (m *mockJournal) Delete(ctx context.Context, runID string) error {
	args := m.Called(ctx, runID)
	return args.Error(0)
}

func (m *mockJournal) Exists(ctx context.Context, runID string) (bool, error) {
	args := m.Called(ctx, runID)
	return args.Bool(0), args.Error(1)
}

// Mock for ui.Prompter
type mockPrompter struct {
	mock.Mock
}

func (m *mockPrompter) Select(title string, options []ui.Option) (string, error) {
	args := m.Called(title, options)
	return args.String(0), args.Error(1)
}

func (m *mockPrompter) Input(title, placeholder string, validate func(string) error) (string, error) {
	args := m.Called(title, placeholder)
	return args.String(0), args.Error(1)
}

func (m *mockPrompter) Confirm(title string, defaultYes bool) (bool, error) {
	args := m.Called(title, defaultYes)
	return args.Bool(0), args.Error(1)
}

// testMocks bundles the orchestrator collaborators with the buffer the
// printer writes to, so tests can assert on user-facing output.
type testMocks struct {
	git      *mockGitRepo
	review   *mockReviewRepo
	pkg      *mockPkgManager
	journal  *mockJournal
	prompter *mockPrompter
	out      *bytes.Buffer
}

func newTestOrchestrator(t *testing.T) (*WorkflowOrchestrator, *testMocks) {
	t.Helper()
	cfg := config.DefaultConfig()
	m := &testMocks{
		git:      new(mockGitRepo),
		review:   new(mockReviewRepo),
		pkg:      new(mockPkgManager),
		journal:  new(mockJournal),
		prompter: new(mockPrompter),
		out:      new(bytes.Buffer),
	}
	m.journal.On("Save", mock.Anything, mock.Anything).Return(nil).Maybe()
	m.git.On("Root").Return("/work/repo").Maybe()
	orch := New(Deps{
		GitRepo:    m.git,
		ReviewRepo: m.review,
		PkgSvc:     m.pkg,
		Journal:    m.journal,
		Workflows:  cfg.Workflows(),
		Config:     cfg,
		Prompter:   m.prompter,
		Printer:    ui.NewPrinterTo(m.out),
		Log:        zap.NewNop(),
	})
	return orch, m
}

func (m *testMocks) assertAll(t *testing.T) {
	t.Helper()
	m.git.AssertExpectations(t)
	m.review.AssertExpectations(t)
	m.pkg.AssertExpectations(t)
	m.prompter.AssertExpectations(t)
}

// expectUpToDate primes the sync classification of branch as matching its
// remote counterpart at sha.
func (m *testMocks) expectUpToDate(branch, sha string) {
	m.git.On("RemoteTip", mock.Anything, branch).Return(sha, true, nil)
	m.git.On("ResolveRef", mock.Anything, branch).Return(sha, nil)
}

// expectBehind primes branch as strictly behind its remote by count commits.
func (m *testMocks) expectBehind(branch, local, remote string, count int) {
	m.git.On("RemoteTip", mock.Anything, branch).Return(remote, true, nil)
	m.git.On("ResolveRef", mock.Anything, branch).Return(local, nil)
	m.git.On("IsAncestor", mock.Anything, local, remote).Return(true, nil)
	m.git.On("CountCommitsBetween", mock.Anything, local, remote).Return(count, nil)
}

// expectAhead primes branch as strictly ahead of its remote by count commits.
func (m *testMocks) expectAhead(branch, local, remote string, count int) {
	m.git.On("RemoteTip", mock.Anything, branch).Return(remote, true, nil)
	m.git.On("ResolveRef", mock.Anything, branch).Return(local, nil)
	m.git.On("IsAncestor", mock.Anything, local, remote).Return(false, nil)
	m.git.On("IsAncestor", mock.Anything, remote, local).Return(true, nil)
	m.git.On("CountCommitsBetween", mock.Anything, remote, local).Return(count, nil)
}
