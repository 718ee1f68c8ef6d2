package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/compozy/flowctl/internal/domain"
	"github.com/compozy/flowctl/internal/service"
)

func TestWorkflowOrchestrator_CreateBranch(t *testing.T) {
	t.Run("Should create a feature branch from develop without pushing", func(t *testing.T) {
		orch, m := newTestOrchestrator(t)
		m.git.On("CurrentBranch", mock.Anything).Return("develop", nil).Once()
		m.git.On("IsClean", mock.Anything).Return(true, nil).Once()
		m.git.On("Fetch", mock.Anything).Return(nil).Once()
		m.expectUpToDate("develop", "aaa111")
		m.git.On("CreateBranch", mock.Anything, "feature/login").Return(nil).Once()
		m.git.On("CheckoutBranch", mock.Anything, "feature/login").Return(nil).Once()

		err := orch.CreateBranch(context.Background(), CreateBranchInput{Kind: "feature", Value: "login"})
		require.NoError(t, err)

		m.git.AssertNotCalled(t, "PushBranch", mock.Anything, mock.Anything)
		m.pkg.AssertNotCalled(t, "Detect", mock.Anything)
		assert.Contains(t, m.out.String(), "created feature/login from develop")
		m.assertAll(t)
	})

	t.Run("Should refuse to start from the wrong base branch", func(t *testing.T) {
		orch, m := newTestOrchestrator(t)
		m.git.On("CurrentBranch", mock.Anything).Return("main", nil).Once()
		m.git.On("IsClean", mock.Anything).Return(true, nil).Once()

		err := orch.CreateBranch(context.Background(), CreateBranchInput{Kind: "feature", Value: "login"})
		require.Error(t, err)
		assert.Equal(t, domain.KindPreconditionFailed, domain.KindOf(err))
		assert.Contains(t, domain.RemedyOf(err), "git checkout develop")
		m.git.AssertNotCalled(t, "CreateBranch", mock.Anything, mock.Anything)
	})

	t.Run("Should refuse a dirty working tree", func(t *testing.T) {
		orch, m := newTestOrchestrator(t)
		m.git.On("CurrentBranch", mock.Anything).Return("develop", nil).Once()
		m.git.On("IsClean", mock.Anything).Return(false, nil).Once()

		err := orch.CreateBranch(context.Background(), CreateBranchInput{Kind: "fix", Value: "typo"})
		require.Error(t, err)
		assert.Equal(t, domain.KindPreconditionFailed, domain.KindOf(err))
		assert.Contains(t, err.Error(), "uncommitted changes")
		m.git.AssertNotCalled(t, "Fetch", mock.Anything)
		m.git.AssertNotCalled(t, "CreateBranch", mock.Anything, mock.Anything)
	})

	t.Run("Should create a release branch with a manifest bump and push it", func(t *testing.T) {
		orch, m := newTestOrchestrator(t)
		m.git.On("CurrentBranch", mock.Anything).Return("develop", nil).Once()
		m.git.On("IsClean", mock.Anything).Return(true, nil).Once()
		m.git.On("Fetch", mock.Anything).Return(nil).Once()
		m.expectUpToDate("develop", "aaa111")
		m.git.On("CreateBranch", mock.Anything, "release/v1.2.0").Return(nil).Once()
		m.git.On("CheckoutBranch", mock.Anything, "release/v1.2.0").Return(nil).Once()
		m.pkg.On("Detect", mock.Anything).Return(service.ManagerNpm, nil).Once()
		m.pkg.On("WriteVersion", mock.Anything, "1.2.0").Return(nil).Once()
		m.pkg.On("VersionFiles", mock.Anything).
			Return([]string{"package.json", "package-lock.json"}, nil).Once()
		m.git.On("CommitPaths", mock.Anything, []string{"package.json", "package-lock.json"},
			"chore: bump version to 1.2.0").Return(nil).Once()
		m.git.On("PushBranch", mock.Anything, "release/v1.2.0").Return(nil).Once()

		err := orch.CreateBranch(context.Background(), CreateBranchInput{Kind: "release", Value: "1.2.0"})
		require.NoError(t, err)

		assert.Contains(t, m.out.String(), "pushed release/v1.2.0 to origin")
		m.assertAll(t)
	})

	t.Run("Should roll back the branch when the version bump fails", func(t *testing.T) {
		orch, m := newTestOrchestrator(t)
		m.git.On("CurrentBranch", mock.Anything).Return("main", nil).Once()
		m.git.On("IsClean", mock.Anything).Return(true, nil).Once()
		m.git.On("Fetch", mock.Anything).Return(nil).Once()
		m.expectUpToDate("main", "bbb222")
		m.git.On("CreateBranch", mock.Anything, "hotfix/v1.2.1").Return(nil).Once()
		m.git.On("CheckoutBranch", mock.Anything, "hotfix/v1.2.1").Return(nil).Once()
		m.pkg.On("Detect", mock.Anything).Return(service.ManagerNpm, nil).Once()
		m.pkg.On("WriteVersion", mock.Anything, "1.2.1").Return(errors.New("npm exited 1")).Once()
		// Rollback path
		m.git.On("CheckoutBranch", mock.Anything, "main").Return(nil).Once()
		m.git.On("DeleteBranch", mock.Anything, "hotfix/v1.2.1").Return(nil).Once()

		err := orch.CreateBranch(context.Background(), CreateBranchInput{Kind: "hotfix", Value: "1.2.1"})
		require.Error(t, err)
		assert.Equal(t, domain.KindExternalTool, domain.KindOf(err))

		m.git.AssertNotCalled(t, "PushBranch", mock.Anything, mock.Anything)
		assert.Contains(t, m.out.String(), "removed hotfix/v1.2.1 and returned to main")
		m.assertAll(t)
	})

	t.Run("Should prompt for kind and version when arguments are missing", func(t *testing.T) {
		orch, m := newTestOrchestrator(t)
		m.prompter.On("Select", "Branch kind", mock.Anything).Return("release", nil).Once()
		m.git.On("CurrentBranch", mock.Anything).Return("develop", nil).Once()
		m.git.On("IsClean", mock.Anything).Return(true, nil).Once()
		m.pkg.On("ReadVersion", mock.Anything).Return("1.2.0", nil).Once()
		m.prompter.On("Select", "New release version (current 1.2.0)", mock.Anything).
			Return("1.3.0", nil).Once()
		m.git.On("Fetch", mock.Anything).Return(nil).Once()
		m.expectUpToDate("develop", "aaa111")
		m.git.On("CreateBranch", mock.Anything, "release/v1.3.0").Return(nil).Once()
		m.git.On("CheckoutBranch", mock.Anything, "release/v1.3.0").Return(nil).Once()
		m.pkg.On("Detect", mock.Anything).Return(service.ManagerPnpm, nil).Once()
		m.pkg.On("WriteVersion", mock.Anything, "1.3.0").Return(nil).Once()
		m.pkg.On("VersionFiles", mock.Anything).Return([]string{"package.json"}, nil).Once()
		m.git.On("CommitPaths", mock.Anything, []string{"package.json"},
			"chore: bump version to 1.3.0").Return(nil).Once()
		m.git.On("PushBranch", mock.Anything, "release/v1.3.0").Return(nil).Once()

		err := orch.CreateBranch(context.Background(), CreateBranchInput{})
		require.NoError(t, err)
		m.assertAll(t)
	})

	t.Run("Should offer a fast-forward when the base is behind", func(t *testing.T) {
		orch, m := newTestOrchestrator(t)
		m.git.On("CurrentBranch", mock.Anything).Return("develop", nil).Once()
		m.git.On("IsClean", mock.Anything).Return(true, nil).Once()
		m.git.On("Fetch", mock.Anything).Return(nil).Once()
		m.expectBehind("develop", "aaa111", "ccc333", 2)
		m.prompter.On("Confirm", "Fast-forward develop from origin now?", true).
			Return(true, nil).Once()
		m.git.On("FastForwardPull", mock.Anything, "develop").Return(nil).Once()
		m.git.On("CreateBranch", mock.Anything, "feature/login").Return(nil).Once()
		m.git.On("CheckoutBranch", mock.Anything, "feature/login").Return(nil).Once()

		err := orch.CreateBranch(context.Background(), CreateBranchInput{Kind: "feature", Value: "login"})
		require.NoError(t, err)
		assert.Contains(t, m.out.String(), "develop fast-forwarded to match origin")
		m.assertAll(t)
	})

	t.Run("Should abort when the pull offer is declined", func(t *testing.T) {
		orch, m := newTestOrchestrator(t)
		m.git.On("CurrentBranch", mock.Anything).Return("develop", nil).Once()
		m.git.On("IsClean", mock.Anything).Return(true, nil).Once()
		m.git.On("Fetch", mock.Anything).Return(nil).Once()
		m.expectBehind("develop", "aaa111", "ccc333", 2)
		m.prompter.On("Confirm", "Fast-forward develop from origin now?", true).
			Return(false, nil).Once()

		err := orch.CreateBranch(context.Background(), CreateBranchInput{Kind: "feature", Value: "login"})
		require.Error(t, err)
		assert.Equal(t, domain.KindPreconditionFailed, domain.KindOf(err))
		assert.Contains(t, domain.RemedyOf(err), "git pull --ff-only origin develop")
		m.git.AssertNotCalled(t, "FastForwardPull", mock.Anything, mock.Anything)
		m.git.AssertNotCalled(t, "CreateBranch", mock.Anything, mock.Anything)
	})

	t.Run("Should abort when the base has unpushed commits", func(t *testing.T) {
		orch, m := newTestOrchestrator(t)
		m.git.On("CurrentBranch", mock.Anything).Return("develop", nil).Once()
		m.git.On("IsClean", mock.Anything).Return(true, nil).Once()
		m.git.On("Fetch", mock.Anything).Return(nil).Once()
		m.expectAhead("develop", "ddd444", "aaa111", 1)

		err := orch.CreateBranch(context.Background(), CreateBranchInput{Kind: "feature", Value: "login"})
		require.Error(t, err)
		assert.Equal(t, domain.KindPreconditionFailed, domain.KindOf(err))
		assert.Contains(t, err.Error(), "unpushed commit")
		assert.Contains(t, domain.RemedyOf(err), "git push origin develop")
		m.git.AssertNotCalled(t, "CreateBranch", mock.Anything, mock.Anything)
	})

	t.Run("Should warn and proceed when the base has no remote counterpart", func(t *testing.T) {
		orch, m := newTestOrchestrator(t)
		m.git.On("CurrentBranch", mock.Anything).Return("develop", nil).Once()
		m.git.On("IsClean", mock.Anything).Return(true, nil).Once()
		m.git.On("Fetch", mock.Anything).Return(nil).Once()
		m.git.On("RemoteTip", mock.Anything, "develop").Return("", false, nil).Once()
		m.git.On("CreateBranch", mock.Anything, "fix/typo").Return(nil).Once()
		m.git.On("CheckoutBranch", mock.Anything, "fix/typo").Return(nil).Once()

		err := orch.CreateBranch(context.Background(), CreateBranchInput{Kind: "fix", Value: "typo"})
		require.NoError(t, err)
		assert.Contains(t, m.out.String(), "develop has no counterpart on origin")
		m.assertAll(t)
	})

	t.Run("Should reject an unknown branch kind", func(t *testing.T) {
		orch, m := newTestOrchestrator(t)

		err := orch.CreateBranch(context.Background(), CreateBranchInput{Kind: "banana"})
		require.Error(t, err)
		assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))
		assert.Contains(t, err.Error(), "banana")
		m.git.AssertNotCalled(t, "CurrentBranch", mock.Anything)
	})
}
