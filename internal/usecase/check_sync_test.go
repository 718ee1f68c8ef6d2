package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compozy/flowctl/internal/domain"
)

func TestCheckSyncUseCase_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("Should classify equal tips as up to date", func(t *testing.T) {
		gitRepo := new(mockGitRepo)
		uc := &CheckSyncUseCase{GitRepo: gitRepo}
		gitRepo.On("RemoteTip", ctx, "develop").Return("aaa", true, nil)
		gitRepo.On("ResolveRef", ctx, "develop").Return("aaa", nil)
		report, err := uc.Execute(ctx, "develop")
		require.NoError(t, err)
		assert.Equal(t, domain.SyncUpToDate, report.Status)
		assert.True(t, report.InSync())
		gitRepo.AssertExpectations(t)
	})

	t.Run("Should classify a local tip reachable from remote as behind", func(t *testing.T) {
		gitRepo := new(mockGitRepo)
		uc := &CheckSyncUseCase{GitRepo: gitRepo}
		gitRepo.On("RemoteTip", ctx, "develop").Return("bbb", true, nil)
		gitRepo.On("ResolveRef", ctx, "develop").Return("aaa", nil)
		gitRepo.On("IsAncestor", ctx, "aaa", "bbb").Return(true, nil)
		gitRepo.On("CountCommitsBetween", ctx, "aaa", "bbb").Return(2, nil)
		report, err := uc.Execute(ctx, "develop")
		require.NoError(t, err)
		assert.Equal(t, domain.SyncBehind, report.Status)
		assert.Equal(t, 2, report.Behind)
		assert.Zero(t, report.Ahead)
		assert.False(t, report.InSync())
		gitRepo.AssertExpectations(t)
	})

	t.Run("Should classify a remote tip reachable from local as ahead", func(t *testing.T) {
		gitRepo := new(mockGitRepo)
		uc := &CheckSyncUseCase{GitRepo: gitRepo}
		gitRepo.On("RemoteTip", ctx, "release/v1.2.0").Return("aaa", true, nil)
		gitRepo.On("ResolveRef", ctx, "release/v1.2.0").Return("ccc", nil)
		gitRepo.On("IsAncestor", ctx, "ccc", "aaa").Return(false, nil)
		gitRepo.On("IsAncestor", ctx, "aaa", "ccc").Return(true, nil)
		gitRepo.On("CountCommitsBetween", ctx, "aaa", "ccc").Return(3, nil)
		report, err := uc.Execute(ctx, "release/v1.2.0")
		require.NoError(t, err)
		assert.Equal(t, domain.SyncAhead, report.Status)
		assert.Equal(t, 3, report.Ahead)
		assert.Zero(t, report.Behind)
		gitRepo.AssertExpectations(t)
	})

	t.Run("Should classify unrelated tips as diverged with both counts", func(t *testing.T) {
		gitRepo := new(mockGitRepo)
		uc := &CheckSyncUseCase{GitRepo: gitRepo}
		gitRepo.On("RemoteTip", ctx, "main").Return("remote", true, nil)
		gitRepo.On("ResolveRef", ctx, "main").Return("local", nil)
		gitRepo.On("IsAncestor", ctx, "local", "remote").Return(false, nil)
		gitRepo.On("IsAncestor", ctx, "remote", "local").Return(false, nil)
		gitRepo.On("MergeBase", ctx, "local", "remote").Return("base", nil)
		gitRepo.On("CountCommitsBetween", ctx, "base", "local").Return(1, nil)
		gitRepo.On("CountCommitsBetween", ctx, "base", "remote").Return(4, nil)
		report, err := uc.Execute(ctx, "main")
		require.NoError(t, err)
		assert.Equal(t, domain.SyncDiverged, report.Status)
		assert.Equal(t, 1, report.Ahead)
		assert.Equal(t, 4, report.Behind)
		gitRepo.AssertExpectations(t)
	})

	t.Run("Should classify a branch without remote counterpart", func(t *testing.T) {
		gitRepo := new(mockGitRepo)
		uc := &CheckSyncUseCase{GitRepo: gitRepo}
		gitRepo.On("RemoteTip", ctx, "feature/login").Return("", false, nil)
		report, err := uc.Execute(ctx, "feature/login")
		require.NoError(t, err)
		assert.Equal(t, domain.SyncNoRemote, report.Status)
		gitRepo.AssertExpectations(t)
	})

	t.Run("Should propagate remote resolution failures", func(t *testing.T) {
		gitRepo := new(mockGitRepo)
		uc := &CheckSyncUseCase{GitRepo: gitRepo}
		gitRepo.On("RemoteTip", ctx, "develop").Return("", false, errors.New("network down"))
		_, err := uc.Execute(ctx, "develop")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "network down")
		gitRepo.AssertExpectations(t)
	})
}
