package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/sethvargo/go-retry"

	"github.com/compozy/flowctl/internal/domain"
)

const (
	// WorkspaceLockTimeout bounds how long a command waits for a concurrent
	// flowctl process to finish.
	WorkspaceLockTimeout = 10 * time.Second
	// WorkspaceLockBaseDelay seeds the exponential backoff between attempts.
	WorkspaceLockBaseDelay = 50 * time.Millisecond
	// WorkspaceLockMaxDelay caps a single backoff step.
	WorkspaceLockMaxDelay = 2 * time.Second
)

var errWorkspaceLockHeld = errors.New("workspace lock held by another process")

// WorkspaceLock serializes mutating commands within one repository. Every
// writing workflow takes it before touching the worktree or the remote;
// read-only commands never do. The journal keeps its own per-record locks,
// this one covers the command as a whole.
type WorkspaceLock struct {
	lock *flock.Flock
}

// NewWorkspaceLock creates a lock backed by the file at path. The file is
// created on first acquisition and left behind afterwards; flock state, not
// file existence, carries the lock.
func NewWorkspaceLock(path string) *WorkspaceLock {
	return &WorkspaceLock{lock: flock.New(path)}
}

// Acquire takes the lock, retrying with exponential backoff until
// WorkspaceLockTimeout elapses or ctx is canceled.
func (w *WorkspaceLock) Acquire(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(w.lock.Path()), JournalDirPermissions); err != nil {
		return fmt.Errorf("failed to prepare lock directory: %w", err)
	}
	lockCtx, cancel := context.WithTimeout(ctx, WorkspaceLockTimeout)
	defer cancel()
	backoff := retry.WithCappedDuration(WorkspaceLockMaxDelay, retry.NewExponential(WorkspaceLockBaseDelay))
	err := retry.Do(lockCtx, backoff, func(_ context.Context) error {
		held, tryErr := w.lock.TryLock()
		if tryErr != nil {
			return tryErr
		}
		if !held {
			return retry.RetryableError(errWorkspaceLockHeld)
		}
		return nil
	})
	if err == nil {
		return nil
	}
	return domain.NewPreconditionFailed("another flowctl command is running in this repository").
		WithCause(err).
		WithRemedy("wait for it to finish, or delete %s if it crashed", w.lock.Path())
}

// Release drops the lock. A failure is reported but never fails the command
// that already ran.
func (w *WorkspaceLock) Release() {
	if err := w.lock.Unlock(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to release workspace lock: %v\n", err)
	}
}
