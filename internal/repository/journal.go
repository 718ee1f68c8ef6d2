package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/sethvargo/go-retry"
	"github.com/spf13/afero"

	"github.com/compozy/flowctl/internal/domain"
)

const (
	// JournalSchemaVersion defines the current schema version for run records
	JournalSchemaVersion = "1.0.0"
	// JournalFilePermissions defines the permissions for run record files
	JournalFilePermissions = 0600
	// JournalDirPermissions defines the permissions for the journal directory
	JournalDirPermissions = 0700
	// LockTimeout defines the maximum time to wait for a lock
	LockTimeout = 30 * time.Second
	// LockRetryInterval defines the interval between lock retry attempts
	LockRetryInterval = 100 * time.Millisecond
)

var errLockHeld = errors.New("journal lock held by another process")

// RunJournal defines the interface for persisting workflow run records
type RunJournal interface {
	Save(ctx context.Context, record *domain.RunRecord) error
	Load(ctx context.Context, runID string) (*domain.RunRecord, error)
	LoadLatest(ctx context.Context) (*domain.RunRecord, error)
	Delete(ctx context.Context, runID string) error
	Exists(ctx context.Context, runID string) (bool, error)
}

// RecordMetadata contains metadata about a persisted run record
type RecordMetadata struct {
	SchemaVersion string    `json:"schema_version"`
	Checksum      string    `json:"checksum"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// RecordWrapper wraps a run record with metadata
type RecordWrapper struct {
	Metadata RecordMetadata    `json:"metadata"`
	Record   *domain.RunRecord `json:"record"`
}

// JSONRunJournal implements RunJournal using JSON file storage
type JSONRunJournal struct {
	fs         FileSystem
	journalDir string
	mu         sync.RWMutex
}

// NewJSONRunJournal creates a new JSON-based run journal rooted at
// journalDir. Callers usually pass a directory under .git so records never
// pollute the worktree.
func NewJSONRunJournal(fs FileSystem, journalDir string) RunJournal {
	if journalDir == "" {
		journalDir = filepath.Join(".git", "flowctl", "runs")
	}
	return &JSONRunJournal{
		fs:         fs,
		journalDir: journalDir,
	}
}

// Save persists the run record to a JSON file with proper locking
func (j *JSONRunJournal) Save(ctx context.Context, record *domain.RunRecord) error {
	if err := j.ensureJournalDir(); err != nil {
		return fmt.Errorf("failed to ensure journal directory: %w", err)
	}
	filename := j.recordFilename(record.RunID)
	lock := flock.New(j.lockFilename(record.RunID))
	if err := j.acquireLock(ctx, lock.TryLock); err != nil {
		return fmt.Errorf("failed to acquire journal lock: %w", err)
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			// Log error but don't fail the operation
			fmt.Fprintf(os.Stderr, "warning: failed to unlock journal: %v\n", unlockErr)
		}
	}()
	wrapper := RecordWrapper{
		Metadata: RecordMetadata{
			SchemaVersion: JournalSchemaVersion,
			CreatedAt:     record.StartedAt,
			UpdatedAt:     time.Now(),
		},
		Record: record,
	}
	recordData, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal run record for checksum: %w", err)
	}
	wrapper.Metadata.Checksum = j.calculateChecksum(recordData)
	data, err := json.MarshalIndent(wrapper, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record wrapper: %w", err)
	}
	// Write atomically using temp file
	tempFile := filename + ".tmp"
	if err := afero.WriteFile(j.fs, tempFile, data, JournalFilePermissions); err != nil {
		return fmt.Errorf("failed to write temp record file: %w", err)
	}
	if err := j.fs.Rename(tempFile, filename); err != nil {
		if removeErr := j.fs.Remove(tempFile); removeErr != nil {
			// Temp file cleanup is best effort
			fmt.Fprintf(os.Stderr, "warning: failed to remove temp file: %v\n", removeErr)
		}
		return fmt.Errorf("failed to rename record file: %w", err)
	}
	if err := j.updateLatestLink(filename); err != nil {
		return fmt.Errorf("failed to update latest link: %w", err)
	}
	return nil
}

// Load retrieves a specific run record by ID with validation
func (j *JSONRunJournal) Load(ctx context.Context, runID string) (*domain.RunRecord, error) {
	filename := j.recordFilename(runID)
	lock := flock.New(j.lockFilename(runID))
	if err := j.acquireLock(ctx, lock.TryRLock); err != nil {
		return nil, fmt.Errorf("failed to acquire shared journal lock: %w", err)
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			// Log error but don't fail the operation
			fmt.Fprintf(os.Stderr, "warning: failed to unlock journal: %v\n", unlockErr)
		}
	}()
	data, err := afero.ReadFile(j.fs, filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no run record found for %s", runID)
		}
		return nil, fmt.Errorf("failed to read record file: %w", err)
	}
	var wrapper RecordWrapper
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record wrapper: %w", err)
	}
	if wrapper.Metadata.SchemaVersion != JournalSchemaVersion {
		return nil, fmt.Errorf("incompatible journal schema version: expected %s, got %s",
			JournalSchemaVersion, wrapper.Metadata.SchemaVersion)
	}
	recordData, err := json.Marshal(wrapper.Record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record for checksum validation: %w", err)
	}
	if wrapper.Metadata.Checksum != j.calculateChecksum(recordData) {
		return nil, fmt.Errorf("run record checksum mismatch: data may be corrupted")
	}
	return wrapper.Record, nil
}

// LoadLatest retrieves the most recently saved run record
func (j *JSONRunJournal) LoadLatest(ctx context.Context) (*domain.RunRecord, error) {
	j.mu.RLock()
	data, err := afero.ReadFile(j.fs, j.latestLink())
	j.mu.RUnlock()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no runs recorded yet")
		}
		return nil, fmt.Errorf("failed to read latest link: %w", err)
	}
	runID := j.extractRunID(string(data))
	if runID == "" {
		return nil, fmt.Errorf("invalid latest link target: %s", string(data))
	}
	return j.Load(ctx, runID)
}

// Delete removes a run record
func (j *JSONRunJournal) Delete(ctx context.Context, runID string) error {
	filename := j.recordFilename(runID)
	lockFile := j.lockFilename(runID)
	lock := flock.New(lockFile)
	if err := j.acquireLock(ctx, lock.TryLock); err != nil {
		return fmt.Errorf("failed to acquire journal lock for deletion: %w", err)
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			// Log error but don't fail the operation
			fmt.Fprintf(os.Stderr, "warning: failed to unlock journal: %v\n", unlockErr)
		}
	}()
	if err := j.fs.Remove(filename); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete record file: %w", err)
	}
	if removeErr := j.fs.Remove(lockFile); removeErr != nil && !os.IsNotExist(removeErr) {
		// Lock file cleanup is best effort
		fmt.Fprintf(os.Stderr, "warning: failed to remove lock file: %v\n", removeErr)
	}
	return nil
}

// Exists checks if a run record exists
func (j *JSONRunJournal) Exists(_ context.Context, runID string) (bool, error) {
	_, err := j.fs.Stat(j.recordFilename(runID))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check record file: %w", err)
	}
	return true, nil
}

// acquireLock polls try with constant backoff until the lock is held, the
// timeout elapses, or the context is canceled.
func (j *JSONRunJournal) acquireLock(ctx context.Context, try func() (bool, error)) error {
	lockCtx, cancel := context.WithTimeout(ctx, LockTimeout)
	defer cancel()
	backoff := retry.NewConstant(LockRetryInterval)
	return retry.Do(lockCtx, backoff, func(_ context.Context) error {
		locked, err := try()
		if err != nil {
			return err
		}
		if !locked {
			return retry.RetryableError(errLockHeld)
		}
		return nil
	})
}

// calculateChecksum calculates SHA-256 checksum of data
func (j *JSONRunJournal) calculateChecksum(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// ensureJournalDir creates the journal directory if it doesn't exist
func (j *JSONRunJournal) ensureJournalDir() error {
	return j.fs.MkdirAll(j.journalDir, JournalDirPermissions)
}

// recordFilename returns the filename for a given run ID
func (j *JSONRunJournal) recordFilename(runID string) string {
	return filepath.Join(j.journalDir, fmt.Sprintf("run-%s.json", runID))
}

// lockFilename returns the lock filename for a given run ID
func (j *JSONRunJournal) lockFilename(runID string) string {
	return filepath.Join(j.journalDir, fmt.Sprintf(".run-%s.lock", runID))
}

// latestLink returns the path of the latest run pointer
func (j *JSONRunJournal) latestLink() string {
	return filepath.Join(j.journalDir, "latest.txt")
}

// updateLatestLink updates the pointer to the most recent run record
func (j *JSONRunJournal) updateLatestLink(target string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	link := j.latestLink()
	tempLink := link + ".tmp"
	if err := afero.WriteFile(j.fs, tempLink, []byte(target), JournalFilePermissions); err != nil {
		return fmt.Errorf("failed to write temp latest link: %w", err)
	}
	if err := j.fs.Rename(tempLink, link); err != nil {
		if removeErr := j.fs.Remove(tempLink); removeErr != nil {
			// Temp link cleanup is best effort
			fmt.Fprintf(os.Stderr, "warning: failed to remove temp link: %v\n", removeErr)
		}
		return fmt.Errorf("failed to update latest link: %w", err)
	}
	return nil
}

// extractRunID extracts the run ID from a record filename
func (j *JSONRunJournal) extractRunID(filename string) string {
	base := filepath.Base(filename)
	if len(base) > 9 && base[:4] == "run-" && base[len(base)-5:] == ".json" {
		return base[4 : len(base)-5]
	}
	return ""
}
