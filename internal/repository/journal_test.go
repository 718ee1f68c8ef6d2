package repository

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compozy/flowctl/internal/domain"
)

func newTestJournal(t *testing.T) (RunJournal, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "runs")
	return NewJSONRunJournal(afero.NewOsFs(), dir), dir
}

func TestJSONRunJournal_SaveAndLoad(t *testing.T) {
	t.Run("Should round-trip a run record with its steps", func(t *testing.T) {
		journal, _ := newTestJournal(t)
		record := domain.NewRunRecord("run-abc", "ship release")
		record.Branch = "release/v1.2.0"
		record.Version = "1.2.0"
		record.RecordStep("checked sync", "release/v1.2.0 up to date")
		record.RecordStep("merged", "into main")
		record.Complete()

		err := journal.Save(context.Background(), record)
		require.NoError(t, err)

		loaded, err := journal.Load(context.Background(), "run-abc")
		require.NoError(t, err)
		assert.Equal(t, "ship release", loaded.Operation)
		assert.Equal(t, "release/v1.2.0", loaded.Branch)
		assert.Equal(t, domain.RunStatusCompleted, loaded.Status)
		require.Len(t, loaded.Steps, 2)
		assert.Equal(t, "merged", loaded.Steps[1].Name)
	})

	t.Run("Should report a missing record", func(t *testing.T) {
		journal, _ := newTestJournal(t)
		_, err := journal.Load(context.Background(), "nope")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no run record found")
	})
}

func TestJSONRunJournal_LoadLatest(t *testing.T) {
	t.Run("Should follow the latest pointer to the newest run", func(t *testing.T) {
		journal, _ := newTestJournal(t)
		first := domain.NewRunRecord("run-1", "create branch")
		require.NoError(t, journal.Save(context.Background(), first))
		second := domain.NewRunRecord("run-2", "tag release candidate")
		require.NoError(t, journal.Save(context.Background(), second))

		latest, err := journal.LoadLatest(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "run-2", latest.RunID)
		assert.Equal(t, "tag release candidate", latest.Operation)
	})

	t.Run("Should report when nothing was recorded", func(t *testing.T) {
		journal, _ := newTestJournal(t)
		_, err := journal.LoadLatest(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no runs recorded")
	})
}

func TestJSONRunJournal_Integrity(t *testing.T) {
	t.Run("Should reject a tampered record", func(t *testing.T) {
		journal, dir := newTestJournal(t)
		record := domain.NewRunRecord("run-x", "ship release")
		require.NoError(t, journal.Save(context.Background(), record))

		fs := afero.NewOsFs()
		filename := filepath.Join(dir, "run-run-x.json")
		data, err := afero.ReadFile(fs, filename)
		require.NoError(t, err)
		tampered := strings.Replace(string(data), "ship release", "ship hotfix", 1)
		require.NoError(t, afero.WriteFile(fs, filename, []byte(tampered), JournalFilePermissions))

		_, err = journal.Load(context.Background(), "run-x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "checksum mismatch")
	})

	t.Run("Should reject an incompatible schema version", func(t *testing.T) {
		journal, dir := newTestJournal(t)
		record := domain.NewRunRecord("run-y", "create branch")
		require.NoError(t, journal.Save(context.Background(), record))

		fs := afero.NewOsFs()
		filename := filepath.Join(dir, "run-run-y.json")
		data, err := afero.ReadFile(fs, filename)
		require.NoError(t, err)
		tampered := strings.Replace(string(data), `"schema_version": "1.0.0"`, `"schema_version": "9.0.0"`, 1)
		require.NoError(t, afero.WriteFile(fs, filename, []byte(tampered), JournalFilePermissions))

		_, err = journal.Load(context.Background(), "run-y")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "incompatible journal schema version")
	})
}

func TestJSONRunJournal_DeleteAndExists(t *testing.T) {
	t.Run("Should delete a record and report absence", func(t *testing.T) {
		journal, _ := newTestJournal(t)
		record := domain.NewRunRecord("run-z", "delete branch")
		require.NoError(t, journal.Save(context.Background(), record))

		exists, err := journal.Exists(context.Background(), "run-z")
		require.NoError(t, err)
		assert.True(t, exists)

		require.NoError(t, journal.Delete(context.Background(), "run-z"))

		exists, err = journal.Exists(context.Background(), "run-z")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("Should tolerate deleting a record that never existed", func(t *testing.T) {
		journal, _ := newTestJournal(t)
		assert.NoError(t, journal.Delete(context.Background(), "ghost"))
	})
}
