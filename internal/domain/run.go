package domain

import (
	"time"
)

// RunStatus represents the overall status of a recorded workflow run.
type RunStatus string

const (
	RunStatusRunning    RunStatus = "running"
	RunStatusCompleted  RunStatus = "completed"
	RunStatusFailed     RunStatus = "failed"
	RunStatusCancelled  RunStatus = "cancelled"
	RunStatusRolledBack RunStatus = "rolled_back"
)

// RunStep records one completed step of a workflow run.
type RunStep struct {
	Name       string    `json:"name"`
	Detail     string    `json:"detail,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}

// RunRecord captures a single workflow run for later inspection. Records
// are append-only audit entries, not rollback drivers.
type RunRecord struct {
	RunID        string    `json:"run_id"`
	Operation    string    `json:"operation"`
	Branch       string    `json:"branch,omitempty"`
	Version      string    `json:"version,omitempty"`
	OriginBranch string    `json:"origin_branch,omitempty"`
	Status       RunStatus `json:"status"`
	StartedAt    time.Time `json:"started_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Steps        []RunStep `json:"steps"`
	Error        string    `json:"error,omitempty"`
}

// NewRunRecord creates a running record for the given operation.
func NewRunRecord(runID, operation string) *RunRecord {
	now := time.Now()
	return &RunRecord{
		RunID:     runID,
		Operation: operation,
		Status:    RunStatusRunning,
		StartedAt: now,
		UpdatedAt: now,
		Steps:     []RunStep{},
	}
}

// RecordStep appends a completed step to the run.
func (r *RunRecord) RecordStep(name, detail string) {
	now := time.Now()
	r.Steps = append(r.Steps, RunStep{
		Name:       name,
		Detail:     detail,
		FinishedAt: now,
	})
	r.UpdatedAt = now
}

// LastStep returns the most recent step, or nil when none was recorded.
func (r *RunRecord) LastStep() *RunStep {
	if len(r.Steps) == 0 {
		return nil
	}
	return &r.Steps[len(r.Steps)-1]
}

// Complete marks the run as successfully finished.
func (r *RunRecord) Complete() {
	r.Status = RunStatusCompleted
	r.UpdatedAt = time.Now()
}

// Fail marks the run as failed with the given error.
func (r *RunRecord) Fail(err error) {
	r.Status = RunStatusFailed
	if err != nil {
		r.Error = err.Error()
	}
	r.UpdatedAt = time.Now()
}

// Cancel marks the run as abandoned by the user before completion.
func (r *RunRecord) Cancel() {
	r.Status = RunStatusCancelled
	r.UpdatedAt = time.Now()
}

// MarkRolledBack marks the run as undone after the given failure.
func (r *RunRecord) MarkRolledBack(err error) {
	r.Status = RunStatusRolledBack
	if err != nil {
		r.Error = err.Error()
	}
	r.UpdatedAt = time.Now()
}
