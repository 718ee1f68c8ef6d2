package domain

// SyncStatus classifies a local branch tip against its remote counterpart.
// It is computed immediately before every mutating operation and never
// cached across steps.
type SyncStatus string

const (
	SyncUpToDate SyncStatus = "up-to-date"
	SyncBehind   SyncStatus = "behind"
	SyncAhead    SyncStatus = "ahead"
	SyncDiverged SyncStatus = "diverged"
	SyncNoRemote SyncStatus = "no-remote"
)

// SyncReport is the result of one synchronization check.
type SyncReport struct {
	Branch    string
	RemoteRef string
	Status    SyncStatus
	Ahead     int // commits only on the local tip
	Behind    int // commits only on the remote tip
}

// InSync reports whether the branch can be mutated without first
// reconciling with its remote.
func (r SyncReport) InSync() bool {
	return r.Status == SyncUpToDate
}
