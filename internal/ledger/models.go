package ledger

import "time"

// RunStatus is the lifecycle state of a run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	// RunPartial means at least one job failed.
	RunPartial RunStatus = "partial"
	RunAborted RunStatus = "aborted"
)

// Run is one invocation of the slicing pipeline.
type Run struct {
	ID           string
	Status       RunStatus
	OutputDir    string
	SessionCount int
	Succeeded    int
	Skipped      int
	Failed       int
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Job is the recorded outcome of one extraction.
type Job struct {
	RunID        string
	SessionID    string
	ChunkID      string
	TakeIndex    int
	TrackIndex   int
	Output       string
	State        string
	ErrorMessage string
	Elapsed      time.Duration
}
