package slicer

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"takeslice/internal/timestamp"
)

// JobState tracks a job through Pending -> Skipped, or Pending -> Dispatched
// -> Succeeded | Failed.
type JobState string

const (
	JobPending    JobState = "pending"
	JobSkipped    JobState = "skipped"
	JobDispatched JobState = "dispatched"
	JobSucceeded  JobState = "succeeded"
	JobFailed     JobState = "failed"
)

// Job extracts one take from one track.
type Job struct {
	SessionID  string
	ChunkID    string
	TakeIndex  int
	TrackIndex int
	Mark       string
	Input      string
	Start      timestamp.Timestamp
	End        timestamp.Timestamp
	Output     string
}

// JobResult is the final state of a job.
type JobResult struct {
	Job     Job
	State   JobState
	Err     error
	Elapsed time.Duration
}

// Report summarizes a slicing run.
type Report struct {
	Results   []JobResult
	Succeeded int
	Skipped   int
	Failed    int
	Elapsed   time.Duration
}

// Total returns the number of planned jobs.
func (r Report) Total() int {
	return len(r.Results)
}

// Err joins every job failure, or returns nil when all jobs succeeded or were skipped.
func (r Report) Err() error {
	var errs []error
	for _, res := range r.Results {
		if res.State == JobFailed && res.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", filepath.Base(res.Job.Output), res.Err))
		}
	}
	return errors.Join(errs...)
}

func (r *Report) tally() {
	r.Succeeded, r.Skipped, r.Failed = 0, 0, 0
	for _, res := range r.Results {
		switch res.State {
		case JobSucceeded:
			r.Succeeded++
		case JobSkipped:
			r.Skipped++
		case JobFailed:
			r.Failed++
		}
	}
}

var markReplacer = strings.NewReplacer("/", "_", "\\", "_", "\x00", "_")

// OutputName returns chunk-{chunk}-take-{take}-track-{track}-{mark}.{ext}.
func OutputName(chunkID string, takeIndex, trackIndex int, mark, ext string) string {
	name := fmt.Sprintf("chunk-%s-take-%d-track-%d-%s",
		markReplacer.Replace(chunkID), takeIndex, trackIndex, markReplacer.Replace(mark))
	if ext = strings.TrimPrefix(ext, "."); ext != "" {
		name += "." + ext
	}
	return name
}
