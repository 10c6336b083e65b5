package pipeline

import (
	"errors"
	"fmt"

	"takeslice/internal/slicer"
)

// Stages reported in Issue.
const (
	StageLoad = "load"
	StageSync = "sync"
)

// Issue is a per-session problem that did not abort the run.
type Issue struct {
	SessionID string
	Stage     string
	Err       error
}

// Summary describes a finished run.
type Summary struct {
	RunID          string
	Sessions       int
	VideosAttached int
	CacheSaved     bool
	Issues         []Issue
	Report         slicer.Report
}

// Failed reports whether any session or job failed.
func (s Summary) Failed() bool {
	return len(s.Issues) > 0 || s.Report.Failed > 0
}

// Err joins every session issue and job failure.
func (s Summary) Err() error {
	errs := make([]error, 0, len(s.Issues)+1)
	for _, issue := range s.Issues {
		errs = append(errs, fmt.Errorf("session %s (%s): %w", issue.SessionID, issue.Stage, issue.Err))
	}
	if err := s.Report.Err(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Describe returns a one-line human summary.
func (s Summary) Describe() string {
	return fmt.Sprintf("%d sessions, %d videos attached: %d extracted, %d skipped, %d failed, %d session issues",
		s.Sessions, s.VideosAttached, s.Report.Succeeded, s.Report.Skipped, s.Report.Failed, len(s.Issues))
}
