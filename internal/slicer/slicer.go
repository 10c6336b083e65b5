package slicer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"takeslice/internal/encoder"
	"takeslice/internal/logging"
	"takeslice/internal/services"
)

// Option configures a Slicer.
type Option func(*Slicer)

// WithWorkers bounds concurrent encoder processes. Values below one select
// runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(s *Slicer) {
		s.workers = n
	}
}

// WithObserver registers a callback invoked once per finished job. It is
// called from worker goroutines and must be safe for concurrent use.
func WithObserver(fn func(JobResult)) Option {
	return func(s *Slicer) {
		s.observer = fn
	}
}

// Slicer is an immutable snapshot of registered sessions.
type Slicer struct {
	entries   []entry
	extractor encoder.Extractor
	workers   int
	observer  func(JobResult)
	logger    *slog.Logger
}

// SessionCount returns the number of sessions in the snapshot.
func (s *Slicer) SessionCount() int {
	return len(s.entries)
}

// Plan returns every (take, track) job with outputs under outputDir, in
// session registration order, then take order, then track order.
func (s *Slicer) Plan(outputDir string) ([]Job, error) {
	var jobs []Job
	for _, e := range s.entries {
		for takeIndex, take := range e.takes {
			for trackIndex, track := range e.session.Tracks {
				start, err := take.Start.CheckedAdd(track.SyncOffset)
				if err != nil {
					return nil, fmt.Errorf("session %s take %d track %d: %w", e.session.ID, takeIndex, trackIndex, err)
				}
				end, err := take.End.CheckedAdd(track.SyncOffset)
				if err != nil {
					return nil, fmt.Errorf("session %s take %d track %d: %w", e.session.ID, takeIndex, trackIndex, err)
				}
				jobs = append(jobs, Job{
					SessionID:  e.session.ID,
					ChunkID:    take.ChunkID,
					TakeIndex:  takeIndex,
					TrackIndex: trackIndex,
					Mark:       take.Mark,
					Input:      track.File,
					Start:      start,
					End:        end,
					Output:     filepath.Join(outputDir, OutputName(take.ChunkID, takeIndex, trackIndex, take.Mark, track.Ext())),
				})
			}
		}
	}
	return jobs, nil
}

// PerformSlicing runs every planned job. The returned error is non-nil only
// when slicing could not start or the context was cancelled; individual job
// failures are reported in the Report.
func (s *Slicer) PerformSlicing(ctx context.Context, outputDir string) (Report, error) {
	started := time.Now()
	if s.extractor == nil {
		return Report{}, services.Wrap(services.ErrConfiguration, "slice", "setup", "no extractor configured", nil)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return Report{}, services.Wrap(services.ErrConfiguration, "slice", "create output directory", outputDir, err)
	}
	jobs, err := s.Plan(outputDir)
	if err != nil {
		return Report{}, services.Wrap(services.ErrValidation, "slice", "plan", "", err)
	}

	workers := s.workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	s.logger.Info("slicing started",
		logging.Int("job_count", len(jobs)),
		logging.Int("workers", workers),
		logging.String("output_dir", outputDir))

	report := Report{Results: make([]JobResult, len(jobs))}
	var g errgroup.Group
	g.SetLimit(workers)

	claimed := make(map[string]string, len(jobs))
	for i, job := range jobs {
		report.Results[i] = JobResult{Job: job, State: JobPending}
		if owner, taken := claimed[job.Output]; taken {
			report.Results[i].State = JobFailed
			report.Results[i].Err = fmt.Errorf("%w: %s is written by session %s and session %s",
				ErrOutputConflict, filepath.Base(job.Output), owner, job.SessionID)
			logging.WarnWithContext(s.logger, "output name collides with another session", "output_conflict",
				logging.String(logging.FieldSessionID, job.SessionID),
				logging.String("output", filepath.Base(job.Output)),
				logging.String("claimed_by", owner),
				logging.String(logging.FieldImpact, "take not extracted"),
				logging.String(logging.FieldErrorHint, "give the colliding takes distinct chunk ids or marks, or slice the sessions into separate output directories"))
			s.notify(report.Results[i])
			continue
		}
		claimed[job.Output] = job.SessionID
		if err := ctx.Err(); err != nil {
			report.Results[i].State = JobFailed
			report.Results[i].Err = err
			continue
		}
		if _, err := os.Stat(job.Output); err == nil {
			report.Results[i].State = JobSkipped
			logging.WarnWithContext(s.logger, "output exists; skipping", "output_exists",
				logging.String(logging.FieldSessionID, job.SessionID),
				logging.String("output", filepath.Base(job.Output)),
				logging.String(logging.FieldImpact, "existing clip kept"),
				logging.String(logging.FieldErrorHint, "delete the file to extract it again"))
			s.notify(report.Results[i])
			continue
		} else if !errors.Is(err, fs.ErrNotExist) {
			report.Results[i].State = JobFailed
			report.Results[i].Err = fmt.Errorf("stat output: %w", err)
			s.notify(report.Results[i])
			continue
		}

		report.Results[i].State = JobDispatched
		g.Go(func() error {
			report.Results[i] = s.run(ctx, job)
			return nil
		})
	}
	_ = g.Wait()

	report.tally()
	report.Elapsed = time.Since(started)
	s.logger.Info("slicing finished",
		logging.Int("succeeded", report.Succeeded),
		logging.Int("skipped", report.Skipped),
		logging.Int("failed", report.Failed),
		logging.Duration("elapsed", report.Elapsed))

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

func (s *Slicer) run(ctx context.Context, job Job) JobResult {
	started := time.Now()
	err := s.extractor.Extract(ctx, encoderRequest(job))
	result := JobResult{Job: job, State: JobSucceeded, Elapsed: time.Since(started)}
	logger := s.logger.With(
		logging.String(logging.FieldSessionID, job.SessionID),
		logging.String("output", filepath.Base(job.Output)))
	if err != nil {
		result.State = JobFailed
		result.Err = err
		logging.ErrorWithContext(logger, "extraction failed", "job_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "inspect the ffmpeg output above; re-run to retry failed jobs"))
	} else {
		logger.Info("take extracted", logging.Duration("elapsed", result.Elapsed))
	}
	s.notify(result)
	return result
}

func (s *Slicer) notify(result JobResult) {
	if s.observer != nil {
		s.observer(result)
	}
}

func encoderRequest(job Job) encoder.Request {
	return encoder.Request{
		Input:  job.Input,
		Start:  job.Start,
		End:    job.End,
		Output: job.Output,
	}
}
