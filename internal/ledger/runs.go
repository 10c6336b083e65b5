package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrRunNotFound is returned when a run ID is unknown.
var ErrRunNotFound = errors.New("run not found")

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const runColumns = "id, status, output_dir, session_count, succeeded, skipped, failed, error_message, started_at, finished_at"

// BeginRun inserts a running run and returns it.
func (s *Store) BeginRun(ctx context.Context, outputDir string) (Run, error) {
	run := Run{
		ID:        uuid.NewString(),
		Status:    RunRunning,
		OutputDir: outputDir,
		StartedAt: time.Now().UTC(),
	}
	err := s.exec(ctx,
		`INSERT INTO runs (id, status, output_dir, started_at) VALUES (?, ?, ?, ?)`,
		run.ID, run.Status, run.OutputDir, run.StartedAt.Format(timeLayout))
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// FinishRun stores the final counts and status of run.
func (s *Store) FinishRun(ctx context.Context, run Run) error {
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now().UTC()
	}
	err := s.exec(ctx,
		`UPDATE runs SET status = ?, session_count = ?, succeeded = ?, skipped = ?, failed = ?,
            error_message = ?, finished_at = ? WHERE id = ?`,
		run.Status, run.SessionCount, run.Succeeded, run.Skipped, run.Failed,
		nullableString(run.ErrorMessage), run.FinishedAt.UTC().Format(timeLayout), run.ID)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	return nil
}

// RecordJobs stores job outcomes for a run in one transaction.
func (s *Store) RecordJobs(ctx context.Context, runID string, jobs []Job) error {
	if len(jobs) == 0 {
		return nil
	}
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin jobs tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO jobs (run_id, session_id, chunk_id, take_index, track_index, output, state, error_message, elapsed_ms)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare job insert: %w", err)
		}
		defer stmt.Close()

		for _, job := range jobs {
			if _, err := stmt.ExecContext(ctx, runID, job.SessionID, job.ChunkID, job.TakeIndex, job.TrackIndex,
				job.Output, job.State, nullableString(job.ErrorMessage), job.Elapsed.Milliseconds()); err != nil {
				return fmt.Errorf("insert job: %w", err)
			}
		}
		return tx.Commit()
	})
}

// GetRun fetches one run.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE id = ?", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

// ListRuns returns the most recent runs, newest first. limit <= 0 returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+runColumns+" FROM runs ORDER BY started_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Jobs returns the recorded jobs of a run in insertion order.
func (s *Store) Jobs(ctx context.Context, runID string) ([]Job, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, session_id, chunk_id, take_index, track_index, output, state, error_message, elapsed_ms
         FROM jobs WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		var (
			job       Job
			errMsg    sql.NullString
			elapsedMS int64
		)
		if err := rows.Scan(&job.RunID, &job.SessionID, &job.ChunkID, &job.TakeIndex, &job.TrackIndex,
			&job.Output, &job.State, &errMsg, &elapsedMS); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		job.ErrorMessage = errMsg.String
		job.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		run        Run
		status     string
		errMsg     sql.NullString
		startedRaw string
		finished   sql.NullString
	)
	if err := scanner.Scan(&run.ID, &status, &run.OutputDir, &run.SessionCount, &run.Succeeded,
		&run.Skipped, &run.Failed, &errMsg, &startedRaw, &finished); err != nil {
		return Run{}, err
	}
	run.Status = RunStatus(status)
	run.ErrorMessage = errMsg.String
	run.StartedAt = parseTime(startedRaw)
	if finished.Valid {
		run.FinishedAt = parseTime(finished.String)
	}
	return run, nil
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
