package ledger_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"takeslice/internal/ledger"
)

func openStore(t *testing.T) *ledger.Store {
	t.Helper()
	store, err := ledger.Open(filepath.Join(t.TempDir(), "nested", "ledger.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRunLifecycle(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	run, err := store.BeginRun(ctx, "/out")
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if run.ID == "" || run.Status != ledger.RunRunning {
		t.Fatalf("unexpected run %+v", run)
	}

	jobs := []ledger.Job{
		{SessionID: "S1", ChunkID: "3", TakeIndex: 0, TrackIndex: 0, Output: "/out/a.wav", State: "succeeded", Elapsed: 1500 * time.Millisecond},
		{SessionID: "S1", ChunkID: "3", TakeIndex: 0, TrackIndex: 1, Output: "/out/a.mp4", State: "failed", ErrorMessage: "exit status 1"},
	}
	if err := store.RecordJobs(ctx, run.ID, jobs); err != nil {
		t.Fatalf("RecordJobs: %v", err)
	}

	run.Status = ledger.RunPartial
	run.SessionCount = 1
	run.Succeeded = 1
	run.Failed = 1
	if err := store.FinishRun(ctx, run); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	got, err := store.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Status != ledger.RunPartial || got.Succeeded != 1 || got.Failed != 1 || got.FinishedAt.IsZero() {
		t.Fatalf("unexpected stored run %+v", got)
	}
	if got.ErrorMessage != "" {
		t.Fatalf("expected empty error message, got %q", got.ErrorMessage)
	}

	stored, err := store.Jobs(ctx, run.ID)
	if err != nil {
		t.Fatalf("Jobs: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(stored))
	}
	if stored[0].Elapsed != 1500*time.Millisecond || stored[1].ErrorMessage != "exit status 1" || stored[1].TrackIndex != 1 {
		t.Fatalf("unexpected jobs %+v", stored)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	var ids []string
	for range 3 {
		run, err := store.BeginRun(ctx, "/out")
		if err != nil {
			t.Fatalf("BeginRun: %v", err)
		}
		ids = append(ids, run.ID)
		time.Sleep(2 * time.Millisecond)
	}

	runs, err := store.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != ids[2] || runs[1].ID != ids[1] {
		t.Fatalf("unexpected order: %+v", runs)
	}
	all, err := store.ListRuns(ctx, 0)
	if err != nil || len(all) != 3 {
		t.Fatalf("ListRuns(0) = %d runs, %v", len(all), err)
	}
}

func TestGetRunNotFound(t *testing.T) {
	store := openStore(t)
	if _, err := store.GetRun(context.Background(), "missing"); !errors.Is(err, ledger.ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestReopenKeepsHistory(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.db")
	store, err := ledger.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	run, err := store.BeginRun(ctx, "/out")
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	store.Close()

	reopened, err := ledger.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.GetRun(ctx, run.ID); err != nil {
		t.Fatalf("run lost after reopen: %v", err)
	}
}

func TestOpenRejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	store, err := ledger.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	store.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := db.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatalf("set version: %v", err)
	}
	db.Close()

	if _, err := ledger.Open(path); !errors.Is(err, ledger.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}
