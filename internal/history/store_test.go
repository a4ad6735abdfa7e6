package history_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"tvcatalog/internal/history"
)

func openStore(t *testing.T) (*history.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state", "history.db")
	store, err := history.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func TestBeginFinishRoundTrip(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()
	started := time.Date(2024, 5, 10, 6, 0, 0, 0, time.UTC)

	if err := store.Begin(ctx, "run-1", "2024-05-10", started); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	run, err := store.Get(ctx, "run-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if run.Status != history.StatusRunning || run.FinishedAt != nil || run.Duration() != 0 {
		t.Fatalf("unexpected running row %+v", run)
	}

	err = store.Finish(ctx, "run-1", history.Outcome{
		FinishedAt:  started.Add(90 * time.Second),
		Status:      history.StatusSucceeded,
		Shows:       12,
		Episodes:    40,
		Excluded:    3,
		Requests:    55,
		RateLimited: 2,
		Failures:    1,
	})
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	run, err = store.Get(ctx, "run-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if run.Status != history.StatusSucceeded || run.Shows != 12 || run.Episodes != 40 || run.Excluded != 3 {
		t.Fatalf("unexpected finished row %+v", run)
	}
	if run.Requests != 55 || run.RateLimited != 2 || run.Failures != 1 || run.Error != "" {
		t.Fatalf("unexpected counters %+v", run)
	}
	if run.Duration() != 90*time.Second {
		t.Fatalf("unexpected duration %v", run.Duration())
	}
}

func TestFinishUnknownRun(t *testing.T) {
	store, _ := openStore(t)
	err := store.Finish(context.Background(), "missing", history.Outcome{Status: history.StatusFailed, Error: "boom"})
	if !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.Get(context.Background(), "missing"); !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("expected ErrNotFound from Get, got %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		if err := store.Begin(ctx, id, "2024-05-01", base.Add(time.Duration(i)*time.Hour)); err != nil {
			t.Fatalf("Begin %s: %v", id, err)
		}
	}
	if err := store.Finish(ctx, "b", history.Outcome{Status: history.StatusFailed, Error: "output locked"}); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	runs, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 || runs[0].RunID != "c" || runs[1].RunID != "b" {
		t.Fatalf("unexpected runs %+v", runs)
	}
	if runs[1].Status != history.StatusFailed || runs[1].Error != "output locked" {
		t.Fatalf("unexpected failed run %+v", runs[1])
	}
}

func TestReopenKeepsRows(t *testing.T) {
	store, path := openStore(t)
	ctx := context.Background()
	if err := store.Begin(ctx, "keep", "2024-05-01", time.Now()); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	_ = store.Close()

	reopened, err := history.Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.Get(ctx, "keep"); err != nil {
		t.Fatalf("expected row after reopen: %v", err)
	}
}

func TestSchemaMismatch(t *testing.T) {
	store, path := openStore(t)
	_ = store.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatal(err)
	}
	_ = db.Close()

	if _, err := history.Open(context.Background(), path); !errors.Is(err, history.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}
