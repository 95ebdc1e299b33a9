package storage

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"floating-timer/internal/board"
	"floating-timer/internal/timer"
)

func TestMemoryStoreRepositoryContract(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	clock := steppingClock(time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC))
	store.now = clock

	runRepositoryContract(t, context.Background(), store)
}

func TestSQLiteStoreRepositoryContract(t *testing.T) {
	t.Parallel()

	h := newSQLiteTestHarness(t)
	h.Store.now = steppingClock(time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC))

	runRepositoryContract(t, h.Ctx, h.Store)
}

func runRepositoryContract(t *testing.T, ctx context.Context, repo Repository) {
	t.Helper()

	if err := repo.SaveTasks(ctx, []timer.Task{
		{ID: "a", Content: "alpha", TimeSpentMS: 100},
		{ID: "b", Content: "beta"},
	}); err != nil {
		t.Fatalf("SaveTasks: %v", err)
	}

	records, err := repo.ListTasks(ctx)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected two records, got %d", len(records))
	}
	byID := map[string]Record{}
	for _, record := range records {
		byID[record.Task.ID] = record
	}
	if byID["a"].Task.TimeSpentMS != 100 || byID["b"].Task.Content != "beta" {
		t.Fatalf("unexpected records: %#v", records)
	}
	firstUpdate := byID["b"].UpdatedAt

	if err := repo.SaveTasks(ctx, []timer.Task{
		{ID: "a", Content: "alpha", TimeSpentMS: 250},
		{ID: "b", Content: "beta"},
	}); err != nil {
		t.Fatalf("SaveTasks(second): %v", err)
	}
	records, err = repo.ListTasks(ctx)
	if err != nil {
		t.Fatalf("ListTasks(second): %v", err)
	}
	if records[0].Task.ID != "a" || records[0].Task.TimeSpentMS != 250 {
		t.Fatalf("expected changed task first with new duration, got %#v", records[0])
	}
	if !records[1].UpdatedAt.Equal(firstUpdate) {
		t.Fatalf("expected unchanged task to keep updated_at %v, got %v", firstUpdate, records[1].UpdatedAt)
	}

	if _, found, err := repo.ActiveTaskID(ctx); err != nil || found {
		t.Fatalf("expected no active task, got found=%v err=%v", found, err)
	}
	if err := repo.SetActiveTaskID(ctx, "missing"); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound for unknown active task, got %v", err)
	}
	if err := repo.SetActiveTaskID(ctx, "a"); err != nil {
		t.Fatalf("SetActiveTaskID: %v", err)
	}
	if id, found, err := repo.ActiveTaskID(ctx); err != nil || !found || id != "a" {
		t.Fatalf("expected active task a, got %q %v %v", id, found, err)
	}

	if err := repo.DeleteTask(ctx, "a"); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if _, found, err := repo.ActiveTaskID(ctx); err != nil || found {
		t.Fatalf("expected deleting active task to clear it, got found=%v err=%v", found, err)
	}
	if err := repo.DeleteTask(ctx, "a"); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound on second delete, got %v", err)
	}

	if err := repo.SetActiveTaskID(ctx, "b"); err != nil {
		t.Fatalf("SetActiveTaskID(b): %v", err)
	}
	if err := repo.SetActiveTaskID(ctx, ""); err != nil {
		t.Fatalf("SetActiveTaskID(clear): %v", err)
	}
	if _, found, _ := repo.ActiveTaskID(ctx); found {
		t.Fatalf("expected active task to be cleared")
	}
}

func TestMemoryStoreLayoutContract(t *testing.T) {
	t.Parallel()

	runLayoutContract(t, context.Background(), NewMemoryStore())
}

func TestSQLiteStoreLayoutContract(t *testing.T) {
	t.Parallel()

	h := newSQLiteTestHarness(t)
	runLayoutContract(t, h.Ctx, h.Store)
}

func runLayoutContract(t *testing.T, ctx context.Context, repo Repository) {
	t.Helper()

	if err := repo.SaveTasks(ctx, []timer.Task{
		{ID: "a", Content: "alpha"},
		{ID: "b", Content: "beta"},
		{ID: "c", Content: "gamma"},
	}); err != nil {
		t.Fatalf("SaveTasks: %v", err)
	}

	records, err := repo.ListTasks(ctx)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	for _, record := range records {
		if record.Column != board.ColumnQueue || record.Position != 0 {
			t.Fatalf("expected new task %q in queue at 0, got %s/%d", record.Task.ID, record.Column, record.Position)
		}
	}

	if err := repo.SaveLayout(ctx, []board.Placement{
		{TaskID: "a", Column: board.ColumnInProgress, Position: 0},
		{TaskID: "b", Column: board.ColumnDone, Position: 1},
		{TaskID: "c", Column: board.ColumnDone, Position: 0},
		{TaskID: "ghost", Column: board.ColumnReview, Position: 0},
	}); err != nil {
		t.Fatalf("SaveLayout: %v", err)
	}

	// A content change must not reset the placement.
	if err := repo.SaveTasks(ctx, []timer.Task{{ID: "b", Content: "beta v2", TimeSpentMS: 10}}); err != nil {
		t.Fatalf("SaveTasks(update): %v", err)
	}

	records, err = repo.ListTasks(ctx)
	if err != nil {
		t.Fatalf("ListTasks(after layout): %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected unknown placement to be skipped, got %#v", records)
	}
	placements := map[string]board.Placement{}
	for _, record := range records {
		placements[record.Task.ID] = record.Placement()
	}
	want := map[string]board.Placement{
		"a": {TaskID: "a", Column: board.ColumnInProgress, Position: 0},
		"b": {TaskID: "b", Column: board.ColumnDone, Position: 1},
		"c": {TaskID: "c", Column: board.ColumnDone, Position: 0},
	}
	for id, placement := range want {
		if placements[id] != placement {
			t.Fatalf("placement of %q = %#v, want %#v", id, placements[id], placement)
		}
	}
}

func TestSQLiteStoreMigratesLegacySchema(t *testing.T) {
	t.Parallel()

	dbPath := t.TempDir() + "/legacy.db"
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open legacy db: %v", err)
	}
	if _, err := db.Exec(`CREATE TABLE tasks (
		task_id TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		time_spent_ms INTEGER NOT NULL DEFAULT 0 CHECK (time_spent_ms >= 0),
		updated_at TEXT NOT NULL
	)`); err != nil {
		t.Fatalf("create legacy table: %v", err)
	}
	if _, err := db.Exec(
		`INSERT INTO tasks(task_id, content, time_spent_ms, updated_at) VALUES (?, ?, ?, ?)`,
		"old", "legacy", 42, formatTime(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
	); err != nil {
		t.Fatalf("insert legacy row: %v", err)
	}
	_ = db.Close()

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore(legacy): %v", err)
	}
	defer func() {
		_ = store.Close()
	}()

	records, err := store.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(records) != 1 || records[0].Column != board.ColumnQueue || records[0].Task.TimeSpentMS != 42 {
		t.Fatalf("expected legacy row in queue with its duration, got %#v", records)
	}
}

func TestSQLiteStoreRejectsNegativeDuration(t *testing.T) {
	t.Parallel()

	h := newSQLiteTestHarness(t)
	err := h.Store.SaveTasks(h.Ctx, []timer.Task{{ID: "neg", TimeSpentMS: -5}})
	if err == nil {
		t.Fatalf("expected check constraint to reject negative duration")
	}

	records, err := h.Store.ListTasks(h.Ctx)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected failed save to roll back, got %#v", records)
	}
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	dbPath := t.TempDir() + "/nested/state.db"
	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	ctx := context.Background()
	if err := store.SaveTasks(ctx, []timer.Task{{ID: "keep", Content: "survive", TimeSpentMS: 77}}); err != nil {
		t.Fatalf("SaveTasks: %v", err)
	}
	if err := store.SetActiveTaskID(ctx, "keep"); err != nil {
		t.Fatalf("SetActiveTaskID: %v", err)
	}
	_ = store.Close()

	reopened, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() {
		_ = reopened.Close()
	}()

	records, err := reopened.ListTasks(ctx)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(records) != 1 || records[0].Task.TimeSpentMS != 77 {
		t.Fatalf("unexpected records after reopen: %#v", records)
	}
	if id, found, _ := reopened.ActiveTaskID(ctx); !found || id != "keep" {
		t.Fatalf("expected active task to persist, got %q %v", id, found)
	}
}

func steppingClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}
