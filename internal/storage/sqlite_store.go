package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"floating-timer/internal/board"
	"floating-timer/internal/timer"
)

const activeTaskKey = "active_task_id"

type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite parent dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	store, err := NewSQLiteStoreFromDB(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func NewSQLiteStoreFromDB(db *sql.DB) (*SQLiteStore, error) {
	store := &SQLiteStore{db: db, now: time.Now}
	if err := store.migrate(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS tasks (
			task_id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			time_spent_ms INTEGER NOT NULL DEFAULT 0 CHECK (time_spent_ms >= 0),
			column_name TEXT NOT NULL DEFAULT 'queue',
			position INTEGER NOT NULL DEFAULT 0,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
	}

	for _, statement := range statements {
		if _, err := s.db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("migrate sqlite schema: %w", err)
		}
	}

	// Databases created before the board existed lack the layout columns.
	layoutColumns := []struct {
		name       string
		definition string
	}{
		{name: "column_name", definition: `TEXT NOT NULL DEFAULT 'queue'`},
		{name: "position", definition: `INTEGER NOT NULL DEFAULT 0`},
	}
	for _, column := range layoutColumns {
		exists, err := s.hasColumn(ctx, "tasks", column.name)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		statement := fmt.Sprintf(`ALTER TABLE tasks ADD COLUMN %s %s`, column.name, column.definition)
		if _, err := s.db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("add tasks.%s: %w", column.name, err)
		}
	}

	return nil
}

func (s *SQLiteStore) hasColumn(ctx context.Context, table, column string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(1) FROM pragma_table_info(?) WHERE name = ?`,
		table,
		column,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("inspect %s schema: %w", table, err)
	}
	return count > 0, nil
}

// SaveTasks upserts every task; updated_at only moves for rows whose
// content or duration actually changed.
func (s *SQLiteStore) SaveTasks(ctx context.Context, tasks []timer.Task) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("start save tasks tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := formatTime(s.now())
	for _, task := range tasks {
		_, err := tx.ExecContext(
			ctx,
			`INSERT INTO tasks(task_id, content, time_spent_ms, updated_at)
			 VALUES (?, ?, ?, ?)
			 ON CONFLICT(task_id) DO UPDATE SET
			   content = excluded.content,
			   time_spent_ms = excluded.time_spent_ms,
			   updated_at = excluded.updated_at
			 WHERE tasks.content <> excluded.content
			    OR tasks.time_spent_ms <> excluded.time_spent_ms`,
			task.ID,
			task.Content,
			task.TimeSpentMS,
			now,
		)
		if err != nil {
			return fmt.Errorf("upsert task %q: %w", task.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save tasks tx: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteTask(ctx context.Context, taskID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("start delete task tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE task_id = ?`, taskID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task rows affected: %w", err)
	}
	if affected == 0 {
		return ErrTaskNotFound
	}

	if _, err := tx.ExecContext(
		ctx,
		`DELETE FROM settings WHERE key = ? AND value = ?`,
		activeTaskKey,
		taskID,
	); err != nil {
		return fmt.Errorf("clear active task: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete task tx: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SaveLayout(ctx context.Context, placements []board.Placement) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("start save layout tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, placement := range placements {
		if _, err := tx.ExecContext(
			ctx,
			`UPDATE tasks SET column_name = ?, position = ? WHERE task_id = ?`,
			string(placement.Column),
			placement.Position,
			placement.TaskID,
		); err != nil {
			return fmt.Errorf("place task %q: %w", placement.TaskID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save layout tx: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListTasks(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT task_id, content, time_spent_ms, column_name, position, updated_at
		 FROM tasks
		 ORDER BY updated_at DESC, task_id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]Record, 0)
	for rows.Next() {
		var (
			record       Record
			columnRaw    string
			updatedAtRaw string
		)
		if err := rows.Scan(
			&record.Task.ID,
			&record.Task.Content,
			&record.Task.TimeSpentMS,
			&columnRaw,
			&record.Position,
			&updatedAtRaw,
		); err != nil {
			return nil, fmt.Errorf("scan task row: %w", err)
		}

		updatedAt, err := time.Parse(time.RFC3339Nano, updatedAtRaw)
		if err != nil {
			return nil, fmt.Errorf("parse task updated_at: %w", err)
		}
		record.UpdatedAt = updatedAt
		record.Column = board.Column(columnRaw)

		result = append(result, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate task rows: %w", err)
	}
	return result, nil
}

func (s *SQLiteStore) ActiveTaskID(ctx context.Context) (string, bool, error) {
	var taskID string
	err := s.db.QueryRowContext(
		ctx,
		`SELECT value FROM settings WHERE key = ?`,
		activeTaskKey,
	).Scan(&taskID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query active task: %w", err)
	}
	return taskID, taskID != "", nil
}

func (s *SQLiteStore) SetActiveTaskID(ctx context.Context, taskID string) error {
	if taskID == "" {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, activeTaskKey); err != nil {
			return fmt.Errorf("clear active task: %w", err)
		}
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("start active task tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var taskExists int
	row := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM tasks WHERE task_id = ?`, taskID)
	if err := row.Scan(&taskExists); err != nil {
		return fmt.Errorf("verify active task: %w", err)
	}
	if taskExists == 0 {
		return ErrTaskNotFound
	}

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO settings(key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		activeTaskKey,
		taskID,
	); err != nil {
		return fmt.Errorf("upsert active task: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit active task tx: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
