package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"floating-timer/internal/app"
	"floating-timer/internal/board"
	"floating-timer/internal/config"
	"floating-timer/internal/storage"
	"floating-timer/internal/timer"
	"floating-timer/internal/ui"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "ftimer error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return printUsage()
	}

	switch args[0] {
	case "task":
		return runTask(args[1:])
	case "ui":
		return runUI(args[1:])
	default:
		return printUsage()
	}
}

func runTask(args []string) error {
	if len(args) == 0 {
		return printUsage()
	}

	switch args[0] {
	case "add":
		return runTaskAdd(args[1:])
	case "list":
		return runTaskList(args[1:])
	case "remove":
		return runTaskRemove(args[1:])
	case "move":
		return runTaskMove(args[1:])
	default:
		return printUsage()
	}
}

type cliRuntime struct {
	ctx     context.Context
	store   *storage.SQLiteStore
	session *app.Session
}

func (r *cliRuntime) close() {
	_ = r.store.Close()
}

func openRuntime(dbPath string) (*cliRuntime, error) {
	cfg, err := config.NewEnvReader().Read()
	if err != nil {
		return nil, err
	}
	if dbPath == "" {
		dbPath = cfg.DBPath
	}
	if dbPath == "" {
		dbPath = defaultDBPath()
	}

	logger, err := app.NewLogger(cfg, os.Stderr)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite task store: %w", err)
	}

	session, err := app.NewSession(cfg, store, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	ctx := context.Background()
	if err := session.Hydrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("hydrate timer: %w", err)
	}

	return &cliRuntime{ctx: ctx, store: store, session: session}, nil
}

func runTaskAdd(args []string) error {
	fs := flag.NewFlagSet("task add", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	content := fs.String("content", "", "Task text")
	dbPath := fs.String("db", "", "Path to sqlite database")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*content) == "" {
		return fmt.Errorf("--content is required")
	}

	rt, err := openRuntime(*dbPath)
	if err != nil {
		return err
	}
	defer rt.close()

	task, err := rt.session.CreateTask(strings.TrimSpace(*content))
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	if err := rt.session.Persist(rt.ctx); err != nil {
		return fmt.Errorf("persist task: %w", err)
	}

	fmt.Printf("task_id=%s status=created\n", task.ID)
	return nil
}

type taskListRow struct {
	TaskID      string `json:"task_id"`
	Content     string `json:"content"`
	TimeSpentMS int64  `json:"time_spent_ms"`
	TimeSpent   string `json:"time_spent"`
	Column      string `json:"column"`
	UpdatedAt   string `json:"updated_at"`
	Active      bool   `json:"active"`
}

func runTaskList(args []string) error {
	fs := flag.NewFlagSet("task list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	dbPath := fs.String("db", "", "Path to sqlite database")
	asJSON := fs.Bool("json", false, "Print JSON output")

	if err := fs.Parse(args); err != nil {
		return err
	}

	rt, err := openRuntime(*dbPath)
	if err != nil {
		return err
	}
	defer rt.close()

	records, err := rt.store.ListTasks(rt.ctx)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}
	activeID := rt.session.Controller.State().TaskID

	rows := make([]taskListRow, 0, len(records))
	for _, record := range records {
		rows = append(rows, taskListRow{
			TaskID:      record.Task.ID,
			Content:     record.Task.Content,
			TimeSpentMS: record.Task.TimeSpentMS,
			TimeSpent:   timer.FormatDuration(record.Task.TimeSpent()),
			Column:      string(record.Column),
			UpdatedAt:   humanize.Time(record.UpdatedAt),
			Active:      record.Task.ID == activeID,
		})
	}

	if *asJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(rows)
	}

	if len(rows) == 0 {
		fmt.Println("no tasks")
		return nil
	}
	for _, row := range rows {
		fmt.Printf("task_id=%s time=%s column=%s active=%t updated=%q content=%q\n",
			row.TaskID,
			row.TimeSpent,
			row.Column,
			row.Active,
			row.UpdatedAt,
			row.Content,
		)
	}
	return nil
}

func runTaskRemove(args []string) error {
	fs := flag.NewFlagSet("task remove", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	taskID := fs.String("id", "", "Task id")
	dbPath := fs.String("db", "", "Path to sqlite database")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *taskID == "" {
		return fmt.Errorf("--id is required")
	}

	rt, err := openRuntime(*dbPath)
	if err != nil {
		return err
	}
	defer rt.close()

	removed, err := rt.session.RemoveTask(rt.ctx, *taskID)
	if err != nil {
		return fmt.Errorf("remove task: %w", err)
	}
	if removed == nil {
		return fmt.Errorf("no task with id %s", *taskID)
	}
	if err := rt.session.Persist(rt.ctx); err != nil {
		return fmt.Errorf("persist after remove: %w", err)
	}

	fmt.Printf("task_id=%s status=removed time=%s\n", removed.ID, timer.FormatDuration(removed.TimeSpent()))
	return nil
}

func runTaskMove(args []string) error {
	fs := flag.NewFlagSet("task move", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	taskID := fs.String("id", "", "Task id")
	rawColumn := fs.String("column", "", "Target column (queue, inProgress, review, done)")
	position := fs.Int("position", -1, "0-based position in the column; -1 appends")
	dbPath := fs.String("db", "", "Path to sqlite database")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *taskID == "" {
		return fmt.Errorf("--id is required")
	}
	column, err := board.ParseColumn(*rawColumn)
	if err != nil {
		return err
	}

	rt, err := openRuntime(*dbPath)
	if err != nil {
		return err
	}
	defer rt.close()

	if err := rt.session.MoveTask(*taskID, column, *position); err != nil {
		return fmt.Errorf("move task: %w", err)
	}
	if err := rt.session.Persist(rt.ctx); err != nil {
		return fmt.Errorf("persist after move: %w", err)
	}

	state := rt.session.Controller.State()
	fmt.Printf("task_id=%s status=moved column=%s timer=%s\n", *taskID, column, state.Kind)
	return nil
}

func runUI(args []string) error {
	fs := flag.NewFlagSet("ui", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	preview := fs.Bool("preview", false, "Render the expanded view once and exit")
	dbPath := fs.String("db", "", "Path to sqlite database")

	if err := fs.Parse(args); err != nil {
		return err
	}

	rt, err := openRuntime(*dbPath)
	if err != nil {
		return err
	}
	defer rt.close()

	backend := rt.session.Console(rt.ctx)

	if *preview {
		snapshot, err := ui.LoadSnapshot(backend)
		if err != nil {
			return err
		}
		fmt.Print(ui.NewModel(snapshot).Expand().View())
		return nil
	}

	persist := func() error {
		return rt.session.Persist(rt.ctx)
	}
	if err := ui.RunInteractive(backend, persist, os.Stdin, os.Stdout); err != nil {
		return err
	}
	return rt.session.Close(rt.ctx)
}

func defaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".ftimer/state.db"
	}
	return filepath.Join(dir, "ftimer", "state.db")
}

func printUsage() error {
	fmt.Println("ftimer usage:")
	fmt.Println("  ftimer task add --content \"text\" [--db path]")
	fmt.Println("  ftimer task list [--json] [--db path]")
	fmt.Println("  ftimer task remove --id task-id [--db path]")
	fmt.Println("  ftimer task move --id task-id --column queue|inProgress|review|done [--position n] [--db path]")
	fmt.Println("  ftimer ui [--preview] [--db path]")
	return nil
}
