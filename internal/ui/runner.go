package ui

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"floating-timer/internal/board"
	"floating-timer/internal/timer"
)

type Backend interface {
	CreateTask(content string) (timer.Task, error)
	StartTimer(task timer.Task) (timer.Task, error)
	PauseTimer() (*timer.Task, error)
	GetCurrentTaskTime() (*timer.CurrentTime, error)
	GetAllTasks() ([]timer.Task, error)
	SelectTask(taskID string) (timer.Task, error)
	ResumeTimer() (timer.Task, error)
	RemoveTask(taskID string) (*timer.Task, error)
	MoveTask(taskID string, column board.Column) error
	Lanes() ([]board.Lane, error)
}

// OnChange runs after every command that may have changed task state.
type OnChange func() error

func LoadSnapshot(backend Backend) (Snapshot, error) {
	tasks, err := backend.GetAllTasks()
	if err != nil {
		return Snapshot{}, fmt.Errorf("list tasks: %w", err)
	}
	current, err := backend.GetCurrentTaskTime()
	if err != nil {
		return Snapshot{}, fmt.Errorf("read current task time: %w", err)
	}
	lanes, err := backend.Lanes()
	if err != nil {
		return Snapshot{}, fmt.Errorf("read board lanes: %w", err)
	}
	return Snapshot{Tasks: tasks, Lanes: lanes, Current: current}, nil
}

func RunInteractive(backend Backend, onChange OnChange, in io.Reader, out io.Writer) error {
	var model Model
	scanner := bufio.NewScanner(in)

	for {
		snapshot, err := LoadSnapshot(backend)
		if err != nil {
			return err
		}
		model = model.WithSnapshot(snapshot)

		if _, err := fmt.Fprint(out, model.View()); err != nil {
			return fmt.Errorf("write ui view: %w", err)
		}
		if _, err := fmt.Fprint(out, "\ncommand> "); err != nil {
			return fmt.Errorf("write ui prompt: %w", err)
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read ui command: %w", err)
			}
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		verb, arg, _ := strings.Cut(line, " ")
		verb = strings.ToLower(verb)
		arg = strings.TrimSpace(arg)

		model = model.WithNotice("")
		changed := false
		var cmdErr error

		switch verb {
		case "q", "quit", "exit":
			return nil
		case "expand", "list", "ls":
			model = model.Expand()
		case "collapse":
			model = model.Collapse()
		case "toggle":
			model = model.Toggle()
		case "add", "new":
			if arg == "" {
				cmdErr = fmt.Errorf("add needs task text")
				break
			}
			task, err := backend.CreateTask(arg)
			cmdErr = err
			changed = err == nil
			if err == nil {
				model = model.WithNotice("created " + task.ID)
			}
		case "start":
			task, err := resolveTask(model.Tasks(), arg)
			if err != nil {
				cmdErr = err
				break
			}
			// The listed record is as old as the last render; starting the
			// active task from it would overwrite the time flushed since.
			if current := model.current; current != nil && current.TaskID == task.ID {
				if current.Running {
					model = model.WithNotice("already running")
					break
				}
				_, cmdErr = backend.ResumeTimer()
				changed = cmdErr == nil
				break
			}
			_, cmdErr = backend.StartTimer(task)
			changed = cmdErr == nil
		case "pause", "stop":
			paused, err := backend.PauseTimer()
			cmdErr = err
			changed = err == nil
			if err == nil && paused == nil {
				model = model.WithNotice("nothing running")
			}
		case "select":
			task, err := resolveTask(model.Tasks(), arg)
			if err != nil {
				cmdErr = err
				break
			}
			_, cmdErr = backend.SelectTask(task.ID)
			changed = cmdErr == nil
		case "resume":
			_, cmdErr = backend.ResumeTimer()
			changed = cmdErr == nil
		case "move", "mv":
			ref, rawColumn, _ := strings.Cut(arg, " ")
			column, err := board.ParseColumn(strings.TrimSpace(rawColumn))
			if err != nil {
				cmdErr = err
				break
			}
			task, err := resolveTask(model.Tasks(), ref)
			if err != nil {
				cmdErr = err
				break
			}
			cmdErr = backend.MoveTask(task.ID, column)
			changed = cmdErr == nil
		case "rm", "remove":
			task, err := resolveTask(model.Tasks(), arg)
			if err != nil {
				cmdErr = err
				break
			}
			_, cmdErr = backend.RemoveTask(task.ID)
			changed = cmdErr == nil
		case "":
			// No-op; rerender.
		default:
			cmdErr = fmt.Errorf("unknown command: %s", verb)
		}

		if cmdErr != nil {
			model = model.WithNotice("error: " + cmdErr.Error())
			continue
		}
		if changed && onChange != nil {
			if err := onChange(); err != nil {
				model = model.WithNotice("error: " + err.Error())
			}
		}
	}
}

// resolveTask accepts a 1-based list position, a full id or a unique id
// prefix.
func resolveTask(tasks []timer.Task, ref string) (timer.Task, error) {
	if ref == "" {
		return timer.Task{}, fmt.Errorf("task reference is required")
	}

	if index, err := strconv.Atoi(ref); err == nil {
		if index < 1 || index > len(tasks) {
			return timer.Task{}, fmt.Errorf("no task at position %d", index)
		}
		return tasks[index-1], nil
	}

	var matches []timer.Task
	for _, task := range tasks {
		if task.ID == ref {
			return task, nil
		}
		if strings.HasPrefix(task.ID, ref) {
			matches = append(matches, task)
		}
	}
	switch len(matches) {
	case 0:
		return timer.Task{}, fmt.Errorf("no task matches %q", ref)
	case 1:
		return matches[0], nil
	default:
		return timer.Task{}, fmt.Errorf("%q matches %d tasks", ref, len(matches))
	}
}
