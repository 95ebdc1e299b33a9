package app

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"floating-timer/internal/timer"
)

var ErrInternal = errors.New("internal timer error")

// Commands is the call-in/result-out surface used by front ends. Absence is
// reported as a nil pointer, never as an error; errors carry a readable
// message only.
type Commands struct {
	controller *timer.Controller
	gateway    *timer.Gateway
	logger     zerolog.Logger
}

func NewCommands(controller *timer.Controller, gateway *timer.Gateway, logger zerolog.Logger) *Commands {
	return &Commands{
		controller: controller,
		gateway:    gateway,
		logger:     logger,
	}
}

func (c *Commands) StartTimer(task timer.Task) (started timer.Task, err error) {
	defer c.guard("start_timer", &err)

	started, err = c.controller.Start(task)
	if err != nil {
		return timer.Task{}, fmt.Errorf("start timer: %w", err)
	}
	return started, nil
}

func (c *Commands) PauseTimer() (paused *timer.Task, err error) {
	defer c.guard("pause_timer", &err)

	task, ok := c.controller.Pause()
	if !ok {
		return nil, nil
	}
	return &task, nil
}

func (c *Commands) GetCurrentTaskTime() (current *timer.CurrentTime, err error) {
	defer c.guard("get_current_task_time", &err)

	value, ok := c.controller.Current()
	if !ok {
		return nil, nil
	}
	return &value, nil
}

func (c *Commands) CreateTask(content string) (task timer.Task, err error) {
	defer c.guard("create_task", &err)

	task = c.gateway.Create(content)
	c.logger.Debug().
		Str("task_id", task.ID).
		Msg("created task")
	return task, nil
}

func (c *Commands) GetAllTasks() (tasks []timer.Task, err error) {
	defer c.guard("get_all_tasks", &err)

	return c.gateway.List(), nil
}

func (c *Commands) SyncTask(task timer.Task) (err error) {
	defer c.guard("sync_task", &err)

	if err := c.gateway.Sync(task); err != nil {
		return fmt.Errorf("sync task: %w", err)
	}
	return nil
}

func (c *Commands) SelectTask(taskID string) (task timer.Task, err error) {
	defer c.guard("select_task", &err)

	task, err = c.controller.Select(taskID)
	if err != nil {
		return timer.Task{}, fmt.Errorf("select task: %w", err)
	}
	return task, nil
}

func (c *Commands) ResumeTimer() (task timer.Task, err error) {
	defer c.guard("resume_timer", &err)

	task, err = c.controller.Resume()
	if err != nil {
		return timer.Task{}, fmt.Errorf("resume timer: %w", err)
	}
	return task, nil
}

// ClearTimer drops the selection. The returned task is the flushed running
// segment, if there was one.
func (c *Commands) ClearTimer() (flushed *timer.Task, err error) {
	defer c.guard("clear_timer", &err)

	task, ok := c.controller.Clear()
	if !ok {
		return nil, nil
	}
	return &task, nil
}

func (c *Commands) RemoveTask(taskID string) (removed *timer.Task, err error) {
	defer c.guard("remove_task", &err)

	task, ok := c.controller.Remove(taskID)
	if !ok {
		return nil, nil
	}
	return &task, nil
}

func (c *Commands) TimerState() (state timer.State, err error) {
	defer c.guard("timer_state", &err)

	return c.controller.State(), nil
}

// guard turns a panic inside a command into ErrInternal. Every lock in the
// core is released by defer, so the next call proceeds normally.
func (c *Commands) guard(command string, err *error) {
	recovered := recover()
	if recovered == nil {
		return
	}

	c.logger.Error().
		Str("command", command).
		Interface("panic", recovered).
		Msg("recovered panic in command")
	*err = fmt.Errorf("%s: %w: %v", command, ErrInternal, recovered)
}
