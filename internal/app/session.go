package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"floating-timer/internal/board"
	"floating-timer/internal/config"
	"floating-timer/internal/storage"
	"floating-timer/internal/timer"
)

// Session wires the timer core to a durable repository. It is the only
// place that moves records between the two.
type Session struct {
	Controller *timer.Controller
	Gateway    *timer.Gateway
	Commands   *Commands

	repo   storage.Repository
	layout *board.Board
	logger zerolog.Logger
}

func NewSession(cfg *config.Config, repo storage.Repository, logger zerolog.Logger, opts ...timer.Option) (*Session, error) {
	policy, err := timer.ParseBaselinePolicy(cfg.BaselinePolicy)
	if err != nil {
		return nil, err
	}

	store := timer.NewShardedStore(cfg.StoreShards)
	opts = append([]timer.Option{
		timer.WithLogger(logger),
		timer.WithBaselinePolicy(policy),
	}, opts...)

	controller := timer.NewController(store, opts...)
	gateway := timer.NewGateway(store)

	return &Session{
		Controller: controller,
		Gateway:    gateway,
		Commands:   NewCommands(controller, gateway, logger),
		repo:       repo,
		layout:     board.New(),
		logger:     logger,
	}, nil
}

// Hydrate loads every durable record into the core and restores the last
// active task as a paused selection.
func (s *Session) Hydrate(ctx context.Context) error {
	records, err := s.repo.ListTasks(ctx)
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}
	placements := make([]board.Placement, 0, len(records))
	for _, record := range records {
		if err := s.Gateway.Sync(record.Task); err != nil {
			return fmt.Errorf("hydrate task %q: %w", record.Task.ID, err)
		}
		placements = append(placements, record.Placement())
	}
	s.layout.Replace(placements)

	activeID, found, err := s.repo.ActiveTaskID(ctx)
	if err != nil {
		return fmt.Errorf("load active task: %w", err)
	}
	if found {
		if _, err := s.Controller.Select(activeID); err != nil {
			if !errors.Is(err, timer.ErrTaskNotFound) {
				return err
			}
			s.logger.Warn().
				Str("task_id", activeID).
				Msg("stored active task no longer exists")
			if err := s.repo.SetActiveTaskID(ctx, ""); err != nil {
				return fmt.Errorf("clear stale active task: %w", err)
			}
		}
	}

	s.logger.Info().
		Int("count", len(records)).
		Str("active_task_id", activeID).
		Msg("hydrated timer")
	return nil
}

// Persist writes the cached records and the current selection back.
func (s *Session) Persist(ctx context.Context) error {
	tasks := s.Gateway.List()
	if err := s.repo.SaveTasks(ctx, tasks); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	s.reconcileBoard(tasks)
	if err := s.repo.SaveLayout(ctx, s.layout.Placements()); err != nil {
		return fmt.Errorf("save board layout: %w", err)
	}

	state := s.Controller.State()
	if err := s.repo.SetActiveTaskID(ctx, state.TaskID); err != nil {
		if !errors.Is(err, storage.ErrTaskNotFound) {
			return fmt.Errorf("save active task: %w", err)
		}
		s.logger.Warn().
			Str("task_id", state.TaskID).
			Msg("active task removed before persist")
	}

	s.logger.Debug().
		Int("count", len(tasks)).
		Msg("persisted timer")
	return nil
}

// CreateTask adds a task to the core and to the top of the queue column.
func (s *Session) CreateTask(content string) (timer.Task, error) {
	task, err := s.Commands.CreateTask(content)
	if err != nil {
		return timer.Task{}, err
	}
	s.layout.Add(task.ID)
	return task, nil
}

// MoveTask places a task in column at index (negative appends). Moving a
// task into the in-progress column selects it; moving the selected task
// out of that column clears the selection. Both flush a running segment.
func (s *Session) MoveTask(taskID string, column board.Column, index int) error {
	s.reconcileBoard(s.Gateway.List())
	if _, found := s.layout.ColumnOf(taskID); !found {
		return fmt.Errorf("move task %q: %w", taskID, timer.ErrTaskNotFound)
	}

	from, err := s.layout.Move(taskID, column, index)
	if err != nil {
		return fmt.Errorf("move task %q: %w", taskID, err)
	}

	state, err := s.Commands.TimerState()
	if err != nil {
		return err
	}
	switch {
	case column == board.ColumnInProgress && state.TaskID != taskID:
		if _, err := s.Commands.SelectTask(taskID); err != nil {
			return err
		}
	case from == board.ColumnInProgress && column != board.ColumnInProgress && state.TaskID == taskID:
		if _, err := s.Commands.ClearTimer(); err != nil {
			return err
		}
	}

	s.logger.Debug().
		Str("task_id", taskID).
		Str("from", string(from)).
		Str("to", string(column)).
		Msg("moved task")
	return nil
}

func (s *Session) Lanes() []board.Lane {
	s.reconcileBoard(s.Gateway.List())
	return s.layout.Lanes()
}

// reconcileBoard puts tasks the board has not seen at the top of the queue
// and drops ids the core no longer holds.
func (s *Session) reconcileBoard(tasks []timer.Task) {
	known := make(map[string]struct{}, len(tasks))
	for _, task := range tasks {
		known[task.ID] = struct{}{}
		s.layout.Add(task.ID)
	}
	for _, placement := range s.layout.Placements() {
		if _, ok := known[placement.TaskID]; !ok {
			s.layout.Remove(placement.TaskID)
		}
	}
}

// RemoveTask drops a task from the core, the board and durable storage.
func (s *Session) RemoveTask(ctx context.Context, taskID string) (*timer.Task, error) {
	removed, err := s.Commands.RemoveTask(taskID)
	if err != nil {
		return nil, err
	}
	s.layout.Remove(taskID)
	if err := s.repo.DeleteTask(ctx, taskID); err != nil && !errors.Is(err, storage.ErrTaskNotFound) {
		return removed, fmt.Errorf("delete stored task: %w", err)
	}
	return removed, nil
}

// Close flushes a running segment and persists the result.
func (s *Session) Close(ctx context.Context) error {
	if _, err := s.Commands.PauseTimer(); err != nil {
		return err
	}
	return s.Persist(ctx)
}

// Console binds the session to ctx for front ends whose calls carry no
// context. Task creation, removal and moves go through the session so the
// board and durable storage stay in step with the core.
type Console struct {
	*Commands
	session *Session
	ctx     context.Context
}

func (s *Session) Console(ctx context.Context) Console {
	return Console{Commands: s.Commands, session: s, ctx: ctx}
}

func (c Console) CreateTask(content string) (timer.Task, error) {
	return c.session.CreateTask(content)
}

func (c Console) RemoveTask(taskID string) (*timer.Task, error) {
	return c.session.RemoveTask(c.ctx, taskID)
}

func (c Console) MoveTask(taskID string, column board.Column) error {
	return c.session.MoveTask(taskID, column, -1)
}

func (c Console) Lanes() ([]board.Lane, error) {
	return c.session.Lanes(), nil
}
