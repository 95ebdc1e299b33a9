package storage

import (
	"context"
	"errors"
	"time"

	"floating-timer/internal/board"
	"floating-timer/internal/timer"
)

var ErrTaskNotFound = errors.New("task not found")

type Record struct {
	Task      timer.Task   `json:"task"`
	Column    board.Column `json:"column"`
	Position  int          `json:"position"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func (r Record) Placement() board.Placement {
	return board.Placement{TaskID: r.Task.ID, Column: r.Column, Position: r.Position}
}

// Repository is the durable home of task records. The timer core never
// calls it; the app layer reconciles the two.
type Repository interface {
	SaveTasks(ctx context.Context, tasks []timer.Task) error
	DeleteTask(ctx context.Context, taskID string) error
	ListTasks(ctx context.Context) ([]Record, error)
	// SaveLayout records the column and position of known tasks. Unknown
	// ids are skipped.
	SaveLayout(ctx context.Context, placements []board.Placement) error
	ActiveTaskID(ctx context.Context) (string, bool, error)
	SetActiveTaskID(ctx context.Context, taskID string) error
}
