package timer

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownTask  = errors.New("unknown task")
	ErrTaskNotFound = errors.New("task not found")
	ErrInvalidTask  = errors.New("invalid task")
	ErrNotPaused    = errors.New("no paused task to resume")
)

func invalidTask(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidTask, reason)
}
