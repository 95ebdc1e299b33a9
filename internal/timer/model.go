package timer

import (
	"strings"
	"time"
)

type Task struct {
	ID          string `json:"id"`
	Content     string `json:"content"`
	TimeSpentMS int64  `json:"time_spent_ms"`
}

// TimeSpent returns the accumulated duration as a time.Duration.
func (t Task) TimeSpent() time.Duration {
	return time.Duration(t.TimeSpentMS) * time.Millisecond
}

func (t Task) validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return invalidTask("id is required")
	}
	if t.TimeSpentMS < 0 {
		return invalidTask("time_spent_ms must not be negative")
	}
	return nil
}

// CurrentTime is the projected total for the active task.
type CurrentTime struct {
	TaskID  string `json:"task_id"`
	TotalMS int64  `json:"total_ms"`
	Running bool   `json:"running"`
}

func (c CurrentTime) Total() time.Duration {
	return time.Duration(c.TotalMS) * time.Millisecond
}
