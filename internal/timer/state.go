package timer

import "time"

type StateKind int

const (
	StateIdle StateKind = iota
	StatePaused
	StateRunning
)

func (k StateKind) String() string {
	switch k {
	case StatePaused:
		return "paused"
	case StateRunning:
		return "running"
	default:
		return "idle"
	}
}

// State is the single timer cursor. TaskID is empty only when Idle and
// SegmentStart is set only when Running.
type State struct {
	Kind         StateKind
	TaskID       string
	SegmentStart time.Time
}

func idle() State {
	return State{Kind: StateIdle}
}

func paused(taskID string) State {
	return State{Kind: StatePaused, TaskID: taskID}
}

func running(taskID string, start time.Time) State {
	return State{Kind: StateRunning, TaskID: taskID, SegmentStart: start}
}

func (s State) elapsed(now time.Time) time.Duration {
	if s.Kind != StateRunning {
		return 0
	}
	d := now.Sub(s.SegmentStart)
	if d < 0 {
		return 0
	}
	return d
}
