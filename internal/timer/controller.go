package timer

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type BaselinePolicy string

const (
	// BaselineOverwrite takes the duration supplied to Start verbatim.
	BaselineOverwrite BaselinePolicy = "overwrite"
	// BaselineKeepMax never lets Start lower a stored duration.
	BaselineKeepMax BaselinePolicy = "keep-max"
)

func ParseBaselinePolicy(raw string) (BaselinePolicy, error) {
	switch BaselinePolicy(raw) {
	case "", BaselineOverwrite:
		return BaselineOverwrite, nil
	case BaselineKeepMax:
		return BaselineKeepMax, nil
	default:
		return "", fmt.Errorf("unsupported baseline policy %q (supported: overwrite, keep-max)", raw)
	}
}

type Option func(*Controller)

func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

func WithBaselinePolicy(policy BaselinePolicy) Option {
	return func(c *Controller) {
		c.policy = policy
	}
}

// Controller owns the timer cursor and enforces that at most one task
// accrues time. Mutating operations hold mu exclusively for their whole
// duration; Current and State take it shared. Store calls are made while
// holding mu, never the other way round.
type Controller struct {
	mu     sync.RWMutex
	state  State
	store  Store
	now    func() time.Time
	logger zerolog.Logger
	policy BaselinePolicy
}

func NewController(store Store, opts ...Option) *Controller {
	c := &Controller{
		state:  idle(),
		store:  store,
		now:    time.Now,
		logger: zerolog.Nop(),
		policy: BaselineOverwrite,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start closes any running segment, stores task as the new baseline and
// begins timing it.
func (c *Controller) Start(task Task) (Task, error) {
	if err := task.validate(); err != nil {
		return Task{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()

	stored := c.baseline(task)
	c.store.Put(stored)
	c.state = running(stored.ID, c.now())

	c.logger.Info().
		Str("task_id", stored.ID).
		Int64("baseline_ms", stored.TimeSpentMS).
		Msg("started timer")
	return stored, nil
}

// Pause flushes the running segment and returns the updated record. It
// reports false when nothing was running.
func (c *Controller) Pause() (Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.stopLocked()
}

// Current projects the active task's total without writing anything.
func (c *Controller) Current() (CurrentTime, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	st := c.state
	if st.Kind == StateIdle {
		return CurrentTime{}, false
	}

	task, ok := c.store.Get(st.TaskID)
	if !ok {
		c.logger.Error().
			Str("task_id", st.TaskID).
			Str("state", st.Kind.String()).
			Msg("active task missing from store on query")
		return CurrentTime{}, false
	}

	return CurrentTime{
		TaskID:  st.TaskID,
		TotalMS: task.TimeSpentMS + st.elapsed(c.now()).Milliseconds(),
		Running: st.Kind == StateRunning,
	}, true
}

// Select makes id the paused task, closing any running segment first.
func (c *Controller) Select(id string) (Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.store.Get(id); !ok {
		return Task{}, fmt.Errorf("select %q: %w", id, ErrTaskNotFound)
	}

	c.stopLocked()

	task, ok := c.store.Get(id)
	if !ok {
		c.state = idle()
		return Task{}, fmt.Errorf("select %q: %w", id, ErrTaskNotFound)
	}
	c.state = paused(id)

	c.logger.Debug().
		Str("task_id", id).
		Msg("selected task")
	return task, nil
}

// Resume starts timing the paused task from its stored duration.
func (c *Controller) Resume() (Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Kind != StatePaused {
		return Task{}, ErrNotPaused
	}

	id := c.state.TaskID
	task, ok := c.store.Get(id)
	if !ok {
		c.logger.Error().
			Str("task_id", id).
			Msg("paused task missing from store, resetting timer")
		c.state = idle()
		return Task{}, fmt.Errorf("resume %q: %w", id, ErrTaskNotFound)
	}
	c.state = running(id, c.now())

	c.logger.Info().
		Str("task_id", id).
		Int64("baseline_ms", task.TimeSpentMS).
		Msg("resumed timer")
	return task, nil
}

// Clear returns the timer to idle, flushing a running segment if any.
func (c *Controller) Clear() (Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	task, flushed := c.stopLocked()
	c.state = idle()
	return task, flushed
}

// Remove deletes a task, first releasing the timer if it refers to it.
func (c *Controller) Remove(id string) (Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Kind != StateIdle && c.state.TaskID == id {
		c.stopLocked()
		c.state = idle()
	}

	task, ok := c.store.Delete(id)
	if ok {
		c.logger.Info().
			Str("task_id", id).
			Int64("time_spent_ms", task.TimeSpentMS).
			Msg("removed task")
	}
	return task, ok
}

func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.state
}

// stopLocked must be called with mu held.
func (c *Controller) stopLocked() (Task, bool) {
	st := c.state
	if st.Kind != StateRunning {
		return Task{}, false
	}

	elapsed := st.elapsed(c.now())
	c.state = idle()

	updated, err := c.store.AddDuration(st.TaskID, elapsed)
	if err != nil {
		c.logger.Error().
			Err(err).
			Str("task_id", st.TaskID).
			Int64("lost_ms", elapsed.Milliseconds()).
			Msg("running task missing from store, timer reset")
		return Task{}, false
	}

	c.logger.Info().
		Str("task_id", st.TaskID).
		Int64("elapsed_ms", elapsed.Milliseconds()).
		Int64("time_spent_ms", updated.TimeSpentMS).
		Msg("stopped timer")
	return updated, true
}

func (c *Controller) baseline(task Task) Task {
	existing, ok := c.store.Get(task.ID)
	if !ok || task.TimeSpentMS >= existing.TimeSpentMS {
		return task
	}

	c.logger.Warn().
		Str("task_id", task.ID).
		Int64("stored_ms", existing.TimeSpentMS).
		Int64("supplied_ms", task.TimeSpentMS).
		Str("policy", string(c.policy)).
		Msg("start would lower stored duration")

	if c.policy == BaselineKeepMax {
		task.TimeSpentMS = existing.TimeSpentMS
	}
	return task
}
