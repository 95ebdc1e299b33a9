package timer

import "time"

// Store is the in-process task cache. Implementations must be safe for
// concurrent use and linearizable per key.
type Store interface {
	Put(task Task)
	Get(id string) (Task, bool)
	AddDuration(id string, delta time.Duration) (Task, error)
	Delete(id string) (Task, bool)
	List() []Task
	Len() int
}
