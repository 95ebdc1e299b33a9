package timer

import (
	"fmt"
	"hash/fnv"
	"sync"
	"time"
)

const DefaultShardCount = 16

type shard struct {
	mu    sync.RWMutex
	tasks map[string]Task
}

// ShardedStore spreads keys over independently locked shards. A call never
// holds more than one shard lock at a time.
type ShardedStore struct {
	shards []*shard
}

func NewShardedStore(shardCount int) *ShardedStore {
	if shardCount <= 0 {
		shardCount = DefaultShardCount
	}
	shards := make([]*shard, shardCount)
	for i := range shards {
		shards[i] = &shard{tasks: make(map[string]Task)}
	}
	return &ShardedStore{shards: shards}
}

func (s *ShardedStore) shardFor(id string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return s.shards[h.Sum32()%uint32(len(s.shards))]
}

func (s *ShardedStore) Put(task Task) {
	sh := s.shardFor(task.ID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	sh.tasks[task.ID] = task
}

func (s *ShardedStore) Get(id string) (Task, bool) {
	sh := s.shardFor(id)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	task, ok := sh.tasks[id]
	return task, ok
}

func (s *ShardedStore) AddDuration(id string, delta time.Duration) (Task, error) {
	if delta < 0 {
		delta = 0
	}

	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	task, ok := sh.tasks[id]
	if !ok {
		return Task{}, fmt.Errorf("add duration to %q: %w", id, ErrUnknownTask)
	}
	task.TimeSpentMS += delta.Milliseconds()
	sh.tasks[id] = task
	return task, nil
}

func (s *ShardedStore) Delete(id string) (Task, bool) {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	task, ok := sh.tasks[id]
	if ok {
		delete(sh.tasks, id)
	}
	return task, ok
}

// List copies each shard under its own read lock, so the result is
// consistent per key but not across shards.
func (s *ShardedStore) List() []Task {
	result := make([]Task, 0, s.Len())
	for _, sh := range s.shards {
		sh.mu.RLock()
		for _, task := range sh.tasks {
			result = append(result, task)
		}
		sh.mu.RUnlock()
	}
	return result
}

func (s *ShardedStore) Len() int {
	total := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		total += len(sh.tasks)
		sh.mu.RUnlock()
	}
	return total
}
