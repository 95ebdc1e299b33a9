package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"floating-timer/internal/board"
	"floating-timer/internal/timer"
)

type MemoryStore struct {
	mu       sync.RWMutex
	records  map[string]Record
	activeID string
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]Record),
		now:     time.Now,
	}
}

func (s *MemoryStore) SaveTasks(_ context.Context, tasks []timer.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	for _, task := range tasks {
		existing, ok := s.records[task.ID]
		if ok && existing.Task == task {
			continue
		}
		if !ok {
			existing = Record{Column: board.ColumnQueue}
		}
		existing.Task = task
		existing.UpdatedAt = now
		s.records[task.ID] = existing
	}
	return nil
}

func (s *MemoryStore) DeleteTask(_ context.Context, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[taskID]; !ok {
		return ErrTaskNotFound
	}
	delete(s.records, taskID)
	if s.activeID == taskID {
		s.activeID = ""
	}
	return nil
}

func (s *MemoryStore) ListTasks(_ context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Record, 0, len(s.records))
	for _, record := range s.records {
		result = append(result, record)
	}
	sortRecords(result)
	return result, nil
}

func (s *MemoryStore) SaveLayout(_ context.Context, placements []board.Placement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, placement := range placements {
		record, ok := s.records[placement.TaskID]
		if !ok {
			continue
		}
		record.Column = placement.Column
		record.Position = placement.Position
		s.records[placement.TaskID] = record
	}
	return nil
}

func (s *MemoryStore) ActiveTaskID(_ context.Context) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.activeID, s.activeID != "", nil
}

func (s *MemoryStore) SetActiveTaskID(_ context.Context, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if taskID != "" {
		if _, ok := s.records[taskID]; !ok {
			return ErrTaskNotFound
		}
	}
	s.activeID = taskID
	return nil
}

// sortRecords orders by most recently updated, then by id.
func sortRecords(records []Record) {
	sort.Slice(records, func(i, j int) bool {
		if !records[i].UpdatedAt.Equal(records[j].UpdatedAt) {
			return records[i].UpdatedAt.After(records[j].UpdatedAt)
		}
		return records[i].Task.ID < records[j].Task.ID
	})
}
