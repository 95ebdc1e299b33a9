package board

import (
	"fmt"
	"sync"
)

type Column string

const (
	ColumnQueue      Column = "queue"
	ColumnInProgress Column = "inProgress"
	ColumnReview     Column = "review"
	ColumnDone       Column = "done"
)

// Order is the left-to-right column layout.
var Order = []Column{ColumnQueue, ColumnInProgress, ColumnReview, ColumnDone}

func ParseColumn(raw string) (Column, error) {
	for _, column := range Order {
		if string(column) == raw {
			return column, nil
		}
	}
	switch raw {
	case "progress", "in-progress", "in_progress", "wip":
		return ColumnInProgress, nil
	}
	return "", fmt.Errorf("unknown column %q (supported: queue, inProgress, review, done)", raw)
}

// Placement is a task's position inside a column.
type Placement struct {
	TaskID   string `json:"task_id"`
	Column   Column `json:"column"`
	Position int    `json:"position"`
}

type Lane struct {
	Column  Column   `json:"column"`
	TaskIDs []string `json:"task_ids"`
}

// Board keeps the ordered task ids of every column. A task id appears in
// at most one column.
type Board struct {
	mu    sync.RWMutex
	lanes map[Column][]string
}

func New() *Board {
	lanes := make(map[Column][]string, len(Order))
	for _, column := range Order {
		lanes[column] = nil
	}
	return &Board{lanes: lanes}
}

func Load(placements []Placement) *Board {
	b := New()
	b.Replace(placements)
	return b
}

// Replace swaps the layout for placements, ordered by position. Unknown
// columns fall back to the queue and repeated ids keep their first slot.
func (b *Board) Replace(placements []Placement) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sorted := append([]Placement(nil), placements...)
	sortPlacements(sorted)
	for _, column := range Order {
		b.lanes[column] = nil
	}
	for _, placement := range sorted {
		column := placement.Column
		if _, ok := b.lanes[column]; !ok {
			column = ColumnQueue
		}
		if _, found := b.columnOfLocked(placement.TaskID); found {
			continue
		}
		b.lanes[column] = append(b.lanes[column], placement.TaskID)
	}
}

// Add puts a new task at the top of the queue. Known ids are left alone.
func (b *Board) Add(taskID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, found := b.columnOfLocked(taskID); found {
		return
	}
	b.lanes[ColumnQueue] = append([]string{taskID}, b.lanes[ColumnQueue]...)
}

// Move places taskID in column at index; a negative or out of range index
// appends. It returns the column the task came from, or "" when the task
// was not on the board.
func (b *Board) Move(taskID string, column Column, index int) (Column, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.lanes[column]; !ok {
		return "", fmt.Errorf("unknown column %q", column)
	}

	from, _ := b.columnOfLocked(taskID)
	if from != "" {
		b.lanes[from] = without(b.lanes[from], taskID)
	}

	ids := b.lanes[column]
	if index < 0 || index > len(ids) {
		index = len(ids)
	}
	next := make([]string, 0, len(ids)+1)
	next = append(next, ids[:index]...)
	next = append(next, taskID)
	next = append(next, ids[index:]...)
	b.lanes[column] = next

	return from, nil
}

func (b *Board) Remove(taskID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	from, found := b.columnOfLocked(taskID)
	if !found {
		return false
	}
	b.lanes[from] = without(b.lanes[from], taskID)
	return true
}

func (b *Board) ColumnOf(taskID string) (Column, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.columnOfLocked(taskID)
}

func (b *Board) Lanes() []Lane {
	b.mu.RLock()
	defer b.mu.RUnlock()

	lanes := make([]Lane, 0, len(Order))
	for _, column := range Order {
		lanes = append(lanes, Lane{
			Column:  column,
			TaskIDs: append([]string(nil), b.lanes[column]...),
		})
	}
	return lanes
}

func (b *Board) Placements() []Placement {
	b.mu.RLock()
	defer b.mu.RUnlock()

	result := make([]Placement, 0)
	for _, column := range Order {
		for i, taskID := range b.lanes[column] {
			result = append(result, Placement{TaskID: taskID, Column: column, Position: i})
		}
	}
	return result
}

func (b *Board) columnOfLocked(taskID string) (Column, bool) {
	for column, ids := range b.lanes {
		for _, id := range ids {
			if id == taskID {
				return column, true
			}
		}
	}
	return "", false
}

func without(ids []string, taskID string) []string {
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != taskID {
			result = append(result, id)
		}
	}
	return result
}

func sortPlacements(placements []Placement) {
	rank := make(map[Column]int, len(Order))
	for i, column := range Order {
		rank[column] = i
	}
	less := func(a, b Placement) bool {
		if rank[a.Column] != rank[b.Column] {
			return rank[a.Column] < rank[b.Column]
		}
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		return a.TaskID < b.TaskID
	}
	for i := 1; i < len(placements); i++ {
		for j := i; j > 0 && less(placements[j], placements[j-1]); j-- {
			placements[j], placements[j-1] = placements[j-1], placements[j]
		}
	}
}
