package ui

import (
	"fmt"
	"sort"
	"strings"

	"floating-timer/internal/board"
	"floating-timer/internal/timer"
)

// Model is the text rendering of the floating widget: a one-line collapsed
// view or an expanded task list.
type Model struct {
	expanded bool
	tasks    []timer.Task
	sections []section
	current  *timer.CurrentTime
	notice   string
}

// section is a board column covering tasks[start:end].
type section struct {
	column     board.Column
	start, end int
}

type Snapshot struct {
	Tasks   []timer.Task
	Lanes   []board.Lane
	Current *timer.CurrentTime
}

func NewModel(snapshot Snapshot) Model {
	return Model{}.WithSnapshot(snapshot)
}

func (m Model) WithSnapshot(snapshot Snapshot) Model {
	tasks := append([]timer.Task(nil), snapshot.Tasks...)
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].Content != tasks[j].Content {
			return tasks[i].Content < tasks[j].Content
		}
		return tasks[i].ID < tasks[j].ID
	})
	m.tasks, m.sections = arrange(tasks, snapshot.Lanes)
	m.current = snapshot.Current
	return m
}

// arrange orders tasks column by column. Tasks missing from every lane
// land in the first column after the placed ones.
func arrange(tasks []timer.Task, lanes []board.Lane) ([]timer.Task, []section) {
	if len(lanes) == 0 {
		return tasks, nil
	}

	byID := make(map[string]timer.Task, len(tasks))
	for _, task := range tasks {
		byID[task.ID] = task
	}
	placed := make(map[string]bool, len(tasks))
	for _, lane := range lanes {
		for _, id := range lane.TaskIDs {
			placed[id] = true
		}
	}

	ordered := make([]timer.Task, 0, len(tasks))
	sections := make([]section, 0, len(lanes))
	for i, lane := range lanes {
		start := len(ordered)
		for _, id := range lane.TaskIDs {
			if task, ok := byID[id]; ok {
				ordered = append(ordered, task)
				delete(byID, id)
			}
		}
		if i == 0 {
			for _, task := range tasks {
				if !placed[task.ID] {
					ordered = append(ordered, task)
				}
			}
		}
		sections = append(sections, section{column: lane.Column, start: start, end: len(ordered)})
	}
	return ordered, sections
}

func (m Model) Expand() Model {
	m.expanded = true
	return m
}

func (m Model) Collapse() Model {
	m.expanded = false
	return m
}

func (m Model) Toggle() Model {
	m.expanded = !m.expanded
	return m
}

func (m Model) WithNotice(notice string) Model {
	m.notice = notice
	return m
}

func (m Model) Expanded() bool {
	return m.expanded
}

// Tasks returns the tasks in display order; list indices are 1-based
// positions in this slice.
func (m Model) Tasks() []timer.Task {
	return m.tasks
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.headline())
	b.WriteString("\n")

	if m.expanded {
		b.WriteString("\n")
		if len(m.tasks) == 0 {
			b.WriteString("  no tasks yet\n")
		}
		if len(m.sections) == 0 {
			m.writeRows(&b, 0, len(m.tasks))
		}
		for _, sec := range m.sections {
			b.WriteString(fmt.Sprintf("%s (%d)\n", sec.column, sec.end-sec.start))
			m.writeRows(&b, sec.start, sec.end)
		}
		b.WriteString("\nkeys: add <text> | start <n> | pause | select <n> | resume | move <n> <column> | rm <n> | collapse | q\n")
	} else {
		b.WriteString("keys: expand | pause | resume | q\n")
	}

	if m.notice != "" {
		b.WriteString(m.notice)
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) writeRows(b *strings.Builder, start, end int) {
	for i := start; i < end; i++ {
		task := m.tasks[i]
		marker := " "
		spent := task.TimeSpent()
		if m.current != nil && m.current.TaskID == task.ID {
			marker = ">"
			spent = m.current.Total()
		}
		b.WriteString(fmt.Sprintf("%s %2d. %s  %s\n", marker, i+1, timer.FormatDuration(spent), task.Content))
	}
}

func (m Model) headline() string {
	if m.current == nil {
		return fmt.Sprintf("[ %s ] no active task", timer.FormatDuration(0))
	}

	status := "paused"
	if m.current.Running {
		status = "running"
	}
	content := m.current.TaskID
	for _, task := range m.tasks {
		if task.ID == m.current.TaskID {
			content = task.Content
			break
		}
	}
	return fmt.Sprintf("[ %s ] %s (%s)", timer.FormatDuration(m.current.Total()), content, status)
}
