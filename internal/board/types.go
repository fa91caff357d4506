// Package board owns the canonical list of columns and their tasks. Every
// mutation runs to completion under the store lock and then notifies the
// registered listeners; persistence is one such listener.
package board

import "github.com/jask/kanban/internal/assignee"

// Task is a unit of work. Label records the column the task was created in;
// moves do not rewrite it.
type Task struct {
	ID          int64               `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Label       string              `json:"label"`
	Assignees   []assignee.Assignee `json:"assignees"`
}

// Column is a named, ordered bucket of tasks. The label doubles as its key.
type Column struct {
	Label string `json:"label"`
	Tasks []Task `json:"tasks"`
}

func (t Task) clone() Task {
	out := t
	out.Assignees = append(make([]assignee.Assignee, 0, len(t.Assignees)), t.Assignees...)
	return out
}

func (c Column) clone() Column {
	out := Column{Label: c.Label, Tasks: make([]Task, 0, len(c.Tasks))}
	for _, t := range c.Tasks {
		out.Tasks = append(out.Tasks, t.clone())
	}
	return out
}

func cloneColumns(cols []Column) []Column {
	out := make([]Column, 0, len(cols))
	for _, c := range cols {
		out = append(out, c.clone())
	}
	return out
}

func (c *Column) taskIndex(id int64) int {
	for i := range c.Tasks {
		if c.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}
