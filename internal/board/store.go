package board

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/agnivade/levenshtein"
	log "github.com/sirupsen/logrus"

	"github.com/jask/kanban/internal/assignee"
	"github.com/jask/kanban/internal/notify"
)

// DefaultKey is the storage key holding the serialized board.
const DefaultKey = "tasks"

// Store holds the board, the transient filter keyword and the listener list.
// Mutators report whether they found their target; a mutator that finds
// nothing leaves the board untouched and does not notify.
type Store struct {
	mu        sync.RWMutex
	columns   []Column
	filter    string
	ids       idGen
	listeners notify.Listeners
	log       *log.Logger
}

type options struct {
	key     string
	now     func() time.Time
	logger  *log.Logger
	columns []Column
	observe func(time.Duration, error)
}

// Option configures Load, New and NewPersister.
type Option func(*options)

// WithKey sets the storage key. Defaults to DefaultKey.
func WithKey(key string) Option {
	return func(o *options) { o.key = key }
}

// WithClock replaces time.Now for task id generation.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithColumns starts the store from cols instead of the demo board.
func WithColumns(cols []Column) Option {
	return func(o *options) { o.columns = cloneColumns(cols) }
}

// WithPersistObserver is called after every snapshot write attempt.
func WithPersistObserver(fn func(time.Duration, error)) Option {
	return func(o *options) { o.observe = fn }
}

func buildOptions(opts []Option) options {
	o := options{key: DefaultKey, now: time.Now, logger: log.StandardLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New returns a store holding the demo board, or the columns given via
// WithColumns. It does not touch storage.
func New(opts ...Option) *Store {
	return newStore(buildOptions(opts))
}

func newStore(o options) *Store {
	cols := o.columns
	if cols == nil {
		cols = Seed()
	}
	s := &Store{columns: cols, ids: idGen{now: o.now}, log: o.logger}
	s.ids.observe(cols)
	return s
}

// AddListener registers fn to run after every completed mutation.
func (s *Store) AddListener(fn func()) (remove func()) {
	return s.listeners.Add(fn)
}

func (s *Store) mutate(fn func() bool) bool {
	if !s.apply(fn) {
		return false
	}
	s.listeners.Notify()
	return true
}

func (s *Store) apply(fn func() bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

// column returns the first column labelled label. Callers hold s.mu.
func (s *Store) column(label string) *Column {
	for i := range s.columns {
		if s.columns[i].Label == label {
			return &s.columns[i]
		}
	}
	return nil
}

func (s *Store) task(label string, id int64) *Task {
	c := s.column(label)
	if c == nil {
		return nil
	}
	if i := c.taskIndex(id); i >= 0 {
		return &c.Tasks[i]
	}
	return nil
}

// AddColumn appends an empty column. A label already in use gets the first
// free numeric suffix ("To Do 1", "To Do 2", ...). The label actually used is
// returned.
func (s *Store) AddColumn(label string) string {
	var final string
	s.mutate(func() bool {
		final = label
		for n := 1; s.column(final) != nil; n++ {
			final = fmt.Sprintf("%s %d", label, n)
		}
		s.columns = append(s.columns, Column{Label: final, Tasks: []Task{}})
		return true
	})
	s.log.WithField("column", final).Debug("column added")
	return final
}

// DeleteColumn removes the first column labelled label, with its tasks.
func (s *Store) DeleteColumn(label string) bool {
	return s.mutate(func() bool {
		for i := range s.columns {
			if s.columns[i].Label == label {
				s.columns = slices.Delete(s.columns, i, i+1)
				return true
			}
		}
		return false
	})
}

// UpdateColumnLabel renames a column. newLabel is not checked against the
// other columns.
func (s *Store) UpdateColumnLabel(label, newLabel string) bool {
	return s.mutate(func() bool {
		c := s.column(label)
		if c == nil {
			return false
		}
		c.Label = newLabel
		return true
	})
}

// AddTask appends a new task with a fresh id to the column labelled label.
func (s *Store) AddTask(title, description, label string) (Task, bool) {
	var created Task
	ok := s.mutate(func() bool {
		c := s.column(label)
		if c == nil {
			return false
		}
		created = Task{
			ID:          s.ids.next(),
			Title:       title,
			Description: description,
			Label:       label,
			Assignees:   []assignee.Assignee{},
		}
		c.Tasks = append(c.Tasks, created)
		return true
	})
	if !ok {
		return Task{}, false
	}
	return created.clone(), true
}

// EditTask replaces title and description of a task.
func (s *Store) EditTask(label string, id int64, title, description string) bool {
	return s.mutate(func() bool {
		t := s.task(label, id)
		if t == nil {
			return false
		}
		t.Title = title
		t.Description = description
		return true
	})
}

func (s *Store) UpdateTaskTitle(id int64, label, title string) bool {
	return s.mutate(func() bool {
		t := s.task(label, id)
		if t == nil {
			return false
		}
		t.Title = title
		return true
	})
}

func (s *Store) UpdateTaskDescription(id int64, label, description string) bool {
	return s.mutate(func() bool {
		t := s.task(label, id)
		if t == nil {
			return false
		}
		t.Description = description
		return true
	})
}

// DeleteTask removes a task from its column.
func (s *Store) DeleteTask(id int64, label string) bool {
	return s.mutate(func() bool {
		c := s.column(label)
		if c == nil {
			return false
		}
		i := c.taskIndex(id)
		if i < 0 {
			return false
		}
		c.Tasks = slices.Delete(c.Tasks, i, i+1)
		return true
	})
}

// UpdateTaskLabel moves a task to the end of another column.
func (s *Store) UpdateTaskLabel(id int64, preLabel, newLabel string) bool {
	return s.mutate(func() bool {
		from, to := s.column(preLabel), s.column(newLabel)
		if from == nil || to == nil {
			return false
		}
		i := from.taskIndex(id)
		if i < 0 {
			return false
		}
		t := from.Tasks[i]
		from.Tasks = slices.Delete(from.Tasks, i, i+1)
		to.Tasks = append(to.Tasks, t)
		return true
	})
}

// MoveTask moves a task to position newIndex of another (or the same)
// column. Negative indexes count from the end; the result is clamped to
// [0, len].
func (s *Store) MoveTask(id int64, preLabel, newLabel string, newIndex int) bool {
	return s.mutate(func() bool {
		from, to := s.column(preLabel), s.column(newLabel)
		if from == nil || to == nil {
			return false
		}
		i := from.taskIndex(id)
		if i < 0 {
			return false
		}
		t := from.Tasks[i]
		from.Tasks = slices.Delete(from.Tasks, i, i+1)
		to.Tasks = slices.Insert(to.Tasks, clampIndex(newIndex, len(to.Tasks)), t)
		return true
	})
}

func clampIndex(i, n int) int {
	if i < 0 {
		i += n
		if i < 0 {
			return 0
		}
	}
	if i > n {
		return n
	}
	return i
}

// AddAssignee appends a catalog assignee to a task. Duplicates are allowed;
// names outside the catalog are ignored.
func (s *Store) AddAssignee(id int64, label string, name assignee.Name) bool {
	a, ok := assignee.Lookup(name)
	if !ok {
		return false
	}
	return s.mutate(func() bool {
		t := s.task(label, id)
		if t == nil {
			return false
		}
		t.Assignees = append(t.Assignees, a)
		return true
	})
}

// RemoveAssignee drops every assignee called name from a task.
func (s *Store) RemoveAssignee(id int64, label string, name assignee.Name) bool {
	return s.mutate(func() bool {
		t := s.task(label, id)
		if t == nil {
			return false
		}
		t.Assignees = slices.DeleteFunc(t.Assignees, func(a assignee.Assignee) bool {
			return a.Name == name
		})
		return true
	})
}

// Task returns a copy of the task with id in the column labelled label.
func (s *Store) Task(id int64, label string) (Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t := s.task(label, id)
	if t == nil {
		return Task{}, false
	}
	return t.clone(), true
}

// TaskIndex returns the position of a task in the unfiltered column
// labelled label, the index space MoveTask works in.
func (s *Store) TaskIndex(id int64, label string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := s.column(label)
	if c == nil {
		return 0, false
	}
	i := c.taskIndex(id)
	return i, i >= 0
}

// Columns returns a copy of the board. While a filter is active each
// column's task list holds only tasks whose title or description contains
// the keyword, case-insensitively.
func (s *Store) Columns() []Column {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.filter == "" {
		return cloneColumns(s.columns)
	}
	return filterColumns(s.columns, s.filter)
}

// Labels returns the column labels in board order.
func (s *Store) Labels() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.columns))
	for _, c := range s.columns {
		out = append(out, c.Label)
	}
	return out
}

// TaskCount returns the number of tasks on the unfiltered board.
func (s *Store) TaskCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, c := range s.columns {
		n += len(c.Tasks)
	}
	return n
}

// TaskCounts returns the unfiltered number of tasks per label. Columns
// sharing a label are summed.
func (s *Store) TaskCounts() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int, len(s.columns))
	for _, c := range s.columns {
		out[c.Label] += len(c.Tasks)
	}
	return out
}

// UpdateFilter sets the filter keyword. Keywords shorter than MinFilterLen
// runes clear it. Listeners are notified either way.
func (s *Store) UpdateFilter(keyword string) {
	s.mutate(func() bool {
		s.filter = normalizeFilter(keyword)
		return true
	})
}

// Filter returns the active keyword, or "" when none is active.
func (s *Store) Filter() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// SuggestLabel returns the existing label closest to label, for "did you
// mean" hints. Case-insensitive equality wins outright; otherwise the
// nearest label within an edit distance of 3 is returned.
func (s *Store) SuggestLabel(label string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	want := strings.ToLower(strings.TrimSpace(label))
	best, bestDist := "", 4
	for _, c := range s.columns {
		got := strings.ToLower(c.Label)
		if got == want {
			return c.Label, true
		}
		if d := levenshtein.ComputeDistance(want, got); d < bestDist {
			best, bestDist = c.Label, d
		}
	}
	return best, best != ""
}
