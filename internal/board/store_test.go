package board

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/kanban/internal/assignee"
)

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func taskTitles(c Column) []string {
	out := make([]string, 0, len(c.Tasks))
	for _, t := range c.Tasks {
		out = append(out, t.Title)
	}
	return out
}

func columnByLabel(t *testing.T, s *Store, label string) Column {
	t.Helper()
	for _, c := range s.Columns() {
		if c.Label == label {
			return c
		}
	}
	t.Fatalf("column %q not found", label)
	return Column{}
}

func mustSnapshot(t *testing.T, s *Store) string {
	t.Helper()
	data, err := s.Snapshot()
	require.NoError(t, err)
	return string(data)
}

func TestNewSeedsDemoBoard(t *testing.T) {
	t.Parallel()

	s := New()
	require.Equal(t, []string{"To Do", "In Progress", "Done"}, s.Labels())
	require.Equal(t, 3, s.TaskCount())

	task, ok := s.Task(2, "In Progress")
	require.True(t, ok)
	require.Equal(t, "Prepare Witch Costume", task.Title)
	require.Equal(t, []assignee.Assignee{assignee.MustLookup(assignee.Dracula), assignee.MustLookup(assignee.Ghost)}, task.Assignees)

	_, ok = s.Task(2, "To Do")
	require.False(t, ok)
}

func TestAddColumnSuffixesDuplicates(t *testing.T) {
	t.Parallel()

	s := New(WithColumns([]Column{}))
	require.Equal(t, "To Do", s.AddColumn("To Do"))
	require.Equal(t, "To Do 1", s.AddColumn("To Do"))
	require.Equal(t, "To Do 2", s.AddColumn("To Do"))
	require.Equal(t, []string{"To Do", "To Do 1", "To Do 2"}, s.Labels())

	for _, c := range s.Columns() {
		require.NotNil(t, c.Tasks)
		require.Empty(t, c.Tasks)
	}
}

func TestDeleteColumnRemovesFirstMatch(t *testing.T) {
	t.Parallel()

	s := New()
	require.True(t, s.UpdateColumnLabel("Done", "To Do"))
	require.Equal(t, []string{"To Do", "In Progress", "To Do"}, s.Labels())

	require.True(t, s.DeleteColumn("To Do"))
	require.Equal(t, []string{"In Progress", "To Do"}, s.Labels())
	// the surviving "To Do" is the renamed Done column
	require.Equal(t, []string{"Stock Up on Treats"}, taskTitles(columnByLabel(t, s, "To Do")))

	require.False(t, s.DeleteColumn("Backlog"))
}

func TestUpdateColumnLabelAllowsCollision(t *testing.T) {
	t.Parallel()

	s := New()
	require.True(t, s.UpdateColumnLabel("In Progress", "Done"))
	require.Equal(t, []string{"To Do", "Done", "Done"}, s.Labels())
	require.False(t, s.UpdateColumnLabel("Missing", "X"))
}

func TestAddTask(t *testing.T) {
	t.Parallel()

	s := New(WithClock(fixedClock(1_700_000_000_000)))
	task, ok := s.AddTask("Buy candles", "LED ones", "To Do")
	require.True(t, ok)
	require.Equal(t, int64(1_700_000_000_000), task.ID)
	require.Equal(t, "To Do", task.Label)
	require.NotNil(t, task.Assignees)
	require.Empty(t, task.Assignees)
	require.Equal(t, []string{"Carve Pumpkin", "Buy candles"}, taskTitles(columnByLabel(t, s, "To Do")))

	_, ok = s.AddTask("x", "y", "Nope")
	require.False(t, ok)
	require.Equal(t, 4, s.TaskCount())
}

func TestTaskIDsUniqueWithinSameInstant(t *testing.T) {
	t.Parallel()

	s := New(WithClock(fixedClock(5000)))
	seen := map[int64]bool{}
	for range 10 {
		task, ok := s.AddTask("t", "d", "Done")
		require.True(t, ok)
		require.False(t, seen[task.ID], "duplicate id %d", task.ID)
		seen[task.ID] = true
	}

	// clock behind the ids already on the board still yields fresh ids
	s2 := New(WithClock(fixedClock(0)))
	task, ok := s2.AddTask("t", "d", "Done")
	require.True(t, ok)
	require.Equal(t, int64(4), task.ID)
}

func TestEditAndSingleFieldUpdates(t *testing.T) {
	t.Parallel()

	s := New()
	require.True(t, s.EditTask("To Do", 1, "Carve two pumpkins", "Bigger ones"))
	task, _ := s.Task(1, "To Do")
	require.Equal(t, "Carve two pumpkins", task.Title)
	require.Equal(t, "Bigger ones", task.Description)

	require.True(t, s.UpdateTaskTitle(1, "To Do", "Carve"))
	require.True(t, s.UpdateTaskDescription(1, "To Do", "Sharp knife"))
	task, _ = s.Task(1, "To Do")
	require.Equal(t, "Carve", task.Title)
	require.Equal(t, "Sharp knife", task.Description)

	require.False(t, s.EditTask("To Do", 99, "a", "b"))
	require.False(t, s.EditTask("Nope", 1, "a", "b"))
	require.False(t, s.UpdateTaskTitle(2, "To Do", "a"))
	require.False(t, s.UpdateTaskDescription(1, "Done", "a"))
}

func TestDeleteTask(t *testing.T) {
	t.Parallel()

	s := New()
	require.False(t, s.DeleteTask(1, "Done"))
	require.True(t, s.DeleteTask(1, "To Do"))
	require.Empty(t, columnByLabel(t, s, "To Do").Tasks)
	require.False(t, s.DeleteTask(1, "To Do"))
}

func TestUpdateTaskLabelAppends(t *testing.T) {
	t.Parallel()

	s := New()
	require.True(t, s.UpdateTaskLabel(1, "To Do", "Done"))
	require.Empty(t, columnByLabel(t, s, "To Do").Tasks)
	require.Equal(t, []string{"Stock Up on Treats", "Carve Pumpkin"}, taskTitles(columnByLabel(t, s, "Done")))

	// the task keeps its original label field
	task, ok := s.Task(1, "Done")
	require.True(t, ok)
	require.Equal(t, "To Do", task.Label)

	require.False(t, s.UpdateTaskLabel(1, "To Do", "Done"))
	require.False(t, s.UpdateTaskLabel(3, "Done", "Backlog"))
	require.Equal(t, 3, s.TaskCount())
}

func TestMoveTask(t *testing.T) {
	t.Parallel()

	base := func() *Store {
		s := New(WithClock(fixedClock(100)))
		s.AddTask("A", "", "Done") // id 100
		s.AddTask("B", "", "Done") // id 101
		return s
	}

	cases := []struct {
		name  string
		index int
		want  []string
	}{
		{"front", 0, []string{"Carve Pumpkin", "Stock Up on Treats", "A", "B"}},
		{"middle", 2, []string{"Stock Up on Treats", "A", "Carve Pumpkin", "B"}},
		{"end", 3, []string{"Stock Up on Treats", "A", "B", "Carve Pumpkin"}},
		{"past end clamps", 42, []string{"Stock Up on Treats", "A", "B", "Carve Pumpkin"}},
		{"negative counts from end", -1, []string{"Stock Up on Treats", "A", "Carve Pumpkin", "B"}},
		{"very negative clamps to front", -10, []string{"Carve Pumpkin", "Stock Up on Treats", "A", "B"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := base()
			require.True(t, s.MoveTask(1, "To Do", "Done", tc.index))
			require.Equal(t, tc.want, taskTitles(columnByLabel(t, s, "Done")))
			require.Empty(t, columnByLabel(t, s, "To Do").Tasks)
			require.Equal(t, 5, s.TaskCount())
		})
	}
}

func TestMoveTaskWithinColumn(t *testing.T) {
	t.Parallel()

	s := New(WithClock(fixedClock(100)))
	s.AddTask("A", "", "Done")
	s.AddTask("B", "", "Done")
	require.True(t, s.MoveTask(3, "Done", "Done", 2))
	require.Equal(t, []string{"A", "B", "Stock Up on Treats"}, taskTitles(columnByLabel(t, s, "Done")))
	require.True(t, s.MoveTask(101, "Done", "Done", 0))
	require.Equal(t, []string{"B", "A", "Stock Up on Treats"}, taskTitles(columnByLabel(t, s, "Done")))
}

func TestTaskIndexIgnoresFilter(t *testing.T) {
	t.Parallel()

	s := New(WithClock(fixedClock(100)))
	s.AddTask("alpha", "", "Done")
	s.UpdateFilter("alpha")
	require.Len(t, columnByLabel(t, s, "Done").Tasks, 1)

	i, ok := s.TaskIndex(100, "Done")
	require.True(t, ok)
	require.Equal(t, 1, i)

	_, ok = s.TaskIndex(100, "To Do")
	require.False(t, ok)
	_, ok = s.TaskIndex(100, "Nope")
	require.False(t, ok)
}

func TestMovePreservesTaskCount(t *testing.T) {
	t.Parallel()

	s := New()
	before := map[string]int{}
	for _, c := range s.Columns() {
		before[c.Label] = len(c.Tasks)
	}
	require.True(t, s.MoveTask(2, "In Progress", "To Do", 0))
	require.Equal(t, before["In Progress"]-1, len(columnByLabel(t, s, "In Progress").Tasks))
	require.Equal(t, before["To Do"]+1, len(columnByLabel(t, s, "To Do").Tasks))
	require.True(t, s.UpdateTaskLabel(2, "To Do", "Done"))
	require.Equal(t, 3, s.TaskCount())
}

func TestAssigneeSymmetry(t *testing.T) {
	t.Parallel()

	s := New()
	before, _ := s.Task(2, "In Progress")
	require.True(t, s.AddAssignee(2, "In Progress", assignee.Pumpkin))
	mid, _ := s.Task(2, "In Progress")
	require.Len(t, mid.Assignees, 3)
	require.True(t, s.RemoveAssignee(2, "In Progress", assignee.Pumpkin))
	after, _ := s.Task(2, "In Progress")
	require.Equal(t, before.Assignees, after.Assignees)
}

func TestAssigneeDuplicatesAndRemoveAll(t *testing.T) {
	t.Parallel()

	s := New()
	require.True(t, s.AddAssignee(1, "To Do", assignee.Pumpkin))
	task, _ := s.Task(1, "To Do")
	require.Len(t, task.Assignees, 2)

	require.True(t, s.RemoveAssignee(1, "To Do", assignee.Pumpkin))
	task, _ = s.Task(1, "To Do")
	require.Empty(t, task.Assignees)

	require.False(t, s.AddAssignee(1, "To Do", "werewolf"))
	require.False(t, s.AddAssignee(1, "Nope", assignee.Ghost))
	require.False(t, s.RemoveAssignee(1, "Nope", assignee.Ghost))
}

func TestFilterIsNonDestructive(t *testing.T) {
	t.Parallel()

	s := New()
	full := s.Columns()

	s.UpdateFilter("PUMP")
	require.Equal(t, "PUMP", s.Filter())
	cols := s.Columns()
	require.Len(t, cols, 3)
	require.Equal(t, []string{"Carve Pumpkin"}, taskTitles(cols[0]))
	require.Empty(t, cols[1].Tasks)
	require.Empty(t, cols[2].Tasks)
	require.Equal(t, 3, s.TaskCount())

	// description matches count too
	s.UpdateFilter("broomstick")
	require.Equal(t, []string{"Prepare Witch Costume"}, taskTitles(s.Columns()[1]))

	s.UpdateFilter("ca")
	require.Equal(t, "", s.Filter())
	require.Equal(t, full, s.Columns())

	s.UpdateFilter("candy")
	s.UpdateFilter("")
	require.Equal(t, full, s.Columns())
}

func TestColumnsReturnsCopies(t *testing.T) {
	t.Parallel()

	s := New()
	cols := s.Columns()
	cols[0].Label = "Hacked"
	cols[0].Tasks[0].Title = "Hacked"
	cols[0].Tasks[0].Assignees[0].Name = "hacked"

	task, ok := s.Task(1, "To Do")
	require.True(t, ok)
	require.Equal(t, "Carve Pumpkin", task.Title)
	require.Equal(t, assignee.Pumpkin, task.Assignees[0].Name)
}

func TestNotifyOncePerMutation(t *testing.T) {
	t.Parallel()

	s := New()
	var a, b int
	s.AddListener(func() { a++ })
	s.AddListener(func() { b++ })

	s.AddTask("x", "y", "To Do")
	require.Equal(t, 1, a)
	require.Equal(t, 1, b)

	s.UpdateFilter("zz")
	require.Equal(t, 2, a)

	s.AddColumn("Later")
	s.MoveTask(1, "To Do", "Later", 0)
	require.Equal(t, 4, a)
	require.Equal(t, 4, b)
}

func TestListenerReadsFreshState(t *testing.T) {
	t.Parallel()

	s := New()
	var seen []string
	s.AddListener(func() { seen = s.Labels() })
	s.AddColumn("Backlog")
	require.Equal(t, []string{"To Do", "In Progress", "Done", "Backlog"}, seen)
}

func TestMissingEntityNoOps(t *testing.T) {
	t.Parallel()

	s := New()
	before := mustSnapshot(t, s)
	calls := 0
	s.AddListener(func() { calls++ })

	s.DeleteColumn("Nope")
	s.UpdateColumnLabel("Nope", "X")
	s.AddTask("a", "b", "Nope")
	s.EditTask("Nope", 1, "a", "b")
	s.EditTask("To Do", 42, "a", "b")
	s.UpdateTaskTitle(42, "To Do", "a")
	s.UpdateTaskDescription(42, "To Do", "a")
	s.DeleteTask(42, "To Do")
	s.DeleteTask(1, "Nope")
	s.UpdateTaskLabel(42, "To Do", "Done")
	s.UpdateTaskLabel(1, "To Do", "Nope")
	s.MoveTask(1, "Nope", "Done", 0)
	s.MoveTask(42, "To Do", "Done", 0)
	s.AddAssignee(42, "To Do", assignee.Ghost)
	s.RemoveAssignee(1, "Nope", assignee.Pumpkin)

	require.Equal(t, before, mustSnapshot(t, s))
	require.Zero(t, calls)
}

func TestSuggestLabel(t *testing.T) {
	t.Parallel()

	s := New()
	got, ok := s.SuggestLabel("to do")
	require.True(t, ok)
	require.Equal(t, "To Do", got)

	got, ok = s.SuggestLabel("In Progres")
	require.True(t, ok)
	require.Equal(t, "In Progress", got)

	_, ok = s.SuggestLabel("Someday maybe")
	require.False(t, ok)
}
