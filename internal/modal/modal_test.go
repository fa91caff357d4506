package modal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenClose(t *testing.T) {
	t.Parallel()

	f := New()
	require.False(t, f.IsOpen())

	var seen []State
	f.AddListener(func() { seen = append(seen, f.State()) })

	f.Open(42, "In Progress")
	require.True(t, f.IsOpen())
	require.Equal(t, int64(42), f.TaskID())
	require.Equal(t, "In Progress", f.ColumnLabel())

	f.Close()
	require.False(t, f.IsOpen())
	require.Zero(t, f.TaskID())
	require.Empty(t, f.ColumnLabel())

	// closing an already closed flag still notifies
	f.Close()
	require.Equal(t, []State{
		{Open: true, TaskID: 42, ColumnLabel: "In Progress"},
		{},
		{},
	}, seen)
}

func TestFlagsAreIndependent(t *testing.T) {
	t.Parallel()

	a, b := New(), New()
	calls := 0
	b.AddListener(func() { calls++ })
	a.Open(1, "To Do")
	require.Zero(t, calls)
	require.False(t, b.IsOpen())
}
