package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jask/kanban/internal/assignee"
	"github.com/jask/kanban/internal/board"
)

// columnError explains a missing column, with a hint when a close label exists.
func columnError(s *board.Store, label string) error {
	if hint, ok := s.SuggestLabel(label); ok {
		return fmt.Errorf("no column %q (did you mean %q?)", label, hint)
	}
	return fmt.Errorf("no column %q", label)
}

func taskError(s *board.Store, label string, id int64) error {
	for _, l := range s.Labels() {
		if l == label {
			return fmt.Errorf("no task %d in column %q", id, label)
		}
	}
	return columnError(s, label)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid task id %q", raw)
	}
	return id, nil
}

func resolveAssignee(raw string) (assignee.Name, error) {
	name, ok := assignee.Closest(raw)
	if !ok {
		names := make([]string, 0, len(assignee.All()))
		for _, a := range assignee.All() {
			names = append(names, string(a.Name))
		}
		return "", fmt.Errorf("unknown assignee %q (choose from %s)", raw, strings.Join(names, ", "))
	}
	return name, nil
}

func newColumnCmd(f *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "column",
		Aliases: []string{"col"},
		Short:   "List and change columns",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "ls",
			Short: "List columns with their task counts",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withEnv(cmd, f, func(e *env) error {
					counts := e.store.TaskCounts()
					for _, label := range e.store.Labels() {
						fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", label, counts[label])
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "add <label>",
			Short: "Append a column; taken labels get a numeric suffix",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withEnv(cmd, f, func(e *env) error {
					label := e.store.AddColumn(args[0])
					if err := e.saved(); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), label)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "rm <label>",
			Short: "Delete a column and its tasks",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withEnv(cmd, f, func(e *env) error {
					if !e.store.DeleteColumn(args[0]) {
						return columnError(e.store, args[0])
					}
					return e.saved()
				})
			},
		},
		&cobra.Command{
			Use:   "rename <label> <new-label>",
			Short: "Rename a column",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withEnv(cmd, f, func(e *env) error {
					if !e.store.UpdateColumnLabel(args[0], args[1]) {
						return columnError(e.store, args[0])
					}
					return e.saved()
				})
			},
		},
	)
	return cmd
}

func newTaskCmd(f *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "List and change tasks",
	}
	cmd.AddCommand(
		newTaskLsCmd(f),
		newTaskAddCmd(f),
		newTaskEditCmd(f),
		newTaskRmCmd(f),
		newTaskMvCmd(f),
		newTaskAssignCmd(f, true),
		newTaskAssignCmd(f, false),
	)
	return cmd
}

func newTaskLsCmd(f *rootFlags) *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "ls [column]",
		Short: "List tasks, optionally for one column",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, f, func(e *env) error {
				if len(args) == 1 && !containsLabel(e.store.Labels(), args[0]) {
					return columnError(e.store, args[0])
				}
				if filter != "" {
					e.store.UpdateFilter(filter)
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, c := range e.store.Columns() {
					if len(args) == 1 && c.Label != args[0] {
						continue
					}
					for _, t := range c.Tasks {
						fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", t.ID, c.Label, t.Title, assigneeNames(t))
					}
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "only tasks whose title or description contains this (3+ characters)")
	return cmd
}

func containsLabel(labels []string, label string) bool {
	for _, l := range labels {
		if l == label {
			return true
		}
	}
	return false
}

func assigneeNames(t board.Task) string {
	names := make([]string, 0, len(t.Assignees))
	for _, a := range t.Assignees {
		names = append(names, string(a.Name))
	}
	return strings.Join(names, ",")
}

func newTaskAddCmd(f *rootFlags) *cobra.Command {
	var desc string
	cmd := &cobra.Command{
		Use:   "add <column> <title>",
		Short: "Append a task to a column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, f, func(e *env) error {
				t, ok := e.store.AddTask(args[1], desc, args[0])
				if !ok {
					return columnError(e.store, args[0])
				}
				if err := e.saved(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), t.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&desc, "desc", "d", "", "task description")
	return cmd
}

func newTaskEditCmd(f *rootFlags) *cobra.Command {
	var title, desc string
	cmd := &cobra.Command{
		Use:   "edit <column> <id>",
		Short: "Change a task's title and/or description",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			setTitle, setDesc := cmd.Flags().Changed("title"), cmd.Flags().Changed("desc")
			if !setTitle && !setDesc {
				return fmt.Errorf("nothing to change: pass --title and/or --desc")
			}
			return withEnv(cmd, f, func(e *env) error {
				var ok bool
				switch {
				case setTitle && setDesc:
					ok = e.store.EditTask(args[0], id, title, desc)
				case setTitle:
					ok = e.store.UpdateTaskTitle(id, args[0], title)
				default:
					ok = e.store.UpdateTaskDescription(id, args[0], desc)
				}
				if !ok {
					return taskError(e.store, args[0], id)
				}
				return e.saved()
			})
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&desc, "desc", "d", "", "new description")
	return cmd
}

func newTaskRmCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <column> <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			return withEnv(cmd, f, func(e *env) error {
				if !e.store.DeleteTask(id, args[0]) {
					return taskError(e.store, args[0], id)
				}
				return e.saved()
			})
		},
	}
}

func newTaskMvCmd(f *rootFlags) *cobra.Command {
	var index int
	cmd := &cobra.Command{
		Use:   "mv <column> <id> <to-column>",
		Short: "Move a task to another column",
		Long: `Move a task to another column, appending it unless --index is given.

A negative index counts from the end of the destination column.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			return withEnv(cmd, f, func(e *env) error {
				var ok bool
				if cmd.Flags().Changed("index") {
					ok = e.store.MoveTask(id, args[0], args[2], index)
				} else {
					ok = e.store.UpdateTaskLabel(id, args[0], args[2])
				}
				if !ok {
					if !containsLabel(e.store.Labels(), args[2]) {
						return columnError(e.store, args[2])
					}
					return taskError(e.store, args[0], id)
				}
				return e.saved()
			})
		},
	}
	cmd.Flags().IntVarP(&index, "index", "i", 0, "position in the destination column")
	return cmd
}

func newTaskAssignCmd(f *rootFlags, assign bool) *cobra.Command {
	use, short := "assign <column> <id> <assignee>", "Add an assignee to a task"
	if !assign {
		use, short = "unassign <column> <id> <assignee>", "Remove an assignee from a task"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			name, err := resolveAssignee(args[2])
			if err != nil {
				return err
			}
			return withEnv(cmd, f, func(e *env) error {
				var ok bool
				if assign {
					ok = e.store.AddAssignee(id, args[0], name)
				} else {
					ok = e.store.RemoveAssignee(id, args[0], name)
				}
				if !ok {
					return taskError(e.store, args[0], id)
				}
				return e.saved()
			})
		},
	}
}
