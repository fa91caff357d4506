package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/kanban/internal/assignee"
	"github.com/jask/kanban/internal/board"
	"github.com/jask/kanban/internal/modal"
)

// App is the bubbletea model for the board view.
type App struct {
	store     *board.Store
	modal     *modal.Flag
	persister *board.Persister

	columns []board.Column
	col     int
	row     int
	width   int
	mode    inputMode
	status  string

	// prompt backs the single-line inputs (new task, new column, rename,
	// filter); title and desc back the edit modal.
	prompt  textinput.Model
	title   textinput.Model
	desc    textinput.Model
	editing editTarget
}

type inputMode string

const (
	modeBoard        inputMode = "board"
	modeNewTask      inputMode = "newTask"
	modeNewColumn    inputMode = "newColumn"
	modeRenameColumn inputMode = "renameColumn"
	modeFilter       inputMode = "filter"
	modeConfirm      inputMode = "confirmDeleteColumn"
)

// editTarget identifies the task loaded into the edit modal.
type editTarget struct {
	id     int64
	label  string
	active bool
}

// messages
type boardChangedMsg struct{}
type modalChangedMsg struct{}

// New builds the board view. persister may be nil; when set, failed saves
// are surfaced in the status line.
func New(store *board.Store, flag *modal.Flag, persister *board.Persister) *App {
	a := &App{
		store:     store,
		modal:     flag,
		persister: persister,
		mode:      modeBoard,
		width:     100,
		prompt:    newInput("", 0),
		title:     newInput("Title", 120),
		desc:      newInput("Description", 500),
	}
	a.reload()
	a.syncModal()
	return a
}

func newInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	if limit > 0 {
		in.CharLimit = limit
	}
	return in
}

// Attach forwards store and modal notifications into p. Listeners can fire
// from inside Update, so messages are sent from their own goroutine.
func (a *App) Attach(p *tea.Program) (detach func()) {
	rmBoard := a.store.AddListener(func() { go p.Send(boardChangedMsg{}) })
	rmModal := a.modal.AddListener(func() { go p.Send(modalChangedMsg{}) })
	return func() {
		rmBoard()
		rmModal()
	}
}

func (a *App) Init() tea.Cmd {
	return nil
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = m.Width
	case boardChangedMsg:
		a.reload()
	case modalChangedMsg:
		a.syncModal()
	case tea.KeyMsg:
		if m.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.editing.active {
			return a.handleEditKey(m)
		}
		if a.mode != modeBoard {
			return a.handlePromptKey(m)
		}
		return a.handleBoardKey(m)
	}
	return a, nil
}

func (a *App) handleBoardKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	a.status = ""
	switch m.String() {
	case "q":
		return a, tea.Quit
	case "left", "h":
		if a.col > 0 {
			a.col--
			a.clampRow()
		}
	case "right", "l":
		if a.col < len(a.columns)-1 {
			a.col++
			a.clampRow()
		}
	case "up", "k":
		if a.row > 0 {
			a.row--
		}
	case "down", "j":
		if a.row < len(a.currentTasks())-1 {
			a.row++
		}
	case "H":
		a.moveAcross(-1)
	case "L":
		a.moveAcross(1)
	case "K":
		a.moveWithin(-1)
	case "J":
		a.moveWithin(1)
	case "enter", "e":
		if t, ok := a.currentTask(); ok {
			a.modal.Open(t.ID, a.columns[a.col].Label)
			a.syncModal()
		}
	case "x":
		if t, ok := a.currentTask(); ok {
			a.applied(a.store.DeleteTask(t.ID, a.columns[a.col].Label), "task deleted")
		}
	case "a":
		a.assignNext()
	case "u":
		a.unassignLast()
	case "n":
		if len(a.columns) == 0 {
			a.status = "add a column first"
			return a, nil
		}
		return a, a.startPrompt(modeNewTask, "new task> ", "")
	case "N":
		return a, a.startPrompt(modeNewColumn, "new column> ", "")
	case "r":
		if len(a.columns) > 0 {
			return a, a.startPrompt(modeRenameColumn, "rename> ", a.columns[a.col].Label)
		}
	case "X":
		if len(a.columns) > 0 {
			a.mode = modeConfirm
		}
	case "/":
		return a, a.startPrompt(modeFilter, "/", a.store.Filter())
	case "esc":
		if a.store.Filter() != "" {
			a.store.UpdateFilter("")
			a.reload()
		}
	}
	return a, nil
}

func (a *App) startPrompt(mode inputMode, label, value string) tea.Cmd {
	a.mode = mode
	a.prompt.Prompt = label
	a.prompt.SetValue(value)
	a.prompt.CursorEnd()
	return a.prompt.Focus()
}

func (a *App) endPrompt() {
	a.mode = modeBoard
	a.prompt.Blur()
	a.prompt.SetValue("")
}

func (a *App) handlePromptKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.mode == modeConfirm {
		if len(a.columns) == 0 {
			a.mode = modeBoard
			return a, nil
		}
		switch m.String() {
		case "y", "Y":
			label := a.columns[a.col].Label
			a.applied(a.store.DeleteColumn(label), "column "+label+" deleted")
			if a.col >= len(a.columns) && a.col > 0 {
				a.col--
			}
			a.clampRow()
			a.mode = modeBoard
		case "n", "N", "esc":
			a.mode = modeBoard
		}
		return a, nil
	}

	switch m.Type {
	case tea.KeyEsc:
		if a.mode == modeFilter {
			a.store.UpdateFilter("")
			a.reload()
		}
		a.endPrompt()
		return a, nil
	case tea.KeyEnter:
		a.submitPrompt(strings.TrimSpace(a.prompt.Value()))
		a.endPrompt()
		return a, nil
	}

	var cmd tea.Cmd
	a.prompt, cmd = a.prompt.Update(m)
	if a.mode == modeFilter {
		a.store.UpdateFilter(a.prompt.Value())
		a.reload()
	}
	return a, cmd
}

func (a *App) submitPrompt(text string) {
	switch a.mode {
	case modeNewTask:
		if text == "" {
			a.status = "enter a title"
			return
		}
		label := a.columns[a.col].Label
		if _, ok := a.store.AddTask(text, "", label); ok {
			a.reload()
			a.row = len(a.currentTasks()) - 1
			a.status = "task added to " + label
		}
	case modeNewColumn:
		if text == "" {
			a.status = "enter a label"
			return
		}
		final := a.store.AddColumn(text)
		a.reload()
		a.col = len(a.columns) - 1
		a.row = 0
		a.status = "column " + final + " added"
	case modeRenameColumn:
		if text == "" {
			a.status = "enter a label"
			return
		}
		a.applied(a.store.UpdateColumnLabel(a.columns[a.col].Label, text), "column renamed")
	case modeFilter:
		a.store.UpdateFilter(text)
		a.reload()
		if f := a.store.Filter(); f != "" {
			a.status = "filter: " + f
		}
	}
}

func (a *App) handleEditKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Type {
	case tea.KeyEsc:
		a.modal.Close()
		a.syncModal()
		return a, nil
	case tea.KeyTab, tea.KeyShiftTab:
		if a.title.Focused() {
			a.title.Blur()
			return a, a.desc.Focus()
		}
		a.desc.Blur()
		return a, a.title.Focus()
	case tea.KeyEnter:
		title := strings.TrimSpace(a.title.Value())
		if title == "" {
			a.status = "title cannot be empty"
			return a, nil
		}
		a.applied(a.store.EditTask(a.editing.label, a.editing.id, title, a.desc.Value()), "task saved")
		a.modal.Close()
		a.syncModal()
		return a, nil
	}
	var cmd tea.Cmd
	if a.title.Focused() {
		a.title, cmd = a.title.Update(m)
	} else {
		a.desc, cmd = a.desc.Update(m)
	}
	return a, cmd
}

// syncModal loads or drops the editor to match the modal flag, which may
// also be driven from outside the view.
func (a *App) syncModal() {
	st := a.modal.State()
	if !st.Open {
		a.editing = editTarget{}
		a.title.Blur()
		a.desc.Blur()
		return
	}
	if a.editing.active && a.editing.id == st.TaskID && a.editing.label == st.ColumnLabel {
		return
	}
	t, ok := a.store.Task(st.TaskID, st.ColumnLabel)
	if !ok {
		a.status = fmt.Sprintf("task %d not found in %s", st.TaskID, st.ColumnLabel)
		a.modal.Close()
		a.editing = editTarget{}
		return
	}
	a.editing = editTarget{id: t.ID, label: st.ColumnLabel, active: true}
	a.title.SetValue(t.Title)
	a.title.CursorEnd()
	a.desc.SetValue(t.Description)
	a.desc.CursorEnd()
	a.desc.Blur()
	a.title.Focus()
}

func (a *App) moveAcross(delta int) {
	t, ok := a.currentTask()
	if !ok {
		return
	}
	to := a.col + delta
	if to < 0 || to >= len(a.columns) {
		return
	}
	from, target := a.columns[a.col].Label, a.columns[to]
	if !a.applied(a.store.MoveTask(t.ID, from, target.Label, a.boardIndex(target, a.row)), "") {
		return
	}
	a.col = to
	a.focusTask(t.ID)
}

func (a *App) moveWithin(delta int) {
	t, ok := a.currentTask()
	if !ok {
		return
	}
	to := a.row + delta
	if to < 0 || to >= len(a.currentTasks()) {
		return
	}
	// Taking the neighbour's board position lands the task on the far side
	// of it, skipping any tasks hidden by the filter.
	c := a.columns[a.col]
	if a.applied(a.store.MoveTask(t.ID, c.Label, c.Label, a.boardIndex(c, to)), "") {
		a.focusTask(t.ID)
	}
}

// boardIndex converts a row of the visible, possibly filtered, column c into
// a position in the unfiltered column. Rows past the last visible task map
// to just after it.
func (a *App) boardIndex(c board.Column, row int) int {
	if len(c.Tasks) == 0 {
		return 0
	}
	if row < len(c.Tasks) {
		if i, ok := a.store.TaskIndex(c.Tasks[row].ID, c.Label); ok {
			return i
		}
		return row
	}
	if i, ok := a.store.TaskIndex(c.Tasks[len(c.Tasks)-1].ID, c.Label); ok {
		return i + 1
	}
	return row
}

func (a *App) assignNext() {
	t, ok := a.currentTask()
	if !ok {
		return
	}
	free := assignee.Unassigned(t.Assignees)
	if len(free) == 0 {
		a.status = "everyone is already assigned"
		return
	}
	a.applied(a.store.AddAssignee(t.ID, a.columns[a.col].Label, free[0].Name), "assigned "+string(free[0].Name))
}

func (a *App) unassignLast() {
	t, ok := a.currentTask()
	if !ok || len(t.Assignees) == 0 {
		return
	}
	last := t.Assignees[len(t.Assignees)-1].Name
	a.applied(a.store.RemoveAssignee(t.ID, a.columns[a.col].Label, last), "unassigned "+string(last))
}

// applied refreshes the view after a store call and reports the outcome.
func (a *App) applied(ok bool, msg string) bool {
	a.reload()
	switch {
	case !ok:
		a.status = "nothing changed"
	case msg != "":
		a.status = msg
	}
	if a.persister != nil {
		if err := a.persister.Err(); err != nil {
			a.status = "save failed: " + err.Error()
		}
	}
	return ok
}

func (a *App) reload() {
	a.columns = a.store.Columns()
	if a.col >= len(a.columns) {
		a.col = max(0, len(a.columns)-1)
	}
	a.clampRow()
}

func (a *App) clampRow() {
	n := len(a.currentTasks())
	if a.row >= n {
		a.row = max(0, n-1)
	}
}

func (a *App) focusTask(id int64) {
	for i, t := range a.currentTasks() {
		if t.ID == id {
			a.row = i
			return
		}
	}
	a.clampRow()
}

func (a *App) currentTasks() []board.Task {
	if a.col >= len(a.columns) {
		return nil
	}
	return a.columns[a.col].Tasks
}

func (a *App) currentTask() (board.Task, bool) {
	tasks := a.currentTasks()
	if a.row < 0 || a.row >= len(tasks) {
		return board.Task{}, false
	}
	return tasks[a.row], true
}
