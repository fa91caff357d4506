package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/jask/kanban/internal/board"
)

// styles
var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	columnStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	focusedColumn = columnStyle.BorderForeground(lipgloss.Color("205"))
	headerStyle   = lipgloss.NewStyle().Bold(true)
	cursorStyle   = lipgloss.NewStyle().Reverse(true)
	dimStyle      = lipgloss.NewStyle().Faint(true)
	modalStyle    = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).Padding(0, 1)
)

const minColumnWidth = 18

func (a *App) View() string {
	var b strings.Builder
	header := "Board"
	if f := a.store.Filter(); f != "" {
		header += fmt.Sprintf(" (filter: %s)", f)
	}
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n")
	b.WriteString(a.renderColumns())
	b.WriteString("\n")

	switch {
	case a.editing.active:
		b.WriteString(a.renderModal())
		b.WriteString("\n")
	case a.mode == modeConfirm && len(a.columns) > 0:
		b.WriteString(fmt.Sprintf("Delete column %q and its tasks? [y] Yes  [n] No\n", a.columns[a.col].Label))
	case a.mode != modeBoard && a.mode != modeConfirm:
		b.WriteString(a.prompt.View())
		b.WriteString("\n")
	}

	b.WriteString(dimStyle.Render("[h/l] Column  [j/k] Task  [H/L] Move  [J/K] Reorder  [n] New task  [e] Edit  [x] Delete  [a/u] Assign  [N] New column  [r] Rename  [X] Delete column  [/] Filter  [q] Quit"))
	if a.status != "" {
		b.WriteString("\n" + a.status)
	}
	return b.String()
}

func (a *App) columnWidth() int {
	if len(a.columns) == 0 {
		return minColumnWidth
	}
	// border and padding take four cells per column
	return max(minColumnWidth, a.width/len(a.columns)-4)
}

func (a *App) renderColumns() string {
	if len(a.columns) == 0 {
		return dimStyle.Render("No columns yet. Press N to add one.")
	}
	w := a.columnWidth()
	rendered := make([]string, 0, len(a.columns))
	for i, c := range a.columns {
		style := columnStyle
		if i == a.col {
			style = focusedColumn
		}
		rendered = append(rendered, style.Width(w).Render(a.renderColumn(i, c, w)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (a *App) renderColumn(idx int, c board.Column, w int) string {
	lines := []string{headerStyle.Render(ansi.Truncate(fmt.Sprintf("%s (%d)", c.Label, len(c.Tasks)), w, "…"))}
	if len(c.Tasks) == 0 {
		lines = append(lines, dimStyle.Render("(empty)"))
	}
	for j, t := range c.Tasks {
		title := ansi.Truncate(t.Title, w-2, "…")
		if idx == a.col && j == a.row {
			title = cursorStyle.Render(title)
		}
		lines = append(lines, "▪ "+title)
		if who := assigneeLine(t); who != "" {
			lines = append(lines, dimStyle.Render(ansi.Truncate("  "+who, w, "…")))
		}
	}
	return strings.Join(lines, "\n")
}

func assigneeLine(t board.Task) string {
	if len(t.Assignees) == 0 {
		return ""
	}
	names := make([]string, 0, len(t.Assignees))
	for _, as := range t.Assignees {
		names = append(names, "@"+string(as.Name))
	}
	return strings.Join(names, " ")
}

func (a *App) renderModal() string {
	out := titleStyle.Render(fmt.Sprintf("Edit task %d (%s)", a.editing.id, a.editing.label)) + "\n"
	out += a.title.View() + "\n" + a.desc.View() + "\n"
	out += "[tab] Switch field  [enter] Save  [esc] Cancel"
	return modalStyle.Render(out)
}
