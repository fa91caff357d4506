package board

import (
	"strings"
	"unicode/utf8"
)

// MinFilterLen is the shortest keyword that activates filtering.
const MinFilterLen = 3

func normalizeFilter(keyword string) string {
	if utf8.RuneCountInString(keyword) < MinFilterLen {
		return ""
	}
	return keyword
}

func (t Task) matches(keyword string) bool {
	kw := strings.ToLower(keyword)
	return strings.Contains(strings.ToLower(t.Title), kw) ||
		strings.Contains(strings.ToLower(t.Description), kw)
}

// filterColumns returns copies of cols whose task lists hold only matching
// tasks. Columns are never dropped.
func filterColumns(cols []Column, keyword string) []Column {
	out := make([]Column, 0, len(cols))
	for _, c := range cols {
		fc := Column{Label: c.Label, Tasks: []Task{}}
		for _, t := range c.Tasks {
			if t.matches(keyword) {
				fc.Tasks = append(fc.Tasks, t.clone())
			}
		}
		out = append(out, fc)
	}
	return out
}
