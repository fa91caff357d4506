// Package assignee holds the fixed catalog of avatar identities that can be
// attached to tasks.
package assignee

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Name identifies a catalog entry.
type Name string

const (
	Pumpkin Name = "pumpkin"
	Dracula Name = "dracula"
	Ghost   Name = "ghost"
	Hat     Name = "hat"
	Spider  Name = "spider"
)

// Assignee is an immutable catalog value.
type Assignee struct {
	Name Name   `json:"name"`
	Src  string `json:"src"`
}

var order = []Name{Pumpkin, Dracula, Ghost, Hat, Spider}

var catalog = map[Name]Assignee{
	Pumpkin: {Name: Pumpkin, Src: "/assignee/pumpkin.svg"},
	Dracula: {Name: Dracula, Src: "/assignee/dracula.svg"},
	Ghost:   {Name: Ghost, Src: "/assignee/ghost.svg"},
	Hat:     {Name: Hat, Src: "/assignee/hat.svg"},
	Spider:  {Name: Spider, Src: "/assignee/spider.svg"},
}

// Valid reports whether n is part of the catalog.
func (n Name) Valid() bool {
	_, ok := catalog[n]
	return ok
}

// Lookup returns the catalog entry for name.
func Lookup(name Name) (Assignee, bool) {
	a, ok := catalog[name]
	return a, ok
}

// MustLookup is Lookup for names known at compile time.
func MustLookup(name Name) Assignee {
	a, ok := catalog[name]
	if !ok {
		panic("assignee: unknown name " + string(name))
	}
	return a
}

// All returns every catalog entry in catalog order.
func All() []Assignee {
	out := make([]Assignee, 0, len(order))
	for _, n := range order {
		out = append(out, catalog[n])
	}
	return out
}

// Unassigned returns the catalog entries, in catalog order, that do not
// appear in assignees.
func Unassigned(assignees []Assignee) []Assignee {
	taken := make(map[Name]struct{}, len(assignees))
	for _, a := range assignees {
		taken[a.Name] = struct{}{}
	}
	out := make([]Assignee, 0, len(order))
	for _, n := range order {
		if _, ok := taken[n]; ok {
			continue
		}
		out = append(out, catalog[n])
	}
	return out
}

// Closest resolves loosely typed input to a catalog name. Exact matches win.
// Otherwise input of at least three runes matches the nearest name within an
// edit distance of 2, or 1 for names shorter than four runes.
func Closest(input string) (Name, bool) {
	in := strings.ToLower(strings.TrimSpace(input))
	if in == "" {
		return "", false
	}
	if n := Name(in); n.Valid() {
		return n, true
	}
	if utf8.RuneCountInString(in) < 3 {
		return "", false
	}
	best, bestDist := Name(""), 3
	for _, n := range order {
		d := levenshtein.ComputeDistance(in, string(n))
		if d > tolerance(n) {
			continue
		}
		if d < bestDist {
			best, bestDist = n, d
		}
	}
	return best, best != ""
}

func tolerance(n Name) int {
	if utf8.RuneCountInString(string(n)) < 4 {
		return 1
	}
	return 2
}
