package board

import "time"

// idGen hands out task ids derived from the clock in Unix milliseconds.
// Ids are strictly increasing, so two tasks created within the same
// millisecond still get distinct ids.
type idGen struct {
	now  func() time.Time
	last int64
}

func (g *idGen) next() int64 {
	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}

func (g *idGen) observe(cols []Column) {
	for _, c := range cols {
		for _, t := range c.Tasks {
			if t.ID > g.last {
				g.last = t.ID
			}
		}
	}
}
