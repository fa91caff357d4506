package board

import (
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/jask/kanban/internal/assignee"
)

// Encode serializes cols as the stored JSON array of columns.
func Encode(cols []Column) ([]byte, error) {
	data, err := sonic.ConfigStd.Marshal(normalize(cols))
	if err != nil {
		return nil, fmt.Errorf("encode board: %w", err)
	}
	return data, nil
}

// Decode parses a stored snapshot. Missing task or assignee lists decode as
// empty ones.
func Decode(data []byte) ([]Column, error) {
	var cols []Column
	if err := sonic.ConfigStd.Unmarshal(data, &cols); err != nil {
		return nil, fmt.Errorf("decode board: %w", err)
	}
	if cols == nil {
		return nil, fmt.Errorf("decode board: snapshot is not a column array")
	}
	return normalize(cols), nil
}

func normalize(cols []Column) []Column {
	out := make([]Column, len(cols))
	for i, c := range cols {
		if c.Tasks == nil {
			c.Tasks = []Task{}
		}
		for j := range c.Tasks {
			if c.Tasks[j].Assignees == nil {
				c.Tasks[j].Assignees = []assignee.Assignee{}
			}
		}
		out[i] = c
	}
	return out
}

// Snapshot serializes the full, unfiltered board.
func (s *Store) Snapshot() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Encode(s.columns)
}

// Restore replaces the whole board with a decoded snapshot and notifies.
// The filter keyword is kept.
func (s *Store) Restore(data []byte) error {
	cols, err := Decode(data)
	if err != nil {
		return err
	}
	s.mutate(func() bool {
		s.columns = cols
		s.ids.observe(cols)
		return true
	})
	return nil
}
