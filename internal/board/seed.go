package board

import "github.com/jask/kanban/internal/assignee"

// Seed returns the demo board used when storage holds no snapshot.
func Seed() []Column {
	a := assignee.MustLookup
	return []Column{
		{
			Label: "To Do",
			Tasks: []Task{{
				ID:          1,
				Title:       "Carve Pumpkin",
				Description: "Create jack-o'-lanterns for the front porch. Don't forget the LED candles!",
				Label:       "To Do",
				Assignees:   []assignee.Assignee{a(assignee.Pumpkin)},
			}},
		},
		{
			Label: "In Progress",
			Tasks: []Task{{
				ID:          2,
				Title:       "Prepare Witch Costume",
				Description: "This year's theme: Wicked Witch!  Find the pointy hat and broomstick.",
				Label:       "In Progress",
				Assignees:   []assignee.Assignee{a(assignee.Dracula), a(assignee.Ghost)},
			}},
		},
		{
			Label: "Done",
			Tasks: []Task{{
				ID:          3,
				Title:       "Stock Up on Treats",
				Description: "Buy candy, cookies, and other treats for Halloween.",
				Label:       "Done",
				Assignees:   []assignee.Assignee{a(assignee.Hat), a(assignee.Spider)},
			}},
		},
	}
}
