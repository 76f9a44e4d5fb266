package state

import "github.com/atomicstack/inline-menus/internal/menu"

// Item is one visible key of a rendered keyboard.
type Item struct {
	ID     string
	Label  string
	Row    int
	URL    string
	Action string
}

// ItemsFromKeyboard flattens the visible keys of kb in row order.
func ItemsFromKeyboard(kb menu.Keyboard) []Item {
	var items []Item
	for r, row := range kb.Visible() {
		for _, key := range row {
			items = append(items, Item{
				ID:     key.ID,
				Label:  key.Text,
				Row:    r,
				URL:    key.URL,
				Action: key.Action,
			})
		}
	}
	return items
}

// CloneItems produces a shallow copy of the provided items.
func CloneItems(items []Item) []Item {
	dup := make([]Item, len(items))
	copy(dup, items)
	return dup
}
