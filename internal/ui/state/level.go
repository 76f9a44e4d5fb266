package state

import (
	"strings"

	"github.com/atomicstack/inline-menus/internal/menu"
)

// Level holds what the screen shows for one tree: the message of its shown
// menu, the visible keys and the cursor, filter and viewport over them.
type Level struct {
	Tree           string
	ID             string
	Title          string
	Items          []Item
	Full           []Item
	Filter         string
	FilterCursor   int
	Cursor         int
	LastCursor     int
	ViewportOffset int
	// Closed is set once the keyboard was taken away and only the message
	// text remains.
	Closed bool
}

// NewLevel constructs a Level from a rendered frame.
func NewLevel(f menu.Frame) *Level {
	l := &Level{
		Tree:       f.Tree,
		Cursor:     -1,
		LastCursor: -1,
	}
	l.Apply(f)
	return l
}

// Apply takes over a new frame for the same tree. The cursor stays on the
// key it was on when that key survives; a different menu starts at the top
// with the filter cleared.
func (l *Level) Apply(f menu.Frame) {
	if f.Menu != l.ID {
		l.ID = f.Menu
		l.Filter = ""
		l.FilterCursor = 0
		l.Cursor = 0
		l.LastCursor = -1
		l.ViewportOffset = 0
	}
	l.Title = f.Text
	l.Closed = false
	l.UpdateItems(ItemsFromKeyboard(f.Keyboard))
}

// IsRoot reports whether the shown menu is the root of its tree.
func (l *Level) IsRoot() bool {
	return strings.Count(strings.Trim(l.ID, "/"), "/") == 0
}

// Segments returns the menu path split into its ids.
func (l *Level) Segments() []string {
	trimmed := strings.Trim(l.ID, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// IndexOf returns the index for a given key id.
func (l *Level) IndexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, item := range l.Items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// Current returns the item under the cursor.
func (l *Level) Current() (Item, bool) {
	if l.Closed || l.Cursor < 0 || l.Cursor >= len(l.Items) {
		return Item{}, false
	}
	return l.Items[l.Cursor], true
}

// UpdateItems refreshes the keys while keeping the cursor on the same key id
// when possible.
func (l *Level) UpdateItems(items []Item) {
	var keep string
	if cur, ok := l.Current(); ok {
		keep = cur.ID
	}
	prevOffset := l.ViewportOffset
	l.Full = CloneItems(items)
	l.applyFilter()
	if idx := l.IndexOf(keep); idx >= 0 {
		l.Cursor = idx
	}
	if len(l.Items) == 0 {
		l.ViewportOffset = 0
		return
	}
	if prevOffset < 0 || prevOffset > l.lineCount()-1 {
		l.ViewportOffset = 0
		return
	}
	l.ViewportOffset = prevOffset
}

// Close drops the keyboard and leaves text as the message body.
func (l *Level) Close(text string) {
	if text != "" {
		l.Title = text
	}
	l.Closed = true
	l.Items = nil
	l.Full = nil
	l.Filter = ""
	l.FilterCursor = 0
	l.Cursor = 0
	l.ViewportOffset = 0
}
