package menu

import "strings"

// Changes records which observable properties of a menu or button differ from
// the last rendered snapshot. A zero value means the cached render is valid.
type Changes uint8

const (
	// ChangedText marks a text change. On a menu it refers to the message
	// body; on a button to its label.
	ChangedText Changes = 1 << iota
	// ChangedVisibility marks a hidden flag flip.
	ChangedVisibility
	// ChangedLayout marks a keyboard shape change: full-width flips, buttons
	// added or removed, or button labels changed inside a menu.
	ChangedLayout
	// NeedsDraw marks a node that was never rendered, or whose last render
	// never reached the transport.
	NeedsDraw
	// NeedsRebuildCheck forces every button to be re-evaluated before the
	// render decision is made.
	NeedsRebuildCheck
)

var changeNames = []struct {
	flag Changes
	name string
}{
	{ChangedText, "text"},
	{ChangedVisibility, "visibility"},
	{ChangedLayout, "layout"},
	{NeedsDraw, "draw"},
	{NeedsRebuildCheck, "rebuild"},
}

// Has reports whether any of the given flags are set.
func (c Changes) Has(flags Changes) bool {
	return c&flags != 0
}

// Clean reports whether no flag is set.
func (c Changes) Clean() bool {
	return c == 0
}

func (c Changes) String() string {
	if c == 0 {
		return "clean"
	}
	parts := make([]string, 0, len(changeNames))
	for _, n := range changeNames {
		if c.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}
