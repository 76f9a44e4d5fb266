package menu

import (
	"strings"

	"github.com/atomicstack/inline-menus/internal/logging/events"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Key is a finalized button ready for a transport. Exactly one of URL and
// Action is set; Action is the event path a press reports back.
type Key struct {
	ID     string
	Text   string
	Hidden bool
	Full   bool
	URL    string
	Action string
}

// Keyboard is the ordered rows of a rendered menu. A cached keyboard is
// shared between renders and must not be modified.
type Keyboard [][]Key

// Visible drops hidden keys and the rows they leave empty.
func (k Keyboard) Visible() Keyboard {
	out := make(Keyboard, 0, len(k))
	for _, row := range k {
		var visible []Key
		for _, key := range row {
			if !key.Hidden {
				visible = append(visible, key)
			}
		}
		if len(visible) > 0 {
			out = append(out, visible)
		}
	}
	return out
}

// Len returns the number of keys, hidden ones included.
func (k Keyboard) Len() int {
	n := 0
	for _, row := range k {
		n += len(row)
	}
	return n
}

// String dumps the visible keys, one row per line.
func (k Keyboard) String() string {
	var b strings.Builder
	for i, row := range k.Visible() {
		if i > 0 {
			b.WriteByte('\n')
		}
		for j, key := range row {
			if j > 0 {
				b.WriteByte(' ')
			}
			b.WriteByte('[')
			b.WriteString(key.Text)
			if key.URL != "" {
				b.WriteString(" ↗")
			}
			b.WriteByte(']')
		}
	}
	return b.String()
}

// Op is what a transport must do with a frame.
type Op int

const (
	// OpNone means the shown message is already current.
	OpNone Op = iota
	// OpReplace sends or edits the whole message.
	OpReplace
	// OpPatchKeyboard edits only the keyboard of the shown message.
	OpPatchKeyboard
)

func (o Op) String() string {
	switch o {
	case OpReplace:
		return "replace"
	case OpPatchKeyboard:
		return "patch-keyboard"
	default:
		return "none"
	}
}

// Frame is the render of one menu handed to a transport.
type Frame struct {
	Tree     string
	Menu     string
	Text     string
	Keyboard Keyboard
	Op       Op
}

var keyIdentity = cmp.Options{
	cmp.Comparer(func(a, b Key) bool {
		return a.ID == b.ID && a.Text == b.Text && a.Hidden == b.Hidden
	}),
	cmpopts.EquateEmpty(),
}

// KeyboardChanged reports whether two keyboards differ in shape or in any
// key's id, text, or hidden state.
func KeyboardChanged(prev, next Keyboard) bool {
	return !cmp.Equal(prev, next, keyIdentity)
}

// Render lays out the keyboard. A full-width button always sits on its own
// row. A menu with no pending changes and a cached render returns the cache
// unless it is impure. Dynamic menus are built first if they never were.
func (m *Menu) Render() (Keyboard, error) {
	if err := m.ensureBuilt(); err != nil {
		return nil, err
	}
	if m.changes.Clean() && m.keyboard != nil && !m.impure {
		return m.keyboard, nil
	}
	force := m.changes.Has(NeedsRebuildCheck)
	width := m.tree.rowWidth
	rows := make(Keyboard, 0, m.buttons.Len())
	var row []Key
	visible := 0
	flush := func() {
		if len(row) > 0 {
			rows = append(rows, row)
		}
		row = nil
		visible = 0
	}
	for _, kv := range m.buttons.Order {
		key := kv.Value.finalize(force)
		if key.Full {
			flush()
			rows = append(rows, []Key{key})
			continue
		}
		row = append(row, key)
		if !key.Hidden {
			visible++
		}
		if width > 0 && visible >= width {
			flush()
		}
	}
	flush()
	m.keyboard = rows
	m.changes = 0
	return rows, nil
}

// Draw renders m and decides what the transport must do with the result by
// comparing against the previous frame: a never-drawn menu or a changed
// message text needs a full replace, a keyboard difference needs a patch,
// and anything else needs nothing.
func (m *Menu) Draw() (Frame, error) {
	pending := m.changes
	prev := m.frame
	kb, err := m.Render()
	if err != nil {
		m.Invalidate()
		return Frame{}, err
	}
	f := Frame{
		Tree:     m.tree.ID(),
		Menu:     m.Path(),
		Text:     m.text,
		Keyboard: kb,
	}
	switch {
	case prev == nil, pending.Has(NeedsDraw), prev.Text != f.Text:
		f.Op = OpReplace
	case KeyboardChanged(prev.Keyboard, kb):
		f.Op = OpPatchKeyboard
	default:
		f.Op = OpNone
	}
	m.frame = &f
	events.Render.Frame(f.Tree, f.Menu, f.Op.String(), pending.String())
	return f, nil
}

// LastFrame returns the most recent frame produced by Draw.
func (m *Menu) LastFrame() (Frame, bool) {
	if m.frame == nil {
		return Frame{}, false
	}
	return *m.frame, true
}
