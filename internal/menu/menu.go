package menu

import (
	"strconv"
	"strings"
	"unicode"

	"cogentcore.org/core/base/ordmap"
)

// Menu is one screen: a message body plus an ordered set of buttons. The
// parent relation is kept as handles (menu id and button slot) resolved
// through the owning tree, which is the only owner of menu storage.
type Menu struct {
	tree     *Tree
	id       string
	text     string
	buttons  *ordmap.Map[string, *Button]
	parent   string
	slot     string
	index    int
	path     string
	changes  Changes
	impure   bool
	keyboard Keyboard
	frame    *Frame
	detached bool

	builder Builder
	built   bool
}

func newButtonMap() *ordmap.Map[string, *Button] {
	return ordmap.New[string, *Button]()
}

// ID returns the menu id, unique within its tree.
func (m *Menu) ID() string { return m.id }

// Text returns the message body.
func (m *Menu) Text() string { return m.text }

// Tree returns the owning tree.
func (m *Menu) Tree() *Tree { return m.tree }

// Index returns the creation-order position, or -1 once detached.
func (m *Menu) Index() int { return m.index }

// Changes returns the pending change flags.
func (m *Menu) Changes() Changes { return m.changes }

// IsRoot reports whether m is the root of its tree.
func (m *Menu) IsRoot() bool { return m.parent == "" }

// Detached reports whether m was removed from its tree.
func (m *Menu) Detached() bool { return m.detached }

// Impure reports whether some button in m or below it has a computed
// property, which makes the cached keyboard untrustworthy.
func (m *Menu) Impure() bool { return m.impure }

// Dynamic reports whether the menu content comes from a builder.
func (m *Menu) Dynamic() bool { return m.builder != nil }

// Path returns the concatenation of ancestor ids, such as "/main/sub/".
func (m *Menu) Path() string {
	if m.path != "" {
		return m.path
	}
	if m.parent == "" {
		m.path = "/" + m.id + "/"
		return m.path
	}
	if parent, ok := m.tree.byID[m.parent]; ok {
		m.path = parent.Path() + m.id + "/"
		return m.path
	}
	return "/" + m.id + "/"
}

// Parent returns the parent menu and the button that leads to m.
func (m *Menu) Parent() (*Menu, *Button, bool) {
	if m.parent == "" {
		return nil, nil, false
	}
	parent, ok := m.tree.byID[m.parent]
	if !ok {
		return nil, nil, false
	}
	b, _ := parent.buttons.ValueByKeyTry(m.slot)
	return parent, b, true
}

// Button returns the button with the given id.
func (m *Menu) Button(id string) (*Button, bool) {
	return m.buttons.ValueByKeyTry(id)
}

// Buttons returns the buttons in render order.
func (m *Menu) Buttons() []*Button {
	return m.buttons.Values()
}

// SetText replaces the message body. Empty input is ignored and writing the
// current value leaves the change flags untouched.
func (m *Menu) SetText(text string) {
	text = strings.TrimSpace(text)
	if text == "" || text == m.text {
		return
	}
	m.text = text
	m.changes |= ChangedText
}

// AddButton appends a button. An empty id is derived from the text.
func (m *Menu) AddButton(id, text string) (*Button, error) {
	text, err := cleanText(text)
	if err != nil {
		return nil, constructionErr("add button", id, err)
	}
	if strings.TrimSpace(id) == "" {
		id = m.uniqueButtonID(text)
	}
	id, err = cleanID(id)
	if err != nil {
		return nil, constructionErr("add button", id, err)
	}
	if _, dup := m.buttons.ValueByKeyTry(id); dup {
		return nil, constructionErr("add button", id, ErrDuplicateID)
	}
	b := &Button{id: id, text: text, owner: m, changes: NeedsDraw}
	m.buttons.Add(id, b)
	m.changes |= ChangedLayout
	return b, nil
}

// AddNavigationButton appends a button that navigates to target when pressed.
func (m *Menu) AddNavigationButton(id, text string, target Target) (*Button, error) {
	b, err := m.AddButton(id, text)
	if err != nil {
		return nil, err
	}
	b.target = &target
	return b, nil
}

// Submenu describes a child menu together with the button leading to it.
type Submenu struct {
	ID         string
	Text       string
	ButtonID   string
	ButtonText string
	Full       bool
	Hidden     bool
	// Builder makes the child dynamic: its content is produced on first render.
	Builder Builder
}

// AddSubmenu creates a child menu, registers it in the tree, and adds a button
// to m that navigates to it. The child id defaults to the button id.
func (m *Menu) AddSubmenu(s Submenu) (*Menu, error) {
	if s.Builder == nil {
		text, err := cleanText(s.Text)
		if err != nil {
			return nil, constructionErr("add submenu", s.ID, err)
		}
		s.Text = text
	}
	if strings.TrimSpace(s.ButtonText) == "" {
		s.ButtonText = s.Text
	}
	buttonText, err := cleanText(s.ButtonText)
	if err != nil {
		return nil, constructionErr("add submenu", s.ID, err)
	}
	buttonID := s.ButtonID
	if strings.TrimSpace(buttonID) == "" {
		buttonID = m.uniqueButtonID(buttonText)
	}
	childID := s.ID
	if strings.TrimSpace(childID) == "" {
		childID = buttonID
	}
	childID, err = cleanID(childID)
	if err != nil {
		return nil, constructionErr("add submenu", childID, err)
	}
	if _, dup := m.tree.byID[childID]; dup {
		return nil, constructionErr("add submenu", childID, ErrDuplicateID)
	}
	b, err := m.AddButton(buttonID, buttonText)
	if err != nil {
		return nil, err
	}
	child := m.tree.newMenu(childID, s.Text)
	child.builder = s.Builder
	if err := m.tree.register(child, m.id, b.id, -1); err != nil {
		m.buttons.DeleteKey(b.id)
		return nil, err
	}
	b.child = child.id
	b.full = Constant(s.Full)
	b.hidden = Constant(s.Hidden)
	return child, nil
}

// children returns the menus owned by m's buttons.
func (m *Menu) children() []*Menu {
	var out []*Menu
	for _, kv := range m.buttons.Order {
		b := kv.Value
		if b.child == "" {
			continue
		}
		if child, ok := m.tree.byID[b.child]; ok && child.parent == m.id {
			out = append(out, child)
		}
	}
	return out
}

// markImpure flags m and every ancestor up to the root.
func (m *Menu) markImpure() {
	for cur := m; cur != nil; {
		cur.impure = true
		parent, _, ok := cur.Parent()
		if !ok {
			return
		}
		cur = parent
	}
}

// Invalidate drops the cached render and marks the menu as needing a full
// draw. It is used when a render never reached the transport.
func (m *Menu) Invalidate() {
	m.changes |= NeedsDraw
	m.keyboard = nil
	m.frame = nil
}

// RequestRebuildCheck forces every button to be re-evaluated on the next
// render.
func (m *Menu) RequestRebuildCheck() {
	m.changes |= NeedsRebuildCheck
}

func (m *Menu) uniqueButtonID(text string) string {
	base := slug(text)
	id := base
	for n := 2; ; n++ {
		if _, taken := m.buttons.ValueByKeyTry(id); !taken {
			return id
		}
		id = base + "-" + strconv.Itoa(n)
	}
}

func cleanText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrInvalidText
	}
	return text, nil
}

func cleanID(id string) (string, error) {
	id = strings.TrimSpace(id)
	switch {
	case id == "", id == ".", id == "..":
		return id, ErrInvalidID
	case strings.ContainsAny(id, "/"):
		return id, ErrInvalidID
	case strings.IndexFunc(id, unicode.IsSpace) >= 0:
		return id, ErrInvalidID
	}
	return id, nil
}

func slug(text string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "button"
	}
	return out
}
