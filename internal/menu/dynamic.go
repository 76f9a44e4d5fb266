package menu

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/atomicstack/inline-menus/internal/logging/events"
)

var errNoContent = fmt.Errorf("%w: builder returned no content", ErrConstruction)

// ensureBuilt runs the builder of a dynamic menu the first time the menu is
// needed. The content replaces text and buttons in place; id, path and parent
// linkage are kept.
func (m *Menu) ensureBuilt() error {
	if m.builder == nil || m.built {
		return nil
	}
	content, err := m.builder(m.tree.values)
	if err != nil {
		return fmt.Errorf("build menu %q: %w", m.id, err)
	}
	if err := m.tree.checkContent(m, content); err != nil {
		return err
	}
	if err := m.refill(content); err != nil {
		return err
	}
	m.built = true
	m.changes |= NeedsDraw | ChangedText | ChangedLayout
	return nil
}

// Build runs a dynamic menu's builder now if it has not run yet.
func (m *Menu) Build() error {
	return m.ensureBuilt()
}

// refill is fill that leaves m and the tree untouched when the content does
// not build.
func (m *Menu) refill(c Content) error {
	snap := m.tree.snapshot()
	text, buttons, keyboard, impure, changes := m.text, m.buttons, m.keyboard, m.impure, m.changes
	if err := m.fill(c); err != nil {
		m.tree.rollback(snap)
		m.text, m.buttons, m.keyboard, m.impure, m.changes = text, buttons, keyboard, impure, changes
		return err
	}
	return nil
}

// fill replaces m's text and buttons with the content. Menus owned by the old
// buttons are detached first.
func (m *Menu) fill(c Content) error {
	for _, child := range m.children() {
		m.tree.detach(child)
	}
	m.buttons = newButtonMap()
	m.keyboard = nil
	switch c := c.(type) {
	case Layout:
		return m.fillLayout(c)
	case *Layout:
		if c == nil {
			return constructionErr("fill menu", m.id, errNoContent)
		}
		return m.fillLayout(*c)
	case *Tree:
		if c == nil {
			return constructionErr("fill menu", m.id, errNoContent)
		}
		return m.graft(c.root)
	default:
		return constructionErr("fill menu", m.id, errNoContent)
	}
}

func (m *Menu) fillLayout(l Layout) error {
	if text := strings.TrimSpace(l.Text); text != "" {
		m.text = text
	}
	if m.text == "" {
		return constructionErr("fill menu", m.id, ErrInvalidText)
	}
	return populate(m, l.Buttons)
}

// graft copies src's text, buttons and static submenus into m. The source
// tree is left untouched.
func (m *Menu) graft(src *Menu) error {
	m.text = src.text
	for _, kv := range src.buttons.Order {
		b := *kv.Value
		b.owner = m
		b.cached = nil
		b.changes = NeedsDraw
		b.child = ""
		nb := &b
		m.buttons.Add(nb.id, nb)
		if nb.Impure() {
			m.markImpure()
		}
		srcChild, ok := kv.Value.Child()
		if !ok {
			continue
		}
		child := m.tree.newMenu(srcChild.id, srcChild.text)
		child.builder = srcChild.builder
		if err := m.tree.register(child, m.id, nb.id, -1); err != nil {
			return err
		}
		nb.child = child.id
		if srcChild.builder != nil && !srcChild.built {
			continue
		}
		child.built = srcChild.built
		if err := child.graft(srcChild); err != nil {
			return err
		}
	}
	m.changes |= ChangedLayout
	return nil
}

// Rebuild invokes a dynamic menu's builder again. The result becomes a new
// menu that takes the old one's id, path, parent slot and index; the old menu
// and everything below it are detached. The new menu carries the old frame
// so the next Draw diffs against what the transport is showing. Rebuilding a
// static menu only forces its buttons to be re-evaluated.
func (t *Tree) Rebuild(m *Menu) (*Menu, error) {
	if m == nil || m.tree != t || m.detached {
		return nil, constructionErr("rebuild menu", "", errors.New("menu is not part of the tree"))
	}
	if m.builder == nil {
		m.RequestRebuildCheck()
		return m, nil
	}
	content, err := m.builder(t.values)
	if err != nil {
		return nil, fmt.Errorf("rebuild menu %q: %w", m.id, err)
	}
	if m.IsRoot() {
		if err := t.checkContent(m, content); err != nil {
			return nil, err
		}
		if err := m.refill(content); err != nil {
			return nil, err
		}
		m.built = true
		m.changes |= NeedsRebuildCheck
		events.Tree.Rebuild(t.id, m.id, m.Path())
		return m, nil
	}
	fresh, err := t.replace(m, m.id, content, m.builder)
	if err != nil {
		return nil, err
	}
	events.Tree.Rebuild(t.id, fresh.id, fresh.Path())
	return fresh, nil
}

// Attach opens content as a menu owned by button b. A builder, when given,
// produces the content and is kept for later rebuilds. Any menu b owned
// before is detached and the new one takes its index. The menu id comes from
// the layout, defaulting to the button id.
func (t *Tree) Attach(b *Button, content Content, builder Builder) (*Menu, error) {
	if b == nil || b.owner == nil || b.owner.tree != t {
		return nil, constructionErr("attach menu", "", errors.New("button is not part of the tree"))
	}
	if builder != nil {
		var err error
		if content, err = builder(t.values); err != nil {
			return nil, fmt.Errorf("attach menu to %q: %w", b.id, err)
		}
	}
	if content == nil {
		return nil, constructionErr("attach menu", b.id, errNoContent)
	}
	id := contentID(content)
	if id == "" {
		id = b.id
	}
	if old, ok := b.Child(); ok {
		fresh, err := t.replace(old, id, content, builder)
		if err != nil {
			return nil, err
		}
		fresh.frame = nil
		fresh.changes |= NeedsDraw
		return fresh, nil
	}
	id, err := cleanID(id)
	if err != nil {
		return nil, constructionErr("attach menu", id, err)
	}
	if err := t.checkContentAs(nil, id, content); err != nil {
		return nil, err
	}
	snap := t.snapshot()
	fresh := t.newMenu(id, "")
	fresh.builder = builder
	fresh.built = true
	if err := t.register(fresh, b.owner.id, b.id, -1); err != nil {
		return nil, err
	}
	b.child = fresh.id
	if err := fresh.fill(content); err != nil {
		t.rollback(snap)
		b.child = ""
		return nil, err
	}
	fresh.changes |= NeedsDraw
	return fresh, nil
}

// replace swaps old for a new menu built from content under the same parent
// slot and index. When the content does not build, old stays where it was.
func (t *Tree) replace(old *Menu, id string, content Content, builder Builder) (*Menu, error) {
	parent, b, ok := old.Parent()
	if !ok || b == nil {
		return nil, constructionErr("replace menu", old.id, errors.New("menu has no parent slot"))
	}
	id, err := cleanID(id)
	if err != nil {
		return nil, constructionErr("replace menu", id, err)
	}
	if err := t.checkContentAs(old, id, content); err != nil {
		return nil, err
	}
	at := old.index
	prev := old.frame
	wasActive := t.active == old
	snap := t.snapshot()
	t.detach(old)

	fresh := t.newMenu(id, old.text)
	fresh.builder = builder
	fresh.built = true
	fail := func(err error) (*Menu, error) {
		t.rollback(snap)
		b.child = old.id
		return nil, err
	}
	if err := t.register(fresh, parent.id, b.id, at); err != nil {
		return fail(err)
	}
	b.child = fresh.id
	if err := fresh.fill(content); err != nil {
		return fail(err)
	}
	fresh.frame = prev
	fresh.changes = NeedsRebuildCheck
	if prev == nil {
		fresh.changes |= NeedsDraw
	}
	if wasActive {
		t.active = fresh
	}
	return fresh, nil
}

func (t *Tree) checkContent(m *Menu, content Content) error {
	return t.checkContentAs(m, m.id, content)
}

// checkContentAs verifies that content can be installed as menu id in place
// of old (which may be nil) without colliding with menus outside old's
// subtree.
func (t *Tree) checkContentAs(old *Menu, id string, content Content) error {
	if content == nil {
		return constructionErr("check content", id, errNoContent)
	}
	replaced := map[string]struct{}{}
	if old != nil {
		replaced = t.subtreeIDs(old)
	}
	taken := func(menuID string) bool {
		if _, ok := replaced[menuID]; ok {
			return false
		}
		_, ok := t.byID[menuID]
		return ok
	}
	if old == nil || id != old.id {
		if taken(id) {
			return constructionErr("check content", id, ErrDuplicateID)
		}
	}
	var ids []string
	switch c := content.(type) {
	case Layout:
		ids = layoutMenuIDs(c.Buttons)
	case *Layout:
		if c != nil {
			ids = layoutMenuIDs(c.Buttons)
		}
	case *Tree:
		if c != nil {
			for _, sub := range c.order[1:] {
				ids = append(ids, sub.id)
			}
		}
	}
	for _, sub := range ids {
		if sub == id || taken(sub) {
			return constructionErr("check content", sub, ErrDuplicateID)
		}
	}
	return nil
}

// layoutMenuIDs lists the menu ids a layout registers when built, deriving
// missing ids from button texts the way AddButton and AddSubmenu do.
func layoutMenuIDs(entries []Entry) []string {
	var ids []string
	buttons := make(map[string]struct{})
	buttonID := func(id, text string) string {
		if id = strings.TrimSpace(id); id == "" {
			base := slug(strings.TrimSpace(text))
			id = base
			for n := 2; ; n++ {
				if _, taken := buttons[id]; !taken {
					break
				}
				id = base + "-" + strconv.Itoa(n)
			}
		}
		buttons[id] = struct{}{}
		return id
	}
	for _, e := range entries {
		switch e := e.(type) {
		case Label:
			buttonID(e.ID, e.Text)
		case ButtonSpec:
			buttonID(e.ID, e.Text)
		case SubmenuSpec:
			text := e.ButtonText
			if strings.TrimSpace(text) == "" {
				text = e.Text
			}
			id := buttonID(e.ButtonID, text)
			if explicit := strings.TrimSpace(e.ID); explicit != "" {
				id = explicit
			}
			ids = append(ids, id)
			if e.Builder == nil {
				ids = append(ids, layoutMenuIDs(e.Buttons)...)
			}
		}
	}
	return ids
}

func contentID(c Content) string {
	switch c := c.(type) {
	case Layout:
		return strings.TrimSpace(c.ID)
	case *Layout:
		if c != nil {
			return strings.TrimSpace(c.ID)
		}
	case *Tree:
		if c != nil {
			return c.id
		}
	}
	return ""
}
