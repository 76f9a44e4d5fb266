package menu

import (
	"context"
	"maps"
	"slices"

	"github.com/atomicstack/inline-menus/internal/logging/events"
	"golang.org/x/sync/semaphore"
)

// Peers resolves other registered trees by their root id. It lets a target
// in one tree name a menu owned by another.
type Peers interface {
	LookupTree(id string) (*Tree, bool)
}

// Option configures a tree.
type Option func(*Tree)

// WithRowWidth wraps keyboard rows after n visible buttons. Zero disables
// wrapping so only full-width buttons start new rows.
func WithRowWidth(n int) Option {
	return func(t *Tree) {
		if n > 0 {
			t.rowWidth = n
		}
	}
}

// WithPeers sets the cross-tree lookup used for ids and absolute paths that
// are not part of this tree.
func WithPeers(p Peers) Option {
	return func(t *Tree) {
		t.peers = p
	}
}

// Tree owns every menu of one root. It keeps three indices in step: id to
// menu, path to menu, and creation order. A menu's index is its position in
// the creation order; detaching a menu shifts every later index down by one.
type Tree struct {
	id       string
	root     *Menu
	byID     map[string]*Menu
	byPath   map[string]*Menu
	order    []*Menu
	values   *Values
	active   *Menu
	peers    Peers
	rowWidth int
	sem      *semaphore.Weighted
}

// New creates a tree whose root menu has the given id and message text.
func New(id, text string, opts ...Option) (*Tree, error) {
	id, err := cleanID(id)
	if err != nil {
		return nil, constructionErr("new tree", id, err)
	}
	text, err = cleanText(text)
	if err != nil {
		return nil, constructionErr("new tree", id, err)
	}
	t := &Tree{
		id:     id,
		byID:   make(map[string]*Menu),
		byPath: make(map[string]*Menu),
		values: NewValues(),
		sem:    semaphore.NewWeighted(1),
	}
	for _, opt := range opts {
		opt(t)
	}
	root := t.newMenu(id, text)
	if err := t.register(root, "", "", -1); err != nil {
		return nil, err
	}
	t.root = root
	return t, nil
}

// ID returns the root menu id, which also names the tree.
func (t *Tree) ID() string { return t.id }

// Root returns the root menu.
func (t *Tree) Root() *Menu { return t.root }

// Values returns the value stack shared by every menu of the tree.
func (t *Tree) Values() *Values { return t.values }

// Len returns the number of registered menus.
func (t *Tree) Len() int { return len(t.order) }

// Lookup returns the menu registered under id.
func (t *Tree) Lookup(id string) (*Menu, bool) {
	m, ok := t.byID[id]
	return m, ok
}

// LookupPath returns the menu at an absolute path. The trailing slash is
// optional.
func (t *Tree) LookupPath(p string) (*Menu, bool) {
	m, ok := t.byPath[cleanPath(p)]
	return m, ok
}

// At returns the menu with the given creation index.
func (t *Tree) At(index int) (*Menu, bool) {
	if index < 0 || index >= len(t.order) {
		return nil, false
	}
	return t.order[index], true
}

// Menus returns the registered menus in index order.
func (t *Tree) Menus() []*Menu {
	return slices.Clone(t.order)
}

// Active returns the menu currently shown by the transport, if any.
func (t *Tree) Active() *Menu { return t.active }

// SetActive records which menu the transport is showing. Nil clears it.
func (t *Tree) SetActive(m *Menu) {
	if m != nil && m.tree != t {
		return
	}
	t.active = m
}

// SetPeers replaces the cross-tree lookup.
func (t *Tree) SetPeers(p Peers) { t.peers = p }

// Lock acquires exclusive access to the tree's registries and value stack.
// Only one dispatch may hold it at a time.
func (t *Tree) Lock(ctx context.Context) error {
	return t.sem.Acquire(ctx, 1)
}

// TryLock takes the lock only if it is free right now.
func (t *Tree) TryLock() bool {
	return t.sem.TryAcquire(1)
}

// Unlock releases the lock taken by Lock or TryLock.
func (t *Tree) Unlock() {
	t.sem.Release(1)
}

// Reset clears the value stack and the active menu. It runs when the tree's
// root is detached from whatever owned it.
func (t *Tree) Reset() {
	t.values.Clear()
	t.active = nil
}

func (t *Tree) newMenu(id, text string) *Menu {
	return &Menu{
		tree:    t,
		id:      id,
		text:    text,
		buttons: newButtonMap(),
		index:   -1,
		changes: NeedsDraw,
	}
}

// register adds m under the given parent menu and button slot. A negative
// position appends; otherwise m is inserted at that index and later menus
// shift up by one.
func (t *Tree) register(m *Menu, parent, slot string, at int) error {
	if _, dup := t.byID[m.id]; dup {
		return constructionErr("register menu", m.id, ErrDuplicateID)
	}
	m.parent = parent
	m.slot = slot
	m.path = ""
	p := m.Path()
	if _, dup := t.byPath[p]; dup {
		return constructionErr("register menu", p, ErrDuplicateID)
	}
	t.byID[m.id] = m
	t.byPath[p] = m
	if at < 0 || at > len(t.order) {
		at = len(t.order)
	}
	t.order = slices.Insert(t.order, at, m)
	t.renumber(at)
	events.Tree.Attach(t.ID(), m.id, p, at)
	return nil
}

// unregister removes m from all three indices and collapses later indices.
// Children of m are not touched; see detach.
func (t *Tree) unregister(m *Menu) {
	if t.byID[m.id] != m {
		return
	}
	delete(t.byID, m.id)
	delete(t.byPath, m.Path())
	at := m.index
	if at >= 0 && at < len(t.order) && t.order[at] == m {
		t.order = slices.Delete(t.order, at, at+1)
	} else if i := slices.Index(t.order, m); i >= 0 {
		at = i
		t.order = slices.Delete(t.order, i, i+1)
	}
	t.renumber(at)
	if t.active == m {
		t.active = nil
	}
	events.Tree.Detach(t.ID(), m.id, m.Path(), at)
	m.index = -1
	m.detached = true
}

// detach removes m and every menu below it. It returns the ids that were
// removed, deepest first.
func (t *Tree) detach(m *Menu) []string {
	var removed []string
	for _, child := range m.children() {
		removed = append(removed, t.detach(child)...)
	}
	t.unregister(m)
	return append(removed, m.id)
}

// subtreeIDs lists m and all of its descendants.
func (t *Tree) subtreeIDs(m *Menu) map[string]struct{} {
	ids := map[string]struct{}{m.id: {}}
	for _, child := range m.children() {
		for id := range t.subtreeIDs(child) {
			ids[id] = struct{}{}
		}
	}
	return ids
}

// registrySnapshot is a copy of the three indices taken before a content
// change that may fail halfway.
type registrySnapshot struct {
	byID   map[string]*Menu
	byPath map[string]*Menu
	order  []*Menu
	active *Menu
}

func (t *Tree) snapshot() registrySnapshot {
	return registrySnapshot{
		byID:   maps.Clone(t.byID),
		byPath: maps.Clone(t.byPath),
		order:  slices.Clone(t.order),
		active: t.active,
	}
}

// rollback puts the indices back as they were at s. Menus registered since
// are left detached; menus detached since are registered again.
func (t *Tree) rollback(s registrySnapshot) {
	for id, m := range t.byID {
		if s.byID[id] != m {
			m.index = -1
			m.detached = true
		}
	}
	t.byID, t.byPath, t.order, t.active = s.byID, s.byPath, s.order, s.active
	for _, m := range t.order {
		m.detached = false
	}
	t.renumber(0)
}

func (t *Tree) renumber(from int) {
	if from < 0 {
		from = 0
	}
	for i := from; i < len(t.order); i++ {
		t.order[i].index = i
	}
}

// Detach removes a non-root menu and its descendants from the tree. The
// button that led to it keeps no reference afterwards.
func (t *Tree) Detach(m *Menu) bool {
	if m == nil || m.tree != t || m == t.root || m.detached {
		return false
	}
	if parent, ok := t.byID[m.parent]; ok {
		if b, ok := parent.buttons.ValueByKeyTry(m.slot); ok && b.child == m.id {
			b.child = ""
		}
	}
	t.detach(m)
	return true
}
