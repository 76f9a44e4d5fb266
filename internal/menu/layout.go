package menu

import (
	"fmt"
	"strings"
)

// Content is what a dynamic menu builder produces: a Layout, or a ready-made
// *Tree whose root is grafted in place.
type Content interface {
	content()
}

// Builder produces the content of a dynamic menu from the tree's values.
type Builder func(values *Values) (Content, error)

// Layout is the declarative description of a menu. It is never mutated by
// the tree built from it.
type Layout struct {
	ID      string
	Text    string
	Buttons []Entry
}

func (Layout) content() {}
func (*Tree) content()  {}

// Entry is one keyboard entry of a layout: a Label, a ButtonSpec, or a
// SubmenuSpec.
type Entry interface {
	entry()
}

// Label is a bare button with no action of its own.
type Label struct {
	ID   string
	Text string
}

// ButtonSpec describes a button.
type ButtonSpec struct {
	ID       string
	Text     string
	URL      string
	Navigate string
	OnPress  Action
	Full     Prop[bool]
	Hidden   Prop[bool]
}

// SubmenuSpec describes a child menu and the button leading to it. A
// non-nil Builder makes the child dynamic and its Buttons are ignored.
type SubmenuSpec struct {
	Layout
	ButtonID   string
	ButtonText string
	Full       bool
	Hidden     bool
	Builder    Builder
}

func (Label) entry()       {}
func (ButtonSpec) entry()  {}
func (SubmenuSpec) entry() {}

// Validate checks a layout without building it: texts and ids must be
// present and well formed, and explicit ids must not repeat.
func (l Layout) Validate() error {
	menus := make(map[string]struct{})
	if _, err := cleanID(l.ID); err != nil {
		return constructionErr("validate layout", l.ID, err)
	}
	menus[strings.TrimSpace(l.ID)] = struct{}{}
	return validateEntries(l, menus, true)
}

func validateEntries(l Layout, menus map[string]struct{}, needText bool) error {
	if needText {
		if _, err := cleanText(l.Text); err != nil {
			return constructionErr("validate layout", l.ID, err)
		}
	}
	buttons := make(map[string]struct{})
	claim := func(id string) error {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil
		}
		if _, err := cleanID(id); err != nil {
			return constructionErr("validate button", id, err)
		}
		if _, dup := buttons[id]; dup {
			return constructionErr("validate button", id, ErrDuplicateID)
		}
		buttons[id] = struct{}{}
		return nil
	}
	for _, e := range l.Buttons {
		switch e := e.(type) {
		case Label:
			if _, err := cleanText(e.Text); err != nil {
				return constructionErr("validate button", e.ID, err)
			}
			if err := claim(e.ID); err != nil {
				return err
			}
		case ButtonSpec:
			if _, err := cleanText(e.Text); err != nil {
				return constructionErr("validate button", e.ID, err)
			}
			if err := claim(e.ID); err != nil {
				return err
			}
		case SubmenuSpec:
			if err := claim(e.ButtonID); err != nil {
				return err
			}
			text := e.ButtonText
			if strings.TrimSpace(text) == "" {
				text = e.Text
			}
			if _, err := cleanText(text); err != nil {
				return constructionErr("validate submenu", e.ID, err)
			}
			id := strings.TrimSpace(e.ID)
			if id == "" {
				id = strings.TrimSpace(e.ButtonID)
			}
			if id != "" {
				if _, err := cleanID(id); err != nil {
					return constructionErr("validate submenu", id, err)
				}
				if _, dup := menus[id]; dup {
					return constructionErr("validate submenu", id, ErrDuplicateID)
				}
				menus[id] = struct{}{}
			}
			if e.Builder == nil {
				if err := validateEntries(e.Layout, menus, true); err != nil {
					return err
				}
			}
		default:
			return constructionErr("validate layout", l.ID, fmt.Errorf("%w: unsupported entry %T", ErrConstruction, e))
		}
	}
	return nil
}

// Build validates a layout and constructs a tree from it.
func Build(l Layout, opts ...Option) (*Tree, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	t, err := New(l.ID, l.Text, opts...)
	if err != nil {
		return nil, err
	}
	if err := populate(t.root, l.Buttons); err != nil {
		return nil, err
	}
	return t, nil
}

// MustBuild is Build for layouts known to be valid. It panics on error.
func MustBuild(l Layout, opts ...Option) *Tree {
	t, err := Build(l, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

func populate(m *Menu, entries []Entry) error {
	for _, e := range entries {
		switch e := e.(type) {
		case Label:
			if _, err := m.AddButton(e.ID, e.Text); err != nil {
				return err
			}
		case ButtonSpec:
			b, err := m.AddButton(e.ID, e.Text)
			if err != nil {
				return err
			}
			if e.URL != "" {
				b.WithURL(e.URL)
			}
			if e.OnPress != nil {
				b.OnPress(e.OnPress)
			}
			if strings.TrimSpace(e.Navigate) != "" {
				b.Navigate(ParseTarget(e.Navigate))
			}
			b.full = e.Full
			b.hidden = e.Hidden
			if b.Impure() {
				m.markImpure()
			}
		case SubmenuSpec:
			child, err := m.AddSubmenu(Submenu{
				ID:         e.ID,
				Text:       e.Text,
				ButtonID:   e.ButtonID,
				ButtonText: e.ButtonText,
				Full:       e.Full,
				Hidden:     e.Hidden,
				Builder:    e.Builder,
			})
			if err != nil {
				return err
			}
			if e.Builder == nil {
				if err := populate(child, e.Buttons); err != nil {
					return err
				}
			}
		default:
			return constructionErr("build layout", m.id, fmt.Errorf("%w: unsupported entry %T", ErrConstruction, e))
		}
	}
	return nil
}
