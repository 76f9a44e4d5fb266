package menu

import "strings"

// Button is one element of a menu keyboard. It either links to a URL or
// dispatches when pressed: to its action, its navigation target, or the
// menu it owns.
type Button struct {
	id      string
	text    string
	hidden  Prop[bool]
	full    Prop[bool]
	url     string
	action  Action
	target  *Target
	child   string
	owner   *Menu
	changes Changes
	cached  *Key
}

// ID returns the button id, unique within its menu.
func (b *Button) ID() string { return b.id }

// Text returns the label.
func (b *Button) Text() string { return b.text }

// Hidden evaluates the hidden property.
func (b *Button) Hidden() bool { return b.hidden.Get() }

// Full evaluates the full-width property.
func (b *Button) Full() bool { return b.full.Get() }

// URL returns the link target, if any.
func (b *Button) URL() string { return b.url }

// Action returns the press handler, if any.
func (b *Button) Action() Action { return b.action }

// Menu returns the menu holding the button.
func (b *Button) Menu() *Menu { return b.owner }

// Changes returns the button's pending change flags.
func (b *Button) Changes() Changes { return b.changes }

// Impure reports whether hidden or full is computed per render.
func (b *Button) Impure() bool {
	return b.hidden.IsComputed() || b.full.IsComputed()
}

// Child returns the menu this button owns, such as a static submenu or an
// attached dynamic menu.
func (b *Button) Child() (*Menu, bool) {
	if b.child == "" || b.owner == nil {
		return nil, false
	}
	m, ok := b.owner.tree.byID[b.child]
	return m, ok
}

// NavigationTarget reports where a press navigates when the button has no
// action of its own.
func (b *Button) NavigationTarget() (Target, bool) {
	if b.target != nil {
		return *b.target, true
	}
	if child, ok := b.Child(); ok {
		return Path(child.Path()), true
	}
	return Target{}, false
}

// EventPath returns the opaque path that identifies a press of b.
func (b *Button) EventPath() string {
	return b.owner.Path() + b.id
}

// SetText replaces the label. Empty input is ignored and writing the current
// value leaves the change flags untouched.
func (b *Button) SetText(text string) {
	text = strings.TrimSpace(text)
	if text == "" || text == b.text {
		return
	}
	b.text = text
	b.mark(ChangedText)
}

// SetHidden sets a constant hidden flag.
func (b *Button) SetHidden(hidden bool) {
	if !b.hidden.IsComputed() && b.hidden.Get() == hidden {
		return
	}
	b.hidden = Constant(hidden)
	b.mark(ChangedVisibility)
}

// SetHiddenFunc makes hidden computed on every render.
func (b *Button) SetHiddenFunc(fn func() bool) {
	if fn == nil {
		return
	}
	b.hidden = Computed(fn)
	b.mark(ChangedVisibility)
	b.owner.markImpure()
}

// SetFull sets a constant full-width flag.
func (b *Button) SetFull(full bool) {
	if !b.full.IsComputed() && b.full.Get() == full {
		return
	}
	b.full = Constant(full)
	b.mark(ChangedLayout)
}

// SetFullFunc makes full-width computed on every render.
func (b *Button) SetFullFunc(fn func() bool) {
	if fn == nil {
		return
	}
	b.full = Computed(fn)
	b.mark(ChangedLayout)
	b.owner.markImpure()
}

// OnPress sets the action invoked when the button is pressed.
func (b *Button) OnPress(fn Action) *Button {
	b.action = fn
	return b
}

// WithURL turns the button into a link. A link never dispatches, so a URL
// takes precedence over any action when rendered.
func (b *Button) WithURL(url string) *Button {
	url = strings.TrimSpace(url)
	if url == b.url {
		return b
	}
	b.url = url
	b.mark(ChangedLayout)
	return b
}

// Navigate makes a press navigate to target when no action is set.
func (b *Button) Navigate(target Target) *Button {
	b.target = &target
	return b
}

// WithHidden is the chaining form of SetHidden.
func (b *Button) WithHidden(hidden bool) *Button {
	b.SetHidden(hidden)
	return b
}

// WithFull is the chaining form of SetFull.
func (b *Button) WithFull(full bool) *Button {
	b.SetFull(full)
	return b
}

func (b *Button) mark(flag Changes) {
	b.changes |= flag
	if b.owner == nil {
		return
	}
	// A label belongs to the keyboard, not to the message body.
	if flag == ChangedText {
		flag = ChangedLayout
	}
	b.owner.changes |= flag
}

// finalize produces the rendered form, reusing the cached key when the
// button is pure and unchanged.
func (b *Button) finalize(force bool) Key {
	if !force && b.cached != nil && b.changes.Clean() && !b.Impure() {
		return *b.cached
	}
	k := Key{
		ID:     b.id,
		Text:   b.text,
		Hidden: b.hidden.Get(),
		Full:   b.full.Get(),
	}
	if b.url != "" {
		k.URL = b.url
	} else {
		k.Action = b.EventPath()
	}
	b.cached = &k
	b.changes = 0
	return k
}
