package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/atomicstack/inline-menus/internal/logging/events"
	"github.com/atomicstack/inline-menus/internal/menu"
)

// ErrNoTransport is returned by Open when the dispatcher was built without
// a transport.
var ErrNoTransport = errors.New("dispatcher has no transport")

// ErrTreeBusy is returned when a navigation into another tree finds that
// tree locked and waiting could deadlock.
var ErrTreeBusy = errors.New("target tree is busy")

// StepHandler receives the opaque values a sequence yields. It reports
// whether it recognised the value.
type StepHandler func(ctx context.Context, p *menu.Press, value any) (bool, error)

// Options are the hooks a host installs on a dispatcher.
type Options struct {
	// Strict turns unrecognised sequence values into errors.
	Strict bool
	// Fallback handles presses of buttons that have neither an action nor
	// a navigation target.
	Fallback menu.Action
	// StepHandler receives non-result sequence values.
	StepHandler StepHandler
	// OnError receives every dispatch failure. With it installed Dispatch
	// reports failures only through the hook.
	OnError func(event string, err error)
	// OnUnhandled observes events that matched no tree or button.
	OnUnhandled func(event, reason string)
}

// Outcome summarises one dispatch.
type Outcome struct {
	Handled bool
	Tree    string
	// Menu and Button identify the press.
	Menu   string
	Button string
	// Shown is the path of the menu on screen afterwards. It is empty once
	// the menu was closed.
	Shown  string
	Ops    []menu.Op
	Closed bool
	// Value is the last value the press pushed onto the value stack.
	Value    any
	HasValue bool
	Values   []menu.Value
}

// Dispatcher routes press events to button actions and applies what they
// return. Dispatches against one tree run one at a time; different trees
// proceed independently.
type Dispatcher struct {
	registry  *Registry
	transport Transport
	opts      Options

	mu     sync.Mutex
	states map[string]State
}

// New builds a dispatcher over a registry and transport. A nil registry gets
// a fresh one; a nil transport discards frames.
func New(reg *Registry, tr Transport, opts Options) *Dispatcher {
	if reg == nil {
		reg = NewRegistry()
	}
	if tr == nil {
		tr = Discard{}
	}
	return &Dispatcher{
		registry:  reg,
		transport: tr,
		opts:      opts,
		states:    make(map[string]State),
	}
}

// Registry returns the registry the dispatcher routes through.
func (d *Dispatcher) Registry() *Registry { return d.registry }

// State reports the dispatch phase of the tree with the given id.
func (d *Dispatcher) State(tree string) State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.states[tree]
}

func (d *Dispatcher) setState(tree string, s State) {
	d.mu.Lock()
	if s == StateIdle {
		delete(d.states, tree)
	} else {
		d.states[tree] = s
	}
	d.mu.Unlock()
	events.Dispatch.State(tree, s.String())
}

// Open registers t if needed, makes its root the shown menu and sends the
// root's first full render.
func (d *Dispatcher) Open(ctx context.Context, t *menu.Tree) error {
	if d.transport == nil {
		return ErrNoTransport
	}
	if err := d.registry.Register(t); err != nil {
		return err
	}
	if err := t.Lock(ctx); err != nil {
		return err
	}
	defer t.Unlock()
	root := t.Root()
	f, err := root.Draw()
	if err != nil {
		return fmt.Errorf("open %q: %w", t.ID(), err)
	}
	f.Op = menu.OpReplace
	t.SetActive(root)
	if err := d.transport.Replace(ctx, f); err != nil {
		root.Invalidate()
		return fmt.Errorf("open %q: %w", t.ID(), err)
	}
	return nil
}

// Dispatch handles one press event to completion. Events that name no
// registered tree or button are ignored and reported through OnUnhandled.
func (d *Dispatcher) Dispatch(ctx context.Context, raw string) (Outcome, error) {
	events.Dispatch.Event(raw)
	ev, ok := ParseEvent(raw)
	if !ok {
		return d.unhandled(raw, "malformed event")
	}
	tree, ok := d.registry.LookupTree(ev.Tree)
	if !ok {
		return d.unhandled(raw, "unknown tree")
	}
	if err := tree.Lock(ctx); err != nil {
		return Outcome{}, err
	}
	defer tree.Unlock()
	// The tree may have been closed while this dispatch waited for the lock.
	if current, ok := d.registry.LookupTree(ev.Tree); !ok || current != tree {
		return d.unhandled(raw, "unknown tree")
	}
	defer d.setState(tree.ID(), StateIdle)

	d.setState(tree.ID(), StateResolving)
	m, ok := tree.LookupPath(ev.Menu)
	if !ok {
		return d.unhandled(raw, "unknown menu")
	}
	b, ok := m.Button(ev.Button)
	if !ok {
		return d.unhandled(raw, "unknown button")
	}
	if b.URL() != "" {
		return d.unhandled(raw, "url button")
	}

	out := Outcome{Handled: true, Tree: tree.ID(), Menu: m.Path(), Button: b.ID()}
	p := &menu.Press{Event: raw, Tree: tree, Menu: m, Button: b}

	d.setState(tree.ID(), StateExecuting)
	reply, err := d.execute(ctx, p)
	if errors.Is(err, errUnhandled) {
		return d.unhandled(raw, "no action")
	}
	if err != nil {
		return d.fail(raw, p.Menu, &out, fmt.Errorf("dispatch %s: %w", ev, err))
	}

	d.setState(tree.ID(), StateApplying)
	if err := d.apply(ctx, p, reply, &out); err != nil {
		return d.fail(raw, p.Menu, &out, fmt.Errorf("dispatch %s: %w", ev, err))
	}
	d.finish(p, &out)
	return out, nil
}

// Navigate moves the shown menu of a tree to target, as if a navigation
// button on the shown menu had been pressed.
func (d *Dispatcher) Navigate(ctx context.Context, treeID string, target menu.Target) (Outcome, error) {
	tree, ok := d.registry.LookupTree(treeID)
	if !ok {
		return d.unhandled(treeID, "unknown tree")
	}
	if err := tree.Lock(ctx); err != nil {
		return Outcome{}, err
	}
	defer tree.Unlock()
	from := tree.Active()
	if from == nil {
		from = tree.Root()
	}
	out := Outcome{Handled: true, Tree: tree.ID(), Menu: from.Path()}
	unlock, err := d.lockPeer(ctx, tree, from, target)
	if err != nil {
		return d.fail(from.Path(), from, &out, err)
	}
	defer unlock()
	dest, err := tree.Navigate(from, target)
	if err != nil {
		return d.fail(from.Path(), from, &out, err)
	}
	if err := d.show(ctx, from, dest, &out); err != nil {
		return d.fail(from.Path(), from, &out, err)
	}
	out.Values = tree.Values().Snapshot()
	return out, nil
}

// Back navigates the shown menu of a tree to its parent.
func (d *Dispatcher) Back(ctx context.Context, treeID string) (Outcome, error) {
	return d.Navigate(ctx, treeID, menu.Back())
}

var errUnhandled = errors.New("unhandled")

func (d *Dispatcher) execute(ctx context.Context, p *menu.Press) (menu.Reply, error) {
	if action := p.Button.Action(); action != nil {
		return action(ctx, p)
	}
	if target, ok := p.Button.NavigationTarget(); ok {
		return &menu.Result{Navigate: &target}, nil
	}
	if d.opts.Fallback != nil {
		return d.opts.Fallback(ctx, p)
	}
	return nil, errUnhandled
}

func (d *Dispatcher) apply(ctx context.Context, p *menu.Press, reply menu.Reply, out *Outcome) error {
	switch r := reply.(type) {
	case nil:
		return nil
	case *menu.Result:
		if r == nil {
			return nil
		}
		return d.applyResult(ctx, p, r, out)
	case menu.Future:
		if r == nil {
			return nil
		}
		next, err := r(ctx)
		if err != nil {
			return fmt.Errorf("await result: %w", err)
		}
		return d.apply(ctx, p, next, out)
	case *menu.Sequence:
		return d.drive(ctx, p, r, out)
	default:
		return fmt.Errorf("unsupported reply %T", reply)
	}
}

// drive runs a sequence until it is done. Results are applied as they
// arrive; the sequence stops early once its menu is closed.
func (d *Dispatcher) drive(ctx context.Context, p *menu.Press, seq *menu.Sequence, out *Outcome) error {
	for {
		step, err := seq.Next(ctx)
		if err != nil {
			return fmt.Errorf("sequence: %w", err)
		}
		switch step.Kind {
		case menu.StepDone:
			events.Dispatch.Step(p.Tree.ID(), "done")
			return nil
		case menu.StepResult:
			events.Dispatch.Step(p.Tree.ID(), "result")
			if step.Result == nil {
				if d.opts.Strict {
					return fmt.Errorf("%w: empty result step", menu.ErrSequenceProtocol)
				}
				continue
			}
			if err := d.applyResult(ctx, p, step.Result, out); err != nil {
				return err
			}
			if out.Closed {
				return nil
			}
		case menu.StepValue:
			events.Dispatch.Step(p.Tree.ID(), "value")
			handled := false
			if d.opts.StepHandler != nil {
				if handled, err = d.opts.StepHandler(ctx, p, step.Value); err != nil {
					return fmt.Errorf("step handler: %w", err)
				}
			}
			if !handled && d.opts.Strict {
				return fmt.Errorf("%w: %T", menu.ErrSequenceProtocol, step.Value)
			}
		default:
			if d.opts.Strict {
				return fmt.Errorf("%w: step kind %d", menu.ErrSequenceProtocol, step.Kind)
			}
		}
	}
}

// applyResult honours one result. A navigation target is resolved before
// anything is written so a bad target leaves the menu untouched. Of
// navigate, close, attach and rebuild only the first one present applies;
// with none present the acting menu is redrawn if anything changed.
func (d *Dispatcher) applyResult(ctx context.Context, p *menu.Press, r *menu.Result, out *Outcome) error {
	tree, m, b := p.Tree, p.Menu, p.Button
	var dest *menu.Menu
	if r.Navigate != nil {
		unlock, err := d.lockPeer(ctx, tree, m, *r.Navigate)
		if err != nil {
			return err
		}
		defer unlock()
		if dest, err = tree.Navigate(m, *r.Navigate); err != nil {
			return err
		}
	}

	if r.ButtonText != "" {
		b.SetText(r.ButtonText)
	}
	if r.ButtonHidden != nil {
		b.SetHidden(*r.ButtonHidden)
	}
	if r.ButtonFull != nil {
		b.SetFull(*r.ButtonFull)
	}
	if r.MenuText != "" {
		m.SetText(r.MenuText)
	}
	if r.Value != nil {
		tree.Values().Push(b.ID(), r.Value)
		out.Value = r.Value
		out.HasValue = true
		events.Dispatch.Value(tree.ID(), b.ID())
	}

	switch {
	case dest != nil:
		events.Dispatch.Navigate(tree.ID(), m.Path(), dest.Path())
		return d.show(ctx, m, dest, out)
	case r.Close:
		return d.close(ctx, p, r.CloseText, out)
	case r.Attach != nil || r.AttachFunc != nil:
		child, err := tree.Attach(b, r.Attach, r.AttachFunc)
		if err != nil {
			return err
		}
		return d.show(ctx, m, child, out)
	case r.Rebuild:
		return d.rebuild(ctx, p, out)
	default:
		f, err := m.Draw()
		if err != nil {
			return err
		}
		out.Shown = m.Path()
		return d.send(ctx, m, f, out)
	}
}

// lockPeer locks the tree a navigation target resolves into when that is
// not tree itself, so drawing and activating the destination happen under
// its own lock. Locks are ordered by tree id: a peer sorting after tree is
// waited for, one sorting before is only tried. The returned func releases
// whatever was taken.
func (d *Dispatcher) lockPeer(ctx context.Context, tree *menu.Tree, from *menu.Menu, target menu.Target) (func(), error) {
	id := tree.PeerTree(from, target)
	if id == "" {
		return func() {}, nil
	}
	for {
		peer, ok := d.registry.LookupTree(id)
		if !ok || peer == tree {
			return func() {}, nil
		}
		if peer.ID() > tree.ID() {
			if err := peer.Lock(ctx); err != nil {
				return nil, err
			}
		} else if !peer.TryLock() {
			return nil, fmt.Errorf("%w: %q", ErrTreeBusy, peer.ID())
		}
		// The peer may have been replaced while this dispatch waited.
		if current, ok := d.registry.LookupTree(id); ok && current == peer {
			return peer.Unlock, nil
		}
		peer.Unlock()
	}
}

// show draws dest in place of from. The frame is compared against what from
// last put on screen, so moving between two menus with the same text only
// patches the keyboard.
func (d *Dispatcher) show(ctx context.Context, from, dest *menu.Menu, out *Outcome) error {
	var (
		shown    menu.Frame
		hasShown bool
	)
	if from != nil {
		shown, hasShown = from.LastFrame()
	}
	f, err := dest.Draw()
	if err != nil {
		return err
	}
	if from != dest && hasShown && f.Op != menu.OpReplace {
		switch {
		case shown.Tree != f.Tree, shown.Text != f.Text:
			f.Op = menu.OpReplace
		case menu.KeyboardChanged(shown.Keyboard, f.Keyboard):
			f.Op = menu.OpPatchKeyboard
		default:
			f.Op = menu.OpNone
		}
	}
	dest.Tree().SetActive(dest)
	out.Shown = dest.Path()
	return d.send(ctx, dest, f, out)
}

func (d *Dispatcher) send(ctx context.Context, m *menu.Menu, f menu.Frame, out *Outcome) error {
	var err error
	switch f.Op {
	case menu.OpReplace:
		err = d.transport.Replace(ctx, f)
	case menu.OpPatchKeyboard:
		err = d.transport.PatchKeyboard(ctx, f)
	default:
		return nil
	}
	if err != nil {
		m.Invalidate()
		return fmt.Errorf("transport %s: %w", f.Op, err)
	}
	out.Ops = append(out.Ops, f.Op)
	return nil
}

// close takes the acting menu off the screen and then out of the registries:
// a closed root unregisters its tree, any other menu is detached.
func (d *Dispatcher) close(ctx context.Context, p *menu.Press, text string, out *Outcome) error {
	tree, m := p.Tree, p.Menu
	if tree.Active() == m || m.IsRoot() {
		tree.SetActive(nil)
	}
	rm := Removal{Tree: tree.ID(), Menu: m.Path(), Text: m.Text()}
	if text = strings.TrimSpace(text); text != "" {
		rm.KeepMessage = true
		if text != m.Text() {
			rm.Text = text
			rm.Edited = true
		}
	}
	if err := d.transport.Remove(ctx, rm); err != nil {
		m.Invalidate()
		return fmt.Errorf("transport remove: %w", err)
	}
	out.Values = tree.Values().Snapshot()
	if m.IsRoot() {
		d.registry.Dispose(tree)
	} else {
		tree.Detach(m)
	}
	out.Closed = true
	out.Shown = ""
	events.Dispatch.Close(tree.ID(), m.Path(), rm.KeepMessage)
	return nil
}

// rebuild regenerates the nearest dynamic menu at or above the acting menu
// and redraws whatever is on screen afterwards.
func (d *Dispatcher) rebuild(ctx context.Context, p *menu.Press, out *Outcome) error {
	tree := p.Tree
	target := nearestDynamic(p.Menu)
	shown := tree.Active()
	fresh, err := tree.Rebuild(target)
	if err != nil {
		return err
	}
	if target == p.Menu {
		p.Menu = fresh
		if b, ok := fresh.Button(p.Button.ID()); ok {
			p.Button = b
		}
	}
	dest := tree.Active()
	if dest == nil {
		dest = fresh
	}
	if shown == nil {
		shown = dest
	}
	return d.show(ctx, shown, dest, out)
}

func nearestDynamic(m *menu.Menu) *menu.Menu {
	for cur := m; cur != nil; {
		if cur.Dynamic() {
			return cur
		}
		parent, _, ok := cur.Parent()
		if !ok {
			break
		}
		cur = parent
	}
	return m
}

func (d *Dispatcher) finish(p *menu.Press, out *Outcome) {
	if out.Values == nil {
		out.Values = p.Tree.Values().Snapshot()
	}
}

func (d *Dispatcher) unhandled(raw, reason string) (Outcome, error) {
	events.Dispatch.Unhandled(raw, reason)
	if d.opts.OnUnhandled != nil {
		d.opts.OnUnhandled(raw, reason)
	}
	return Outcome{}, nil
}

// fail funnels err through OnError. The acting menu is marked as needing a
// full draw since the transport may not show what its cache says.
func (d *Dispatcher) fail(raw string, m *menu.Menu, out *Outcome, err error) (Outcome, error) {
	if m != nil && !m.Detached() {
		m.Invalidate()
	}
	events.Dispatch.Error(raw, err)
	if d.opts.OnError != nil {
		d.opts.OnError(raw, err)
		return *out, nil
	}
	return *out, err
}
