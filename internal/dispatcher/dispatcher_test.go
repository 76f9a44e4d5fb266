package dispatcher

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/atomicstack/inline-menus/internal/menu"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type call struct {
	kind    string
	frame   menu.Frame
	removal Removal
}

type recorder struct {
	mu    sync.Mutex
	calls []call
	fail  error
}

func (r *recorder) record(c call) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		err := r.fail
		r.fail = nil
		return err
	}
	r.calls = append(r.calls, c)
	return nil
}

func (r *recorder) Replace(_ context.Context, f menu.Frame) error {
	return r.record(call{kind: "replace", frame: f})
}

func (r *recorder) PatchKeyboard(_ context.Context, f menu.Frame) error {
	return r.record(call{kind: "patch", frame: f})
}

func (r *recorder) Remove(_ context.Context, rm Removal) error {
	return r.record(call{kind: "remove", removal: rm})
}

func (r *recorder) kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.calls))
	for _, c := range r.calls {
		out = append(out, c.kind)
	}
	return out
}

func (r *recorder) last() call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[len(r.calls)-1]
}

func (r *recorder) reset() {
	r.mu.Lock()
	r.calls = nil
	r.mu.Unlock()
}

func open(t *testing.T, l menu.Layout, opts Options) (*Dispatcher, *recorder, *menu.Tree) {
	t.Helper()
	rec := &recorder{}
	d := New(nil, rec, opts)
	tree, err := menu.Build(l)
	require.NoError(t, err)
	require.NoError(t, d.Open(context.Background(), tree))
	require.Equal(t, []string{"replace"}, rec.kinds())
	rec.reset()
	return d, rec, tree
}

func result(r *menu.Result) menu.Action {
	return func(context.Context, *menu.Press) (menu.Reply, error) { return r, nil }
}

func TestNavigatingToUndrawnMenuReplacesMessage(t *testing.T) {
	d, rec, tree := open(t, menu.Layout{
		ID:   "main",
		Text: "Main",
		Buttons: []menu.Entry{
			menu.SubmenuSpec{
				Layout:     menu.Layout{ID: "sub", Text: "Main", Buttons: []menu.Entry{menu.Label{Text: "Inside"}}},
				ButtonID:   "goSub",
				ButtonText: "Open",
			},
		},
	}, Options{})

	out, err := d.Dispatch(context.Background(), "/main/goSub")
	require.NoError(t, err)
	require.True(t, out.Handled)
	require.Equal(t, "/main/sub/", out.Shown)
	require.Equal(t, []menu.Op{menu.OpReplace}, out.Ops, "a never drawn menu is never patched")
	require.Equal(t, "/main/sub/", rec.last().frame.Menu)
	sub, _ := tree.Lookup("sub")
	require.Same(t, sub, tree.Active())

	out, err = d.Back(context.Background(), "main")
	require.NoError(t, err)
	require.Equal(t, "/main/", out.Shown)
	require.Equal(t, []menu.Op{menu.OpPatchKeyboard}, out.Ops, "same text, different keyboard")
	require.Same(t, tree.Root(), tree.Active())
}

func TestSequenceOfButtonTextsPatchesKeyboardEachStep(t *testing.T) {
	countdown := func(context.Context, *menu.Press) (menu.Reply, error) {
		return menu.Steps(
			&menu.Result{ButtonText: "Last 3..."},
			&menu.Result{ButtonText: "Last 2..."},
			&menu.Result{ButtonText: "Last 1..."},
		), nil
	}
	d, rec, tree := open(t, menu.Layout{
		ID:      "main",
		Text:    "Main",
		Buttons: []menu.Entry{menu.ButtonSpec{ID: "count", Text: "Countdown", OnPress: countdown}},
	}, Options{})

	out, err := d.Dispatch(context.Background(), "/main/count")
	require.NoError(t, err)
	require.Equal(t, []menu.Op{menu.OpPatchKeyboard, menu.OpPatchKeyboard, menu.OpPatchKeyboard}, out.Ops)
	require.Equal(t, []string{"patch", "patch", "patch"}, rec.kinds())
	require.Equal(t, "Main", rec.last().frame.Text)
	b, _ := tree.Root().Button("count")
	require.Equal(t, "Last 1...", b.Text())
}

func TestRepeatedIdenticalTextSendsNothing(t *testing.T) {
	d, rec, _ := open(t, menu.Layout{
		ID:      "main",
		Text:    "Main",
		Buttons: []menu.Entry{menu.ButtonSpec{ID: "b", Text: "Start", OnPress: result(&menu.Result{ButtonText: "Last 3..."})}},
	}, Options{})

	for i := 0; i < 3; i++ {
		_, err := d.Dispatch(context.Background(), "/main/b")
		require.NoError(t, err)
	}
	require.Equal(t, []string{"patch"}, rec.kinds())
}

func TestCloseRemovesThenForgetsTree(t *testing.T) {
	var presses, unhandled int
	closeIt := func(context.Context, *menu.Press) (menu.Reply, error) {
		presses++
		return &menu.Result{Close: true, Value: "bye"}, nil
	}
	d, rec, tree := open(t, menu.Layout{
		ID:      "main",
		Text:    "Main",
		Buttons: []menu.Entry{menu.ButtonSpec{ID: "close", Text: "Close", OnPress: closeIt}},
	}, Options{OnUnhandled: func(event, reason string) { unhandled++ }})

	out, err := d.Dispatch(context.Background(), "/main/close")
	require.NoError(t, err)
	require.True(t, out.Closed)
	require.Empty(t, out.Shown)
	require.Equal(t, []menu.Value{{ID: "close", Value: "bye"}}, out.Values)
	require.Nil(t, tree.Active())
	require.Equal(t, []string{"remove"}, rec.kinds())
	require.Equal(t, Removal{Tree: "main", Menu: "/main/", Text: "Main"}, rec.last().removal)
	_, ok := d.Registry().LookupTree("main")
	require.False(t, ok)

	out, err = d.Dispatch(context.Background(), "/main/close")
	require.NoError(t, err)
	require.False(t, out.Handled)
	require.Equal(t, 1, presses, "a closed menu is never executed again")
	require.Equal(t, 1, unhandled)
	require.Len(t, rec.kinds(), 1)
}

func TestCloseChildKeepsMessage(t *testing.T) {
	d, rec, tree := open(t, menu.Layout{
		ID:   "main",
		Text: "Main",
		Buttons: []menu.Entry{
			menu.SubmenuSpec{
				Layout: menu.Layout{ID: "sub", Text: "Sub", Buttons: []menu.Entry{
					menu.ButtonSpec{ID: "done", Text: "Done", OnPress: result(&menu.Result{Close: true, CloseText: "Sub"})},
					menu.ButtonSpec{ID: "edit", Text: "Edit", OnPress: result(&menu.Result{Close: true, CloseText: "Saved"})},
				}},
				ButtonID: "goSub",
			},
		},
	}, Options{})
	ctx := context.Background()

	_, err := d.Dispatch(ctx, "/main/goSub")
	require.NoError(t, err)
	out, err := d.Dispatch(ctx, "/main/sub/done")
	require.NoError(t, err)
	require.True(t, out.Closed)
	require.Equal(t, Removal{Tree: "main", Menu: "/main/sub/", Text: "Sub", KeepMessage: true}, rec.last().removal)
	_, ok := tree.Lookup("sub")
	require.False(t, ok)
	_, ok = d.Registry().LookupTree("main")
	require.True(t, ok, "closing a child keeps the tree")

	out, err = d.Dispatch(ctx, "/main/sub/edit")
	require.NoError(t, err)
	require.False(t, out.Handled)
}

func TestCloseWithNewTextEditsMessage(t *testing.T) {
	d, rec, _ := open(t, menu.Layout{
		ID:      "main",
		Text:    "Main",
		Buttons: []menu.Entry{menu.ButtonSpec{ID: "save", Text: "Save", OnPress: result(&menu.Result{Close: true, CloseText: "Saved"})}},
	}, Options{})
	_, err := d.Dispatch(context.Background(), "/main/save")
	require.NoError(t, err)
	require.Equal(t, Removal{Tree: "main", Menu: "/main/", Text: "Saved", KeepMessage: true, Edited: true}, rec.last().removal)
}

func TestAttachTwiceReplacesGeneratedMenu(t *testing.T) {
	builds := 0
	gen := func(v *menu.Values) (menu.Content, error) {
		builds++
		return menu.Layout{ID: "picked", Text: "Picked " + v.String("more"), Buttons: []menu.Entry{menu.Label{Text: "OK"}}}, nil
	}
	d, rec, tree := open(t, menu.Layout{
		ID:   "main",
		Text: "Main",
		Buttons: []menu.Entry{
			menu.ButtonSpec{ID: "more", Text: "More", OnPress: result(&menu.Result{AttachFunc: gen, Value: "x"})},
			menu.SubmenuSpec{Layout: menu.Layout{ID: "tail", Text: "Tail"}},
		},
	}, Options{})
	ctx := context.Background()

	out, err := d.Dispatch(ctx, "/main/more")
	require.NoError(t, err)
	require.Equal(t, []menu.Op{menu.OpReplace}, out.Ops)
	first, ok := tree.Lookup("picked")
	require.True(t, ok)
	require.Equal(t, "/main/picked/", first.Path())
	require.Equal(t, "Picked x", first.Text())
	require.Equal(t, 2, first.Index())

	out, err = d.Dispatch(ctx, "/main/more")
	require.NoError(t, err)
	require.Equal(t, []menu.Op{menu.OpReplace}, out.Ops)
	second, ok := tree.Lookup("picked")
	require.True(t, ok)
	require.NotSame(t, first, second)
	require.True(t, first.Detached())
	require.Equal(t, first.ID(), second.ID())
	require.Equal(t, "/main/picked/", second.Path())
	require.Equal(t, 2, second.Index())
	require.Equal(t, 3, tree.Len())
	require.Equal(t, 2, builds)
	require.Equal(t, []string{"replace", "replace"}, rec.kinds())
}

func TestRebuildRedrawsDynamicMenu(t *testing.T) {
	size := func(v *menu.Values) (menu.Content, error) {
		return menu.Layout{
			Text: "Pick a size",
			Buttons: []menu.Entry{
				menu.ButtonSpec{ID: "bump", Text: "Bumped " + v.String("bump"), OnPress: result(&menu.Result{Rebuild: true, Value: "1"})},
			},
		}, nil
	}
	d, _, tree := open(t, menu.Layout{
		ID:   "main",
		Text: "Main",
		Buttons: []menu.Entry{
			menu.SubmenuSpec{Layout: menu.Layout{ID: "size"}, ButtonID: "goSize", ButtonText: "Size", Builder: size},
		},
	}, Options{})
	ctx := context.Background()

	_, err := d.Dispatch(ctx, "/main/goSize")
	require.NoError(t, err)
	old, _ := tree.Lookup("size")
	require.Equal(t, "Bumped", old.Buttons()[0].Text())

	out, err := d.Dispatch(ctx, "/main/size/bump")
	require.NoError(t, err)
	require.Equal(t, []menu.Op{menu.OpPatchKeyboard}, out.Ops)
	fresh, _ := tree.Lookup("size")
	require.NotSame(t, old, fresh)
	require.Same(t, fresh, tree.Active())
	require.Equal(t, "Bumped 1", fresh.Buttons()[0].Text())
	require.Equal(t, "/main/size/", out.Shown)

	out, err = d.Dispatch(ctx, "/main/size/bump")
	require.NoError(t, err)
	require.Empty(t, out.Ops, "rebuilding to identical content sends nothing")
}

func TestValueIsPushedAndReturned(t *testing.T) {
	d, _, tree := open(t, menu.Layout{
		ID:   "main",
		Text: "Main",
		Buttons: []menu.Entry{
			menu.ButtonSpec{ID: "chooseColor", Text: "Red", OnPress: result(&menu.Result{Value: "red"})},
			menu.ButtonSpec{ID: "chooseSize", Text: "L", OnPress: result(&menu.Result{Value: "L"})},
		},
	}, Options{})
	ctx := context.Background()

	_, err := d.Dispatch(ctx, "/main/chooseColor")
	require.NoError(t, err)
	out, err := d.Dispatch(ctx, "/main/chooseSize")
	require.NoError(t, err)
	require.True(t, out.HasValue)
	require.Equal(t, "L", out.Value)
	require.Equal(t, []menu.Value{{ID: "chooseColor", Value: "red"}, {ID: "chooseSize", Value: "L"}}, out.Values)
	require.Empty(t, out.Ops, "a value alone changes nothing on screen")
	require.Equal(t, 2, tree.Values().Len())
}

func TestNavigationErrorAppliesNothing(t *testing.T) {
	bad := result(&menu.Result{ButtonText: "Changed", Navigate: &menu.Target{Kind: menu.TargetID, Value: "missing"}})
	l := menu.Layout{
		ID:      "main",
		Text:    "Main",
		Buttons: []menu.Entry{menu.ButtonSpec{ID: "bad", Text: "Bad", OnPress: bad}},
	}

	d, rec, tree := open(t, l, Options{})
	_, err := d.Dispatch(context.Background(), "/main/bad")
	require.ErrorIs(t, err, menu.ErrUnresolved)
	var nerr *menu.NavigationError
	require.ErrorAs(t, err, &nerr)
	b, _ := tree.Root().Button("bad")
	require.Equal(t, "Bad", b.Text())
	require.Empty(t, rec.kinds())
	require.True(t, tree.Root().Changes().Has(menu.NeedsDraw))
	require.Equal(t, StateIdle, d.State("main"))

	var seen error
	d, _, _ = open(t, l, Options{OnError: func(_ string, err error) { seen = err }})
	out, err := d.Dispatch(context.Background(), "/main/bad")
	require.NoError(t, err)
	require.True(t, out.Handled)
	require.ErrorIs(t, seen, menu.ErrUnresolved)
}

func TestSelfNavigationIsAnError(t *testing.T) {
	d, _, _ := open(t, menu.Layout{
		ID:      "main",
		Text:    "Main",
		Buttons: []menu.Entry{menu.ButtonSpec{ID: "here", Text: "Here", Navigate: "/main/"}},
	}, Options{})
	_, err := d.Dispatch(context.Background(), "/main/here")
	require.ErrorIs(t, err, menu.ErrSelfNavigation)
}

func TestStrictSequenceRejectsUnknownValues(t *testing.T) {
	seq := func(context.Context, *menu.Press) (menu.Reply, error) {
		return menu.Steps("mystery", &menu.Result{MenuText: "After"}), nil
	}
	l := menu.Layout{
		ID:      "main",
		Text:    "Main",
		Buttons: []menu.Entry{menu.ButtonSpec{ID: "go", Text: "Go", OnPress: seq}},
	}

	d, _, _ := open(t, l, Options{Strict: true})
	_, err := d.Dispatch(context.Background(), "/main/go")
	require.ErrorIs(t, err, menu.ErrSequenceProtocol)

	d, _, tree := open(t, l, Options{})
	out, err := d.Dispatch(context.Background(), "/main/go")
	require.NoError(t, err)
	require.Equal(t, []menu.Op{menu.OpReplace}, out.Ops)
	require.Equal(t, "After", tree.Root().Text())

	var got []any
	handler := func(_ context.Context, _ *menu.Press, v any) (bool, error) {
		got = append(got, v)
		return true, nil
	}
	d, _, _ = open(t, l, Options{Strict: true, StepHandler: handler})
	_, err = d.Dispatch(context.Background(), "/main/go")
	require.NoError(t, err)
	require.Equal(t, []any{"mystery"}, got)
}

func TestFutureIsAwaited(t *testing.T) {
	later := func(context.Context, *menu.Press) (menu.Reply, error) {
		return menu.Future(func(context.Context) (menu.Reply, error) {
			return &menu.Result{MenuText: "Loaded"}, nil
		}), nil
	}
	d, rec, _ := open(t, menu.Layout{
		ID:      "main",
		Text:    "Loading",
		Buttons: []menu.Entry{menu.ButtonSpec{ID: "load", Text: "Load", OnPress: later}},
	}, Options{})
	_, err := d.Dispatch(context.Background(), "/main/load")
	require.NoError(t, err)
	require.Equal(t, "Loaded", rec.last().frame.Text)
}

func TestFallbackAndUnhandledButtons(t *testing.T) {
	var reasons []string
	l := menu.Layout{
		ID:   "main",
		Text: "Main",
		Buttons: []menu.Entry{
			menu.Label{ID: "plain", Text: "Plain"},
			menu.ButtonSpec{ID: "docs", Text: "Docs", URL: "https://example.com"},
		},
	}
	d, _, _ := open(t, l, Options{OnUnhandled: func(_, reason string) { reasons = append(reasons, reason) }})
	ctx := context.Background()
	for _, ev := range []string{"/main/plain", "/main/docs", "/main/nope", "/other/x", "not-an-event"} {
		out, err := d.Dispatch(ctx, ev)
		require.NoError(t, err)
		require.False(t, out.Handled, ev)
	}
	require.Equal(t, []string{"no action", "url button", "unknown button", "unknown tree", "malformed event"}, reasons)

	var pressed string
	fallback := func(_ context.Context, p *menu.Press) (menu.Reply, error) {
		pressed = p.Event
		return &menu.Result{ButtonText: "Pressed"}, nil
	}
	d, _, _ = open(t, l, Options{Fallback: fallback})
	out, err := d.Dispatch(ctx, "/main/plain")
	require.NoError(t, err)
	require.True(t, out.Handled)
	require.Equal(t, "/main/plain", pressed)
	require.Equal(t, []menu.Op{menu.OpPatchKeyboard}, out.Ops)
}

func TestTransportFailureLeavesMenuNeedingDraw(t *testing.T) {
	d, rec, tree := open(t, menu.Layout{
		ID:      "main",
		Text:    "Main",
		Buttons: []menu.Entry{menu.ButtonSpec{ID: "b", Text: "B", OnPress: result(&menu.Result{ButtonText: "C"})}},
	}, Options{})
	rec.fail = errors.New("network down")
	_, err := d.Dispatch(context.Background(), "/main/b")
	require.ErrorContains(t, err, "network down")
	require.True(t, tree.Root().Changes().Has(menu.NeedsDraw))

	f, err := tree.Root().Draw()
	require.NoError(t, err)
	require.Equal(t, menu.OpReplace, f.Op)
}

func TestDispatchesAgainstOneTreeAreSerialised(t *testing.T) {
	var inFlight, peak atomic.Int32
	slow := func(context.Context, *menu.Press) (menu.Reply, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return nil, nil
	}
	d, _, _ := open(t, menu.Layout{
		ID:      "main",
		Text:    "Main",
		Buttons: []menu.Entry{menu.ButtonSpec{ID: "slow", Text: "Slow", OnPress: slow}},
	}, Options{})

	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			_, err := d.Dispatch(context.Background(), "/main/slow")
			return err
		})
	}
	require.NoError(t, g.Wait())
	require.Equal(t, int32(1), peak.Load())
}

func TestLabelEqualToCurrentSendsNothing(t *testing.T) {
	d, rec, tree := open(t, menu.Layout{
		ID:      "main",
		Text:    "Main",
		Buttons: []menu.Entry{menu.ButtonSpec{ID: "b", Text: "Start", OnPress: result(&menu.Result{ButtonText: "Start"})}},
	}, Options{})

	out, err := d.Dispatch(context.Background(), "/main/b")
	require.NoError(t, err)
	require.True(t, out.Handled)
	require.Empty(t, out.Ops)
	require.Empty(t, rec.kinds())
	require.Zero(t, tree.Root().Changes())
}

func TestStrictSequenceRejectsEmptyResultStep(t *testing.T) {
	seq := func(context.Context, *menu.Press) (menu.Reply, error) {
		return menu.Steps(menu.Step{Kind: menu.StepResult}, &menu.Result{MenuText: "After"}), nil
	}
	l := menu.Layout{
		ID:      "main",
		Text:    "Main",
		Buttons: []menu.Entry{menu.ButtonSpec{ID: "go", Text: "Go", OnPress: seq}},
	}

	d, rec, tree := open(t, l, Options{Strict: true})
	_, err := d.Dispatch(context.Background(), "/main/go")
	require.ErrorIs(t, err, menu.ErrSequenceProtocol)
	require.Empty(t, rec.kinds())
	require.Equal(t, "Main", tree.Root().Text())

	d, _, tree = open(t, l, Options{})
	_, err = d.Dispatch(context.Background(), "/main/go")
	require.NoError(t, err)
	require.Equal(t, "After", tree.Root().Text())
}

// openPair opens trees "a" and "b" in one dispatcher. a's go button shows
// b's submenu, b's up button shows a's submenu and b's x button relabels
// itself on every press.
func openPair(t *testing.T) (*Dispatcher, *menu.Tree, *menu.Tree) {
	t.Helper()
	var n atomic.Int64
	flip := func(context.Context, *menu.Press) (menu.Reply, error) {
		return &menu.Result{ButtonText: "X" + strconv.FormatInt(n.Add(1), 10)}, nil
	}
	d := New(nil, &recorder{}, Options{})
	a, err := menu.Build(menu.Layout{
		ID:   "a",
		Text: "A",
		Buttons: []menu.Entry{
			menu.ButtonSpec{ID: "go", Text: "Go", Navigate: "b/bsub"},
			menu.SubmenuSpec{Layout: menu.Layout{ID: "asub", Text: "A sub"}, ButtonID: "toSub"},
		},
	})
	require.NoError(t, err)
	b, err := menu.Build(menu.Layout{
		ID:   "b",
		Text: "B",
		Buttons: []menu.Entry{
			menu.ButtonSpec{ID: "up", Text: "Up", Navigate: "a/asub"},
			menu.SubmenuSpec{
				Layout: menu.Layout{ID: "bsub", Text: "B sub", Buttons: []menu.Entry{
					menu.ButtonSpec{ID: "x", Text: "X", OnPress: flip},
				}},
				ButtonID: "toSub",
			},
		},
	})
	require.NoError(t, err)
	require.NoError(t, d.Open(context.Background(), a))
	require.NoError(t, d.Open(context.Background(), b))
	return d, a, b
}

func TestNavigationIntoPeerTreeHoldsPeerLock(t *testing.T) {
	d, _, _ := openPair(t)
	ctx := context.Background()

	var g errgroup.Group
	for i := 0; i < 50; i++ {
		g.Go(func() error {
			_, err := d.Dispatch(ctx, "/a/go")
			return err
		})
		g.Go(func() error {
			_, err := d.Dispatch(ctx, "/b/bsub/x")
			return err
		})
	}
	require.NoError(t, g.Wait())
}

func TestNavigationWaitsForHigherPeer(t *testing.T) {
	d, _, b := openPair(t)
	require.NoError(t, b.Lock(context.Background()))

	done := make(chan error, 1)
	go func() {
		_, err := d.Dispatch(context.Background(), "/a/go")
		done <- err
	}()
	select {
	case err := <-done:
		t.Fatalf("dispatch finished while peer was locked: %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	b.Unlock()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatalf("dispatch did not finish after peer was unlocked")
	}
}

func TestNavigationIntoLockedLowerPeerIsBusy(t *testing.T) {
	d, a, _ := openPair(t)
	require.NoError(t, a.Lock(context.Background()))

	_, err := d.Dispatch(context.Background(), "/b/up")
	require.ErrorIs(t, err, ErrTreeBusy)

	a.Unlock()
	out, err := d.Dispatch(context.Background(), "/b/up")
	require.NoError(t, err)
	require.Equal(t, "/a/asub/", out.Shown)
}
