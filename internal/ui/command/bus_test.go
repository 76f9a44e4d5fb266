package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/atomicstack/inline-menus/internal/dispatcher"
)

type fakeDispatcher struct {
	events []string
	backs  []string
	err    error
}

func (f *fakeDispatcher) Dispatch(_ context.Context, raw string) (dispatcher.Outcome, error) {
	f.events = append(f.events, raw)
	return dispatcher.Outcome{Handled: true, Shown: "/main/"}, f.err
}

func (f *fakeDispatcher) Back(ctx context.Context, tree string) (dispatcher.Outcome, error) {
	if _, ok := ctx.Deadline(); !ok {
		return dispatcher.Outcome{}, errors.New("expected a deadline")
	}
	f.backs = append(f.backs, tree)
	return dispatcher.Outcome{Handled: true, Tree: tree}, nil
}

func TestExecutePress(t *testing.T) {
	fake := &fakeDispatcher{}
	bus := New(fake, 0)
	msg := bus.Execute(context.Background(), Request{Kind: Press, Event: "/main/ping"})()
	res, ok := msg.(Result)
	if !ok {
		t.Fatalf("expected Result, got %T", msg)
	}
	if res.Err != nil || !res.Outcome.Handled || res.Outcome.Shown != "/main/" {
		t.Fatalf("unexpected result %#v", res)
	}
	if len(fake.events) != 1 || fake.events[0] != "/main/ping" {
		t.Fatalf("expected one dispatched event, got %v", fake.events)
	}
}

func TestExecuteBackAppliesTimeout(t *testing.T) {
	fake := &fakeDispatcher{}
	bus := New(fake, time.Second)
	res := bus.Execute(context.Background(), Request{Kind: Back, Tree: "main"})().(Result)
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if len(fake.backs) != 1 || fake.backs[0] != "main" {
		t.Fatalf("expected back on main, got %v", fake.backs)
	}
}

func TestExecuteCarriesError(t *testing.T) {
	boom := errors.New("boom")
	bus := New(&fakeDispatcher{err: boom}, 0)
	res := bus.Execute(context.Background(), Request{Event: "/main/x"})().(Result)
	if !errors.Is(res.Err, boom) {
		t.Fatalf("expected boom, got %v", res.Err)
	}
}

func TestExecuteSkipsEmptyTarget(t *testing.T) {
	fake := &fakeDispatcher{}
	if msg := New(fake, 0).Execute(context.Background(), Request{Kind: Press})(); msg != nil {
		t.Fatalf("expected nil message, got %#v", msg)
	}
	if len(fake.events) != 0 {
		t.Fatalf("expected no dispatch, got %v", fake.events)
	}
}
