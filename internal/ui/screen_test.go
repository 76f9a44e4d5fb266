package ui

import (
	"context"
	"errors"
	"testing"

	"github.com/atomicstack/inline-menus/internal/dispatcher"
	"github.com/atomicstack/inline-menus/internal/menu"
)

func TestScreenQueuesInOrder(t *testing.T) {
	s := NewScreen()
	ctx := context.Background()
	if err := s.Replace(ctx, menu.Frame{Tree: "a", Menu: "/a/"}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := s.PatchKeyboard(ctx, menu.Frame{Tree: "a", Menu: "/a/"}); err != nil {
		t.Fatalf("patch: %v", err)
	}
	if err := s.Remove(ctx, dispatcher.Removal{Tree: "a"}); err != nil {
		t.Fatalf("remove: %v", err)
	}
	ops := s.take()
	if len(ops) != 3 {
		t.Fatalf("expected 3 queued ops, got %d", len(ops))
	}
	if ops[0].frame.Op != menu.OpReplace || ops[1].frame.Op != menu.OpPatchKeyboard || ops[2].removal == nil {
		t.Fatalf("unexpected op order %#v", ops)
	}
	if len(s.take()) != 0 {
		t.Fatal("expected queue drained")
	}
	if msg := waitForScreen(s)(); msg != (screenMsg{}) {
		t.Fatalf("expected pending wake-up, got %#v", msg)
	}
}

func TestScreenRejectsAfterClose(t *testing.T) {
	s := NewScreen()
	s.Close()
	s.Close()
	if err := s.Replace(context.Background(), menu.Frame{Tree: "a"}); !errors.Is(err, ErrScreenClosed) {
		t.Fatalf("expected ErrScreenClosed, got %v", err)
	}
	if msg := waitForScreen(s)(); msg != (screenDoneMsg{}) {
		t.Fatalf("expected done message, got %#v", msg)
	}
}

func TestScreenHonoursContext(t *testing.T) {
	s := NewScreen()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Replace(ctx, menu.Frame{Tree: "a"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestFramesForSecondTreeAddMessage(t *testing.T) {
	m := NewModel(nil, NewScreen(), Options{})
	ctx := context.Background()
	kb := menu.Keyboard{{{ID: "x", Text: "X", Action: "/one/x"}}}
	_ = m.screen.Replace(ctx, menu.Frame{Tree: "one", Menu: "/one/", Text: "One", Keyboard: kb})
	_ = m.screen.Replace(ctx, menu.Frame{Tree: "two", Menu: "/two/", Text: "Two", Keyboard: kb})
	m.applyScreen()
	if len(m.messages) != 2 || m.currentLevel().Tree != "two" {
		t.Fatalf("expected focus on the newest message, got %d messages", len(m.messages))
	}
	m.cycleFocus(1)
	if m.currentLevel().Tree != "one" {
		t.Fatalf("expected focus to cycle to one, got %q", m.currentLevel().Tree)
	}
	_ = m.screen.Remove(ctx, dispatcher.Removal{Tree: "one", KeepMessage: true, Text: "One"})
	if quit := m.applyScreen(); quit {
		t.Fatal("did not expect quit while two is interactive")
	}
	if m.currentLevel().Tree != "two" {
		t.Fatalf("expected focus to move off the closed message, got %q", m.currentLevel().Tree)
	}
}
