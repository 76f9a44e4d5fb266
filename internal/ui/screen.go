package ui

import (
	"context"
	"errors"
	"sync"

	"github.com/atomicstack/inline-menus/internal/dispatcher"
	"github.com/atomicstack/inline-menus/internal/logging/events"
	"github.com/atomicstack/inline-menus/internal/menu"
	uistate "github.com/atomicstack/inline-menus/internal/ui/state"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrScreenClosed is returned by a Screen after Close.
var ErrScreenClosed = errors.New("screen closed")

// screenOp is one transport call waiting for the UI goroutine.
type screenOp struct {
	frame   menu.Frame
	removal *dispatcher.Removal
}

// Screen is the dispatcher transport of the terminal UI. Calls are queued and
// applied by the model on the UI goroutine, in the order they were made.
type Screen struct {
	mu     sync.Mutex
	queue  []screenOp
	notify chan struct{}
	closed bool
}

// NewScreen returns an empty screen.
func NewScreen() *Screen {
	return &Screen{notify: make(chan struct{}, 1)}
}

// Replace queues a full message replace.
func (s *Screen) Replace(ctx context.Context, f menu.Frame) error {
	f.Op = menu.OpReplace
	return s.push(ctx, screenOp{frame: f})
}

// PatchKeyboard queues a keyboard patch.
func (s *Screen) PatchKeyboard(ctx context.Context, f menu.Frame) error {
	f.Op = menu.OpPatchKeyboard
	return s.push(ctx, screenOp{frame: f})
}

// Remove queues the removal of a tree's message.
func (s *Screen) Remove(ctx context.Context, r dispatcher.Removal) error {
	return s.push(ctx, screenOp{removal: &r})
}

// Close stops accepting calls and wakes any waiting listener.
func (s *Screen) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.notify)
}

func (s *Screen) push(ctx context.Context, op screenOp) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrScreenClosed
	}
	s.queue = append(s.queue, op)
	select {
	case s.notify <- struct{}{}:
	default:
	}
	return nil
}

// take hands over everything queued so far.
func (s *Screen) take() []screenOp {
	s.mu.Lock()
	defer s.mu.Unlock()
	ops := s.queue
	s.queue = nil
	return ops
}

type screenMsg struct{}

type screenDoneMsg struct{}

func waitForScreen(s *Screen) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-s.notify; !ok {
			return screenDoneMsg{}
		}
		return screenMsg{}
	}
}

func (m *Model) handleScreenMsg(msg tea.Msg) tea.Cmd {
	quit := m.applyScreen()
	if quit {
		return tea.Quit
	}
	if m.screen != nil {
		return waitForScreen(m.screen)
	}
	return nil
}

func (m *Model) handleScreenDoneMsg(tea.Msg) tea.Cmd {
	m.applyScreen()
	return tea.Quit
}

// applyScreen applies queued transport calls. It reports whether the last
// interactive message went away.
func (m *Model) applyScreen() bool {
	if m.screen == nil {
		return false
	}
	ops := m.screen.take()
	if len(ops) == 0 {
		return false
	}
	removed := false
	for _, op := range ops {
		if op.removal != nil {
			m.applyRemoval(*op.removal)
			removed = true
			continue
		}
		m.applyFrame(op.frame)
	}
	return removed && !m.interactive()
}

func (m *Model) applyFrame(f menu.Frame) {
	events.UI.Frame(f.Tree, f.Menu, f.Op.String())
	idx := m.messageIndex(f.Tree)
	if idx < 0 {
		m.messages = append(m.messages, newLevel(f))
		m.focus = len(m.messages) - 1
		m.syncViewport(m.messages[m.focus])
		return
	}
	lvl := m.messages[idx]
	if f.Op == menu.OpReplace || lvl.Closed {
		lvl.Apply(f)
	} else {
		lvl.UpdateItems(uistate.ItemsFromKeyboard(f.Keyboard))
	}
	m.focus = idx
	m.syncViewport(lvl)
}

func (m *Model) applyRemoval(r dispatcher.Removal) {
	events.UI.Remove(r.Tree, r.Menu, r.KeepMessage)
	idx := m.messageIndex(r.Tree)
	if idx < 0 {
		return
	}
	if r.KeepMessage {
		text := ""
		if r.Edited {
			text = r.Text
		}
		m.messages[idx].Close(text)
	} else {
		m.messages = append(m.messages[:idx], m.messages[idx+1:]...)
	}
	m.refocus()
}

func (m *Model) messageIndex(tree string) int {
	for i, lvl := range m.messages {
		if lvl.Tree == tree {
			return i
		}
	}
	return -1
}

// interactive reports whether any shown message still has a keyboard.
func (m *Model) interactive() bool {
	for _, lvl := range m.messages {
		if !lvl.Closed {
			return true
		}
	}
	return false
}

// refocus moves the focus to the nearest message that still has a keyboard.
func (m *Model) refocus() {
	if m.focus >= len(m.messages) {
		m.focus = len(m.messages) - 1
	}
	if m.focus < 0 {
		m.focus = 0
	}
	for i := m.focus; i >= 0 && i < len(m.messages); i-- {
		if !m.messages[i].Closed {
			m.focus = i
			return
		}
	}
	for i := m.focus + 1; i < len(m.messages); i++ {
		if !m.messages[i].Closed {
			m.focus = i
			return
		}
	}
}
