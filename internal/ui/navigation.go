package ui

import (
	"github.com/atomicstack/inline-menus/internal/logging/events"
	"github.com/atomicstack/inline-menus/internal/ui/command"
	tea "github.com/charmbracelet/bubbletea"
)

// handleEscapeKey clears an active filter first, then navigates the focused
// tree to the parent menu. Escape on a root menu quits.
func (m *Model) handleEscapeKey() tea.Cmd {
	current := m.currentLevel()
	if current == nil {
		return tea.Quit
	}
	if current.Filter != "" {
		before := current.FilterCursorPos()
		current.SetFilter("", 0)
		m.noteFilterCursorChange(current, before)
		events.Filter.Cleared(current.ID)
		m.syncViewport(current)
		return nil
	}
	if current.Closed || current.IsRoot() {
		return tea.Quit
	}
	if m.loading {
		return nil
	}
	m.startRequest("back")
	return m.bus.Execute(m.ctx, command.Request{Kind: command.Back, Tree: current.Tree, Label: "back"})
}

// handleEnterKey presses the key under the cursor. URL keys only show
// their link.
func (m *Model) handleEnterKey() tea.Cmd {
	if m.loading {
		return nil
	}
	current := m.currentLevel()
	if current == nil {
		return nil
	}
	item, ok := current.Current()
	if !ok {
		return nil
	}
	events.UI.MenuEnter(current.Tree, current.ID, item.ID, current.Filter)
	if item.URL != "" {
		m.errMsg = ""
		m.setInfo(item.Label + ": " + item.URL)
		return nil
	}
	before := current.FilterCursorPos()
	current.SetFilter("", 0)
	m.noteFilterCursorChange(current, before)
	m.startRequest(item.Label)
	return m.bus.Execute(m.ctx, command.Request{Kind: command.Press, Tree: current.Tree, Event: item.Action, Label: item.Label})
}

func (m *Model) startRequest(label string) {
	m.loading = true
	m.pendingLabel = label
	m.errMsg = ""
	m.forceClearInfo()
}

// cycleFocus moves the focus to the next message that still has a keyboard.
func (m *Model) cycleFocus(delta int) {
	n := len(m.messages)
	if n < 2 {
		return
	}
	for step := 1; step < n; step++ {
		idx := ((m.focus+delta*step)%n + n) % n
		if !m.messages[idx].Closed {
			m.focus = idx
			events.UI.Focus(m.messages[idx].Tree)
			return
		}
	}
}

func (m *Model) moveCursor(move func(*level) bool) {
	current := m.currentLevel()
	if current == nil {
		return
	}
	if move(current) {
		events.UI.MenuCursor(current.ID, current.Cursor)
	}
	m.syncViewport(current)
}

func (m *Model) syncViewport(l *level) {
	if l == nil {
		return
	}
	l.EnsureCursorVisible(m.maxVisibleLines())
}

func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	if keyMsg.String() == "ctrl+c" {
		return tea.Quit
	}
	if m.handleTextInput(keyMsg) {
		return nil
	}
	switch keyMsg.String() {
	case "esc":
		return m.handleEscapeKey()
	case "enter":
		return m.handleEnterKey()
	case "tab":
		m.cycleFocus(1)
	case "shift+tab":
		m.cycleFocus(-1)
	case "up":
		m.moveCursor(func(l *level) bool { return l.MoveCursorLine(-1) })
	case "down":
		m.moveCursor(func(l *level) bool { return l.MoveCursorLine(1) })
	case "left":
		m.moveCursor((*level).MoveCursorPrev)
	case "right":
		m.moveCursor((*level).MoveCursorNext)
	case "pgup":
		m.moveCursor(func(l *level) bool { return l.MoveCursorPageUp(m.maxVisibleLines()) })
	case "pgdown":
		m.moveCursor(func(l *level) bool { return l.MoveCursorPageDown(m.maxVisibleLines()) })
	case "home":
		m.moveCursor((*level).MoveCursorHome)
	case "end":
		m.moveCursor((*level).MoveCursorEnd)
	}
	return nil
}
