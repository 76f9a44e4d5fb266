package ui

import (
	"fmt"

	"github.com/atomicstack/inline-menus/internal/backend"
	tea "github.com/charmbracelet/bubbletea"
)

func waitForLayoutEvent(w *backend.Watcher) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-w.Events()
		if !ok {
			return layoutDoneMsg{}
		}
		return layoutEventMsg{event: evt}
	}
}

type layoutEventMsg struct {
	event backend.Event
}

type layoutDoneMsg struct{}

type reloadedMsg struct {
	path string
	err  error
}

func (m *Model) handleLayoutEventMsg(msg tea.Msg) tea.Cmd {
	eventMsg, ok := msg.(layoutEventMsg)
	if !ok {
		return nil
	}
	cmd := m.applyLayoutEvent(eventMsg.event)
	if m.watcher == nil {
		return cmd
	}
	waitCmd := waitForLayoutEvent(m.watcher)
	if cmd != nil {
		return tea.Batch(cmd, waitCmd)
	}
	return waitCmd
}

func (m *Model) handleLayoutDoneMsg(tea.Msg) tea.Cmd {
	m.watcher = nil
	return nil
}

// applyLayoutEvent hands a reloaded layout to the reloader. A layout that
// failed to load only reports its error and the shown menus stay as they are.
func (m *Model) applyLayoutEvent(evt backend.Event) tea.Cmd {
	if evt.Err != nil {
		m.errMsg = fmt.Sprintf("reload %s: %v", evt.Path, evt.Err)
		return nil
	}
	if m.reload == nil {
		return nil
	}
	reload, ctx := m.reload, m.ctx
	return func() tea.Msg {
		return reloadedMsg{path: evt.Path, err: reload(ctx, evt)}
	}
}

func (m *Model) handleReloadedMsg(msg tea.Msg) tea.Cmd {
	res, ok := msg.(reloadedMsg)
	if !ok {
		return nil
	}
	m.applyScreen()
	if res.err != nil {
		m.errMsg = fmt.Sprintf("reload %s: %v", res.path, res.err)
		return nil
	}
	m.errMsg = ""
	m.setInfo("reloaded " + res.path)
	return nil
}
