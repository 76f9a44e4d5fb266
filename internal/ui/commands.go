package ui

import (
	"fmt"

	"github.com/atomicstack/inline-menus/internal/logging/events"
	"github.com/atomicstack/inline-menus/internal/ui/command"
	tea "github.com/charmbracelet/bubbletea"
)

// handleCommandResult finishes a dispatch. Frames the dispatch produced are
// applied first so the outcome is shown against the current message.
func (m *Model) handleCommandResult(msg tea.Msg) tea.Cmd {
	result, ok := msg.(command.Result)
	if !ok {
		return nil
	}
	m.loading = false
	m.pendingLabel = ""
	quit := m.applyScreen()
	if result.Err != nil {
		m.errMsg = result.Err.Error()
		m.forceClearInfo()
		events.Action.Error(result.Err)
		return nil
	}
	out := result.Outcome
	switch {
	case !out.Handled:
		m.setInfo(fmt.Sprintf("%s: nothing to do", result.Request.Label))
	case out.HasValue:
		m.setInfo(fmt.Sprintf("%s = %v", out.Button, out.Value))
	case m.verbose && out.Shown != "":
		m.setInfo("showing " + out.Shown)
	case m.verbose && out.Closed:
		m.setInfo("closed " + out.Menu)
	}
	events.Action.Success(m.infoMsg)
	if quit || (out.Closed && !m.interactive()) {
		return tea.Quit
	}
	return nil
}
