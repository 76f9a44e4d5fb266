package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

const footerText = "↑↓←→ move · enter press · esc back · tab next message · ctrl+c quit"

type styledLine struct {
	text  string
	style *lipgloss.Style
	raw   bool // text contains ANSI escapes; skip style wrapping, use ANSI-aware truncation
}

// View implements tea.Model.
func (m *Model) View() string {
	lines := make([]styledLine, 0, 16)
	if header := m.menuHeader(); header != "" {
		lines = append(lines, styledLine{text: header, style: styles.Header})
	}
	for i, lvl := range m.messages {
		if i == m.focus {
			continue
		}
		lines = append(lines, styledLine{text: summaryLine(lvl), style: styles.ClosedMessage})
	}
	current := m.currentLevel()
	if current == nil {
		lines = append(lines, styledLine{text: "(no menu)", style: styles.Info})
	} else {
		style := styles.Message
		if current.Closed {
			style = styles.ClosedMessage
		}
		for _, text := range strings.Split(current.Title, "\n") {
			lines = append(lines, styledLine{text: text, style: style})
		}
		lines = append(lines, m.keyboardLines(current)...)
	}
	if info := m.currentInfo(); info != "" {
		lines = append(lines, styledLine{}, styledLine{text: info, style: styles.Info})
	}
	switch {
	case m.errMsg != "":
		lines = append(lines, styledLine{text: m.errMsg, style: styles.Error})
	case m.loading:
		lines = append(lines, styledLine{text: "… " + m.pendingLabel, style: styles.Loading})
	default:
		lines = append(lines, styledLine{})
	}
	if prompt := m.filterPrompt(); prompt != "" {
		lines = append(lines, styledLine{text: prompt, raw: true})
	}
	if m.showFooter {
		lines = append(lines, styledLine{}, styledLine{text: footerText, style: styles.Footer})
	}
	lines = applyWidth(lines, m.width)
	lines = limitHeight(lines, m.height, m.width)
	return renderLines(lines)
}

// keyboardLines renders the visible part of the focused keyboard, one
// display line per keyboard row or filter match.
func (m *Model) keyboardLines(current *level) []styledLine {
	if current.Closed {
		return nil
	}
	if len(current.Items) == 0 {
		msg := "(no keys)"
		if current.Filter != "" {
			msg = "No matches for " + `"` + current.Filter + `"`
		}
		return []styledLine{{text: msg, style: styles.Info}}
	}
	m.syncViewport(current)
	all := current.Lines()
	start, end := 0, len(all)
	if maxLines := m.maxVisibleLines(); maxLines > 0 && len(all) > maxLines {
		start = current.ViewportOffset
		end = start + maxLines
		if end > len(all) {
			end = len(all)
		}
	}
	out := make([]styledLine, 0, end-start)
	for _, line := range all[start:end] {
		parts := make([]string, 0, len(line))
		for _, idx := range line {
			parts = append(parts, renderKey(current, idx))
		}
		out = append(out, styledLine{text: strings.Join(parts, " "), raw: true})
	}
	return out
}

func renderKey(current *level, idx int) string {
	item := current.Items[idx]
	label := "[ " + item.Label
	if item.URL != "" {
		label += " ↗"
	}
	label += " ]"
	style := styles.Key
	switch {
	case idx == current.Cursor:
		style = styles.SelectedKey
	case item.URL != "":
		style = styles.LinkKey
	}
	if style == nil {
		return label
	}
	return style.Render(label)
}

func summaryLine(l *level) string {
	title, _, _ := strings.Cut(l.Title, "\n")
	if l.Closed {
		return "· " + title
	}
	return "▸ " + title
}

// menuHeader joins the ids of the focused menu's path.
func (m *Model) menuHeader() string {
	current := m.currentLevel()
	if current == nil {
		return ""
	}
	return strings.Join(current.Segments(), menuHeaderSeparator)
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	resize, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	if !m.fixedWidth {
		m.width = resize.Width
	}
	if !m.fixedHeight {
		m.height = resize.Height
	}
	if current := m.currentLevel(); current != nil {
		m.syncViewport(current)
	}
	return nil
}

// maxVisibleLines is the number of keyboard lines that fit, or -1 when the
// height is unbounded.
func (m *Model) maxVisibleLines() int {
	if m.height <= 0 {
		return -1
	}
	used := 2 // status line and filter prompt
	if m.menuHeader() != "" {
		used++
	}
	used += len(m.messages)
	if current := m.currentLevel(); current != nil {
		used += strings.Count(current.Title, "\n")
	}
	if m.currentInfo() != "" {
		used += 2
	}
	if m.showFooter {
		used += 2
	}
	remain := m.height - used
	if remain < 1 {
		return 1
	}
	return remain
}

func (m *Model) setInfo(message string) {
	m.infoMsg = message
	m.infoExpire = time.Now().Add(5 * time.Second)
}

func (m *Model) forceClearInfo() {
	m.infoMsg = ""
	m.infoExpire = time.Time{}
}

func (m *Model) currentInfo() string {
	if m.infoMsg != "" && !m.infoExpire.IsZero() && time.Now().After(m.infoExpire) {
		m.infoMsg = ""
		m.infoExpire = time.Time{}
	}
	return m.infoMsg
}

func limitHeight(lines []styledLine, height, width int) []styledLine {
	if height <= 0 || len(lines) <= height {
		return lines
	}
	if height == 1 {
		return []styledLine{{text: truncateText("…", width)}}
	}
	trimmed := make([]styledLine, 0, height)
	trimmed = append(trimmed, lines[:height-1]...)
	trimmed = append(trimmed, styledLine{text: truncateText("…", width)})
	return trimmed
}

func applyWidth(lines []styledLine, width int) []styledLine {
	if width <= 0 {
		return lines
	}
	result := make([]styledLine, len(lines))
	for i, line := range lines {
		if line.raw {
			if lipgloss.Width(line.text) > width {
				line.text = truncate.StringWithTail(line.text, uint(width-1), "…")
			}
		} else {
			line.text = truncateText(line.text, width)
		}
		result[i] = line
	}
	return result
}

func renderLines(lines []styledLine) string {
	out := make([]string, len(lines))
	for i, line := range lines {
		if line.raw || line.style == nil || line.text == "" {
			out[i] = line.text
			continue
		}
		out[i] = line.style.Render(line.text)
	}
	return strings.Join(out, "\n")
}

func truncateText(text string, width int) string {
	if width <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= width {
		return text
	}
	if width == 1 {
		return string(runes[:1])
	}
	return string(runes[:width-1]) + "…"
}
