package state

import "strings"

// Lines groups item indexes into display lines: keyboard rows while no filter
// is active, one match per line otherwise.
func (l *Level) Lines() [][]int {
	if len(l.Items) == 0 {
		return nil
	}
	filtered := strings.TrimSpace(l.Filter) != ""
	lines := make([][]int, 0, len(l.Items))
	for i, item := range l.Items {
		if filtered || i == 0 || item.Row != l.Items[i-1].Row {
			lines = append(lines, []int{i})
			continue
		}
		last := len(lines) - 1
		lines[last] = append(lines[last], i)
	}
	return lines
}

func (l *Level) lineCount() int {
	return len(l.Lines())
}

// cursorLine returns the line holding the cursor and the cursor's column in it.
func (l *Level) cursorLine(lines [][]int) (int, int) {
	for li, line := range lines {
		for col, idx := range line {
			if idx == l.Cursor {
				return li, col
			}
		}
	}
	return 0, 0
}

// MoveCursorNext moves the cursor to the following key, wrapping around.
func (l *Level) MoveCursorNext() bool {
	n := len(l.Items)
	if n == 0 {
		l.Cursor = 0
		return false
	}
	old := l.Cursor
	l.Cursor = (l.Cursor + 1) % n
	if l.Cursor < 0 {
		l.Cursor = 0
	}
	return old != l.Cursor
}

// MoveCursorPrev moves the cursor to the preceding key, wrapping around.
func (l *Level) MoveCursorPrev() bool {
	n := len(l.Items)
	if n == 0 {
		l.Cursor = 0
		return false
	}
	old := l.Cursor
	if l.Cursor <= 0 {
		l.Cursor = n - 1
	} else {
		l.Cursor--
	}
	return old != l.Cursor
}

// MoveCursorLine moves the cursor delta lines up or down, keeping its column
// where the target line is wide enough. Moving past either end wraps.
func (l *Level) MoveCursorLine(delta int) bool {
	lines := l.Lines()
	if len(lines) == 0 {
		l.Cursor = 0
		return false
	}
	old := l.Cursor
	li, col := l.cursorLine(lines)
	li = ((li+delta)%len(lines) + len(lines)) % len(lines)
	target := lines[li]
	if col >= len(target) {
		col = len(target) - 1
	}
	l.Cursor = target[col]
	return old != l.Cursor
}

// MoveCursorHome moves the cursor to the first key.
func (l *Level) MoveCursorHome() bool {
	if len(l.Items) == 0 {
		l.Cursor = 0
		return false
	}
	old := l.Cursor
	l.Cursor = 0
	return old != l.Cursor
}

// MoveCursorEnd moves the cursor to the last key.
func (l *Level) MoveCursorEnd() bool {
	n := len(l.Items)
	if n == 0 {
		l.Cursor = 0
		return false
	}
	old := l.Cursor
	l.Cursor = n - 1
	return old != l.Cursor
}

// MoveCursorPageUp moves the cursor up by the given page size in lines.
func (l *Level) MoveCursorPageUp(maxVisible int) bool {
	return l.moveCursorByLines(-l.pageSize(maxVisible))
}

// MoveCursorPageDown moves the cursor down by the given page size in lines.
func (l *Level) MoveCursorPageDown(maxVisible int) bool {
	return l.moveCursorByLines(l.pageSize(maxVisible))
}

func (l *Level) moveCursorByLines(delta int) bool {
	lines := l.Lines()
	if len(lines) == 0 {
		l.Cursor = 0
		return false
	}
	old := l.Cursor
	li, col := l.cursorLine(lines)
	li += delta
	if li < 0 {
		li = 0
	}
	if li >= len(lines) {
		li = len(lines) - 1
	}
	if col >= len(lines[li]) {
		col = len(lines[li]) - 1
	}
	l.Cursor = lines[li][col]
	return l.Cursor != old
}

func (l *Level) pageSize(maxVisible int) int {
	total := l.lineCount()
	if total == 0 {
		return 0
	}
	size := maxVisible
	if size <= 0 || size > total {
		size = total
	}
	if size < 1 {
		size = 1
	}
	return size
}

// EnsureCursorVisible adjusts the viewport offset, counted in lines, so the
// cursor's line stays visible.
func (l *Level) EnsureCursorVisible(maxVisible int) {
	if len(l.Items) == 0 {
		l.Cursor = 0
		l.ViewportOffset = 0
		return
	}
	if l.Cursor < 0 {
		l.Cursor = 0
	}
	if l.Cursor >= len(l.Items) {
		l.Cursor = len(l.Items) - 1
	}
	if maxVisible <= 0 {
		l.ViewportOffset = 0
		return
	}
	lines := l.Lines()
	line, _ := l.cursorLine(lines)
	maxOffset := len(lines) - maxVisible
	if maxOffset < 0 {
		maxOffset = 0
	}
	if l.ViewportOffset > maxOffset {
		l.ViewportOffset = maxOffset
	}
	if l.ViewportOffset < 0 {
		l.ViewportOffset = 0
	}
	if line < l.ViewportOffset {
		l.ViewportOffset = line
	}
	if upper := l.ViewportOffset + maxVisible - 1; line > upper {
		l.ViewportOffset = line - maxVisible + 1
		if l.ViewportOffset > maxOffset {
			l.ViewportOffset = maxOffset
		}
	}
}
