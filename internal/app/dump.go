package app

import (
	"io"
	"strconv"
	"strings"

	"github.com/atomicstack/inline-menus/internal/format/table"
	"github.com/atomicstack/inline-menus/internal/menu"
)

var dumpHeader = []string{"INDEX", "ID", "PATH", "FLAGS", "BUTTONS"}

// Dump writes one line per registered menu of t. Dynamic menus that were
// never built show no buttons.
func Dump(w io.Writer, t *menu.Tree) error {
	rows := make([][]string, 0, t.Len())
	for _, m := range t.Menus() {
		rows = append(rows, []string{
			strconv.Itoa(m.Index()),
			m.ID(),
			m.Path(),
			menuFlags(m),
			strings.Join(buttonIDs(m), ","),
		})
	}
	_, err := io.WriteString(w, table.Render(dumpHeader, rows, []table.Alignment{table.AlignRight}))
	return err
}

func menuFlags(m *menu.Menu) string {
	var flags []string
	if m.IsRoot() {
		flags = append(flags, "root")
	}
	if m.Dynamic() {
		flags = append(flags, "dynamic")
	}
	if m.Impure() {
		flags = append(flags, "impure")
	}
	flags = append(flags, m.Changes().String())
	return strings.Join(flags, ",")
}

func buttonIDs(m *menu.Menu) []string {
	buttons := m.Buttons()
	ids := make([]string, 0, len(buttons))
	for _, b := range buttons {
		id := b.ID()
		if b.URL() != "" {
			id += "↗"
		}
		ids = append(ids, id)
	}
	return ids
}
