package events

import "github.com/atomicstack/inline-menus/internal/logging"

type UITracer struct{}

type FilterTracer struct{}

type ActionTracer struct{}

type CommandTracer struct{}

var (
	UI      = UITracer{}
	Filter  = FilterTracer{}
	Action  = ActionTracer{}
	Command = CommandTracer{}
)

func (UITracer) MenuEnter(tree, menu, key, filter string) {
	logging.Trace("menu.enter", map[string]interface{}{
		"tree":   tree,
		"menu":   menu,
		"key":    key,
		"filter": filter,
	})
}

func (UITracer) MenuCursor(menu string, cursor int) {
	logging.Trace("menu.cursor", map[string]interface{}{"menu": menu, "cursor": cursor})
}

func (UITracer) Frame(tree, menu, op string) {
	logging.Trace("screen.frame", map[string]interface{}{"tree": tree, "menu": menu, "op": op})
}

func (UITracer) Remove(tree, menu string, keep bool) {
	logging.Trace("screen.remove", map[string]interface{}{"tree": tree, "menu": menu, "keep": keep})
}

func (UITracer) Focus(tree string) {
	logging.Trace("screen.focus", map[string]interface{}{"tree": tree})
}

func (ActionTracer) Error(err error) {
	if err == nil {
		return
	}
	logging.Trace("action.error", map[string]interface{}{"error": err.Error()})
}

func (ActionTracer) Success(info string) {
	logging.Trace("action.success", map[string]interface{}{"info": info})
}

func (FilterTracer) Cleared(menu string) {
	logging.Trace("filter.clear", map[string]interface{}{"menu": menu})
}

func (FilterTracer) WordBackspace(menu, filter string) {
	logging.Trace("filter.word-backspace", map[string]interface{}{"menu": menu, "filter": filter})
}

func (FilterTracer) Cursor(menu string, pos int) {
	logging.Trace("filter.cursor", map[string]interface{}{"menu": menu, "cursor": pos})
}

func (FilterTracer) CursorWord(menu string, pos int) {
	logging.Trace("filter.cursor-word", map[string]interface{}{"menu": menu, "cursor": pos})
}

func (FilterTracer) Append(menu, filter string) {
	logging.Trace("filter.append", map[string]interface{}{"menu": menu, "filter": filter})
}

func (FilterTracer) Backspace(menu, filter string) {
	logging.Trace("filter.backspace", map[string]interface{}{"menu": menu, "filter": filter})
}

func (CommandTracer) Queue(kind, target string) {
	logging.Trace("command.queue", map[string]interface{}{"kind": kind, "target": target})
}

func (CommandTracer) Skip(kind, target string) {
	logging.Trace("command.skip", map[string]interface{}{"kind": kind, "target": target})
}

func (CommandTracer) Result(kind, target string, handled bool, err error) {
	fields := map[string]interface{}{"kind": kind, "target": target, "handled": handled}
	if err != nil {
		fields["error"] = err.Error()
	}
	logging.Trace("command.result", fields)
}
