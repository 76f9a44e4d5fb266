package events

import "github.com/atomicstack/inline-menus/internal/logging"

type DispatchTracer struct{}

var Dispatch = DispatchTracer{}

func (DispatchTracer) Event(event string) {
	logging.Trace("dispatch.event", map[string]interface{}{"event": event})
}

func (DispatchTracer) State(tree, state string) {
	logging.Trace("dispatch.state", map[string]interface{}{"tree": tree, "state": state})
}

func (DispatchTracer) Unhandled(event, reason string) {
	logging.Trace("dispatch.unhandled", map[string]interface{}{"event": event, "reason": reason})
}

func (DispatchTracer) Navigate(tree, from, to string) {
	logging.Trace("dispatch.navigate", map[string]interface{}{"tree": tree, "from": from, "to": to})
}

func (DispatchTracer) Close(tree, menu string, keepMessage bool) {
	logging.Trace("dispatch.close", map[string]interface{}{"tree": tree, "menu": menu, "keep": keepMessage})
}

func (DispatchTracer) Step(tree, kind string) {
	logging.Trace("dispatch.step", map[string]interface{}{"tree": tree, "kind": kind})
}

func (DispatchTracer) Value(tree, button string) {
	logging.Trace("dispatch.value", map[string]interface{}{"tree": tree, "button": button})
}

func (DispatchTracer) Error(event string, err error) {
	if err == nil {
		return
	}
	logging.Trace("dispatch.error", map[string]interface{}{"event": event, "error": err.Error()})
}
