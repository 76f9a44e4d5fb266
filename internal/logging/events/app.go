package events

import "github.com/atomicstack/inline-menus/internal/logging"

type AppTracer struct{}

type LayoutTracer struct{}

var (
	App    = AppTracer{}
	Layout = LayoutTracer{}
)

func (AppTracer) Start(payload map[string]interface{}) {
	logging.Trace("app.start", payload)
}

func (AppTracer) Stop(reason string) {
	logging.Trace("app.stop", map[string]interface{}{"reason": reason})
}

func (LayoutTracer) Load(path string, menus int) {
	logging.Trace("layout.load", map[string]interface{}{"path": path, "menus": menus})
}

func (LayoutTracer) Reload(path string) {
	logging.Trace("layout.reload", map[string]interface{}{"path": path})
}

func (LayoutTracer) Error(path string, err error) {
	if err == nil {
		return
	}
	logging.Trace("layout.error", map[string]interface{}{"path": path, "error": err.Error()})
}
