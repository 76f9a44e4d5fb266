package events

import "github.com/atomicstack/inline-menus/internal/logging"

type TreeTracer struct{}

type RenderTracer struct{}

var (
	Tree   = TreeTracer{}
	Render = RenderTracer{}
)

func (TreeTracer) Attach(tree, menu, path string, index int) {
	logging.Trace("tree.attach", map[string]interface{}{"tree": tree, "menu": menu, "path": path, "index": index})
}

func (TreeTracer) Detach(tree, menu, path string, index int) {
	logging.Trace("tree.detach", map[string]interface{}{"tree": tree, "menu": menu, "path": path, "index": index})
}

func (TreeTracer) Rebuild(tree, menu, path string) {
	logging.Trace("tree.rebuild", map[string]interface{}{"tree": tree, "menu": menu, "path": path})
}

func (TreeTracer) Register(tree string) {
	logging.Trace("tree.register", map[string]interface{}{"tree": tree})
}

func (TreeTracer) Unregister(tree string) {
	logging.Trace("tree.unregister", map[string]interface{}{"tree": tree})
}

func (RenderTracer) Frame(tree, menu, op, changes string) {
	logging.Trace("render.frame", map[string]interface{}{"tree": tree, "menu": menu, "op": op, "changes": changes})
}
