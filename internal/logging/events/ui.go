package events

import "github.com/atomicstack/fabella/internal/logging"

type UITracer struct{}

type MenuTracer struct{}

var (
	UI   = UITracer{}
	Menu = MenuTracer{}
)

func (UITracer) Action(mode, action string) {
	logging.Trace("ui.action", map[string]interface{}{"mode": mode, "action": action})
}

func (UITracer) Key(frontend, key string) {
	logging.Trace("ui.key", map[string]interface{}{"frontend": frontend, "key": key})
}

func (MenuTracer) Load(path string, tiles int, selected int) {
	logging.Trace("menu.load", map[string]interface{}{"path": path, "tiles": tiles, "selected": selected})
}

func (MenuTracer) Cursor(path string, idx, offset int) {
	logging.Trace("menu.cursor", map[string]interface{}{"path": path, "cursor": idx, "offset": offset})
}

func (MenuTracer) Enter(path, name string, isDir bool) {
	logging.Trace("menu.enter", map[string]interface{}{"path": path, "name": name, "isdir": isDir})
}

func (MenuTracer) Back(from, to string) {
	logging.Trace("menu.back", map[string]interface{}{"from": from, "to": to})
}

func (MenuTracer) SeenAll(path string, watched uint64, tiles int) {
	logging.Trace("menu.seen-all", map[string]interface{}{"path": path, "watched": watched, "tiles": tiles})
}

func (MenuTracer) Find(path, query string, idx int) {
	logging.Trace("menu.find", map[string]interface{}{"path": path, "query": query, "cursor": idx})
}

func (MenuTracer) Visibility(enabled bool) {
	logging.Trace("menu.visibility", map[string]interface{}{"enabled": enabled})
}
