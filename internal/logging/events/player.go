package events

import "github.com/atomicstack/fabella/internal/logging"

type PlayerTracer struct{}

type StoreTracer struct{}

var (
	Player = PlayerTracer{}
	Store  = StoreTracer{}
)

func (PlayerTracer) Start(path string, position float64) {
	logging.Trace("player.start", map[string]interface{}{"path": path, "position": position})
}

func (PlayerTracer) Stop(path string, position float64) {
	logging.Trace("player.stop", map[string]interface{}{"path": path, "position": position})
}

func (PlayerTracer) Pause(paused bool) {
	logging.Trace("player.pause", map[string]interface{}{"paused": paused})
}

func (PlayerTracer) Seek(amount float64, mode string) {
	logging.Trace("player.seek", map[string]interface{}{"amount": amount, "mode": mode})
}

func (PlayerTracer) Immune(position float64) {
	logging.Trace("player.immune", map[string]interface{}{"position": position})
}

func (PlayerTracer) EOF(path string, position float64) {
	logging.Trace("player.eof", map[string]interface{}{"path": path, "position": position})
}

func (StoreTracer) Write(dir, record string, tiles int) {
	logging.Trace("store.write", map[string]interface{}{"dir": dir, "record": record, "tiles": tiles})
}

func (StoreTracer) Pending(dir string, records int) {
	logging.Trace("store.pending", map[string]interface{}{"dir": dir, "records": records})
}

func (StoreTracer) Fallback(dir string, entries int) {
	logging.Trace("store.fallback", map[string]interface{}{"dir": dir, "entries": entries})
}
