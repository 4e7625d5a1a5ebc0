package events

import "github.com/atomicstack/fabella/internal/logging"

type AssetTracer struct{}

type TileTracer struct{}

var (
	Asset = AssetTracer{}
	Tile  = TileTracer{}
)

func (AssetTracer) Stale(name string, produced, current uint64) {
	logging.Trace("asset.stale", map[string]interface{}{"asset": name, "produced": produced, "current": current})
}

func (AssetTracer) Upload(name string, width, height int) {
	logging.Trace("asset.upload", map[string]interface{}{"asset": name, "width": width, "height": height})
}

func (AssetTracer) Failed(name string, err error) {
	logging.Trace("asset.failed", map[string]interface{}{"asset": name, "error": err.Error()})
}

func (TileTracer) Persist(dir, name string, fields map[string]interface{}) {
	logging.Trace("tile.persist", map[string]interface{}{"dir": dir, "name": name, "fields": fields})
}

func (TileTracer) Throttled(dir, name string, position float64) {
	logging.Trace("tile.throttled", map[string]interface{}{"dir": dir, "name": name, "position": position})
}

func (TileTracer) Release(textures int) {
	logging.Trace("tile.release", map[string]interface{}{"textures": textures})
}
