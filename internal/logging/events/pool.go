package events

import "github.com/atomicstack/fabella/internal/logging"

type PoolTracer struct{}

var Pool = PoolTracer{}

func (PoolTracer) Flush(name string, discarded int) {
	logging.Trace("pool.flush", map[string]interface{}{"pool": name, "discarded": discarded})
}

func (PoolTracer) Panic(name string, recovered interface{}) {
	logging.Trace("pool.panic", map[string]interface{}{"pool": name, "panic": recovered})
}

func (PoolTracer) Drop(name string) {
	logging.Trace("pool.drop", map[string]interface{}{"pool": name})
}

func (PoolTracer) Close(name string) {
	logging.Trace("pool.close", map[string]interface{}{"pool": name})
}
