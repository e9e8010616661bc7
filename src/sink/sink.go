package sink

import (
	"signalrelay/src/engine"
	"signalrelay/src/model"
)

// Multi fans one event out to several recorders, in order.
type Multi []engine.Recorder

func (m Multi) Record(ev model.TradeEvent) {
	for _, r := range m {
		if r != nil {
			r.Record(ev)
		}
	}
}
