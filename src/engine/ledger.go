package engine

import (
	"sort"
	"sync"

	"signalrelay/src/model"
)

// ledger maps a ticker to its open position. Writers must hold the ticker's lock;
// the mutex only protects the map itself against access from other tickers.
type ledger struct {
	mu        sync.RWMutex
	positions map[string]model.Position
}

func newLedger() *ledger {
	return &ledger{positions: make(map[string]model.Position)}
}

func (l *ledger) get(ticker string) (model.Position, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.positions[ticker]
	return p, ok
}

func (l *ledger) put(p model.Position) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.positions[p.Ticker] = p
}

func (l *ledger) remove(ticker string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.positions[ticker]
	delete(l.positions, ticker)
	return ok
}

// snapshot returns a copy of all positions ordered by ticker.
func (l *ledger) snapshot() []model.Position {
	l.mu.RLock()
	out := make([]model.Position, 0, len(l.positions))
	for _, p := range l.positions {
		out = append(out, p)
	}
	l.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out
}
