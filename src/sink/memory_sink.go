package sink

import (
	"sync"

	"signalrelay/src/model"
)

// Memory keeps the last N events for the status API when no database is configured.
type Memory struct {
	mu     sync.RWMutex
	events []model.TradeEvent
	next   int
	full   bool
}

func NewMemory(size int) *Memory {
	if size <= 0 {
		size = 100
	}
	return &Memory{events: make([]model.TradeEvent, size)}
}

func (m *Memory) Record(ev model.TradeEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events[m.next] = ev
	m.next = (m.next + 1) % len(m.events)
	if m.next == 0 {
		m.full = true
	}
}

// Latest returns up to limit events, newest first. limit <= 0 means all retained events.
func (m *Memory) Latest(limit int) []model.TradeEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := m.next
	if m.full {
		count = len(m.events)
	}
	if limit <= 0 || limit > count {
		limit = count
	}

	out := make([]model.TradeEvent, 0, limit)
	for i := 0; i < limit; i++ {
		idx := (m.next - 1 - i + len(m.events)) % len(m.events)
		out = append(out, m.events[idx])
	}
	return out
}
