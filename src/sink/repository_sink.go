package sink

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"signalrelay/src/model"
)

const writeTimeout = 5 * time.Second

// EventStore is the persistence side of RepositorySink.
type EventStore interface {
	Create(ctx context.Context, event *model.TradeEvent) error
}

// RepositorySink queues events in memory and writes them from a single worker, so
// Record never waits on the database. Events are dropped when the queue is full.
type RepositorySink struct {
	store   EventStore
	events  chan model.TradeEvent
	dropped atomic.Int64
	logger  *logrus.Entry
}

func NewRepositorySink(store EventStore, buffer int, logger *logrus.Entry) *RepositorySink {
	if buffer <= 0 {
		buffer = 256
	}
	return &RepositorySink{
		store:  store,
		events: make(chan model.TradeEvent, buffer),
		logger: logger.WithField("component", "repository_sink"),
	}
}

func (s *RepositorySink) Record(ev model.TradeEvent) {
	select {
	case s.events <- ev:
	default:
		s.dropped.Add(1)
		s.logger.WithFields(logrus.Fields{
			"event_id": ev.ID,
			"action":   ev.Action,
			"ticker":   ev.Ticker,
		}).Warn("trade event queue full, event not persisted")
	}
}

// Run writes queued events until ctx is done, then flushes what is left.
func (s *RepositorySink) Run(ctx context.Context) error {
	for {
		select {
		case ev := <-s.events:
			s.write(ev)
		case <-ctx.Done():
			s.flush()
			return nil
		}
	}
}

// Dropped counts events lost to a full queue.
func (s *RepositorySink) Dropped() int64 {
	return s.dropped.Load()
}

func (s *RepositorySink) flush() {
	for {
		select {
		case ev := <-s.events:
			s.write(ev)
		default:
			return
		}
	}
}

func (s *RepositorySink) write(ev model.TradeEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := s.store.Create(ctx, &ev); err != nil {
		s.logger.WithError(err).WithField("event_id", ev.ID).Error("failed to persist trade event")
	}
}
