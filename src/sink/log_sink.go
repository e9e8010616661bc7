package sink

import (
	"github.com/sirupsen/logrus"

	"signalrelay/src/model"
)

// LogSink writes every trade event to the application log.
type LogSink struct {
	logger *logrus.Entry
}

func NewLogSink(logger *logrus.Entry) *LogSink {
	return &LogSink{logger: logger.WithField("component", "trade_log")}
}

func (s *LogSink) Record(ev model.TradeEvent) {
	entry := s.logger.WithFields(logrus.Fields{
		"event_id": ev.ID,
		"action":   ev.Action,
		"ticker":   ev.Ticker,
		"side":     ev.Side,
		"order_id": ev.OrderID,
		"detail":   ev.Detail,
	})

	if ev.Action == model.TradeActionError {
		entry.WithField("error_kind", ev.ErrorKind).Error("trade event")
		return
	}
	entry.Info("trade event")
}
