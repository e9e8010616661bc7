package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"signalrelay/src/model"
	"signalrelay/src/signal"
)

// Exchange is the order-placing side of the relay. A returned error means the exchange
// could not be reached; a result with Success=false means it answered and refused.
type Exchange interface {
	SetLeverage(ctx context.Context, ticker string, leverage int) (model.ExchangeResult, error)
	SubmitOrder(ctx context.Context, req model.OrderRequest) (model.ExchangeResult, error)
}

// Recorder receives every trade event. Implementations must not block.
type Recorder interface {
	Record(event model.TradeEvent)
}

// phase is a step of one handling pass: Idle -> Closing -> Opening -> Done.
type phase int

const (
	phaseIdle phase = iota
	phaseClosing
	phaseOpening
	phaseDone
)

// Engine decides which orders a signal implies and keeps the position ledger.
// Signals for one ticker are handled one at a time in arrival order; different
// tickers proceed in parallel.
type Engine struct {
	logger   *logrus.Entry
	exchange Exchange
	recorder Recorder
	cfg      Config
	ledger   *ledger
	locks    *tickerLocks
	now      func() time.Time
}

func NewEngine(logger *logrus.Entry, exchange Exchange, recorder Recorder, cfg Config) *Engine {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}

	return &Engine{
		logger:   logger,
		exchange: exchange,
		recorder: recorder,
		cfg:      cfg,
		ledger:   newLedger(),
		locks:    newTickerLocks(),
		now:      time.Now,
	}
}

// Handle applies one signal and returns the events it produced, in order.
// It never fails: every exchange problem ends up as an ERROR event.
func (e *Engine) Handle(ctx context.Context, sig signal.Signal) []model.TradeEvent {
	if ctx == nil {
		ctx = context.Background()
	}

	if !sig.HasTicker() {
		e.logger.WithField("raw", sig.Raw).Info("no ticker found in signal, ignoring")
		return nil
	}

	if !sig.IsExit && !sig.IsEntry() {
		e.logger.WithFields(logrus.Fields{
			"ticker":    sig.Ticker,
			"direction": sig.Direction,
		}).Info("entry signal without direction, ignoring")
		return nil
	}

	release, err := e.lock(ctx, sig.Ticker)
	if err != nil {
		ev := e.failure(sig.Ticker, string(sig.Direction), err, map[string]interface{}{
			"raw": sig.Raw,
		})
		return []model.TradeEvent{ev}
	}
	defer release()

	current, holding := e.ledger.get(sig.Ticker)

	var events []model.TradeEvent
	state := phaseIdle
	for state != phaseDone {
		switch state {
		case phaseIdle:
			state = plan(sig, current, holding)

		case phaseClosing:
			ev, ok := e.closePosition(ctx, current)
			events = append(events, ev)
			if !ok || sig.IsExit {
				state = phaseDone
				continue
			}
			state = phaseOpening

		case phaseOpening:
			events = append(events, e.openPosition(ctx, sig.Ticker, string(sig.Direction)))
			state = phaseDone
		}
	}

	return events
}

// plan picks the first step for a signal given the position currently held.
func plan(sig signal.Signal, current model.Position, holding bool) phase {
	switch {
	case sig.IsExit && holding:
		return phaseClosing
	case sig.IsExit:
		return phaseDone
	case !holding:
		return phaseOpening
	case current.Side != string(sig.Direction):
		return phaseClosing
	default:
		return phaseDone
	}
}

// Positions returns a copy of the ledger ordered by ticker.
func (e *Engine) Positions() []model.Position {
	return e.ledger.snapshot()
}

// Position looks up the open position for a ticker.
func (e *Engine) Position(ticker string) (model.Position, bool) {
	return e.ledger.get(ticker)
}

// Forget drops a position from the ledger without touching the exchange, for positions
// closed by hand on the exchange side. It reports whether a position was removed.
func (e *Engine) Forget(ctx context.Context, ticker string) (bool, error) {
	release, err := e.lock(ctx, ticker)
	if err != nil {
		return false, err
	}
	defer release()

	removed := e.ledger.remove(ticker)
	if removed {
		e.logger.WithField("ticker", ticker).Warn("position removed from ledger manually")
	}
	return removed, nil
}

func (e *Engine) lock(ctx context.Context, ticker string) (func(), error) {
	lockCtx := ctx
	if e.cfg.LockTimeout > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, e.cfg.LockTimeout)
		defer cancel()
	}

	release, err := e.locks.acquire(lockCtx, ticker)
	if err != nil {
		return nil, fmt.Errorf("%w for %s: %v", ErrConcurrencyTimeout, ticker, err)
	}
	return release, nil
}

func (e *Engine) openPosition(ctx context.Context, ticker, side string) model.TradeEvent {
	log := e.logger.WithFields(logrus.Fields{"ticker": ticker, "side": side})
	log.Info("opening position")

	leverage, err := e.call(ctx, func(ctx context.Context) (model.ExchangeResult, error) {
		return e.exchange.SetLeverage(ctx, ticker, e.cfg.Leverage)
	})
	if err != nil {
		return e.failure(ticker, side, err, map[string]interface{}{
			"action":   model.TradeActionOpen,
			"step":     "set_leverage",
			"leverage": e.cfg.Leverage,
			"response": leverage.Raw,
		})
	}

	req := model.OrderRequest{
		Ticker:     ticker,
		Side:       side,
		Size:       e.cfg.OrderSize(),
		MarginMode: e.cfg.MarginMode,
	}

	res, err := e.call(ctx, func(ctx context.Context) (model.ExchangeResult, error) {
		return e.exchange.SubmitOrder(ctx, req)
	})
	if err != nil {
		return e.failure(ticker, side, err, map[string]interface{}{
			"action":   model.TradeActionOpen,
			"step":     "submit_order",
			"size":     req.Size.String(),
			"leverage": e.cfg.Leverage,
			"response": res.Raw,
		})
	}

	now := e.now()
	e.ledger.put(model.Position{
		Ticker:    ticker,
		Side:      side,
		OrderID:   res.OrderID,
		EntryTime: now,
	})

	ev := model.NewTradeEvent(model.TradeActionOpen, ticker, side, now, map[string]interface{}{
		"size":              req.Size.String(),
		"position_size_usd": e.cfg.PositionSizeUSD.String(),
		"leverage":          e.cfg.Leverage,
		"margin_mode":       e.cfg.MarginMode,
		"response":          res.Raw,
	})
	ev.OrderID = res.OrderID

	log.WithField("order_id", res.OrderID).Info("position opened")
	e.emit(ev)
	return ev
}

// closePosition sends the opposite order for pos. The ledger entry is only removed
// once the exchange confirms; the bool reports that confirmation.
func (e *Engine) closePosition(ctx context.Context, pos model.Position) (model.TradeEvent, bool) {
	closeSide := model.OppositeSide(pos.Side)
	log := e.logger.WithFields(logrus.Fields{
		"ticker":     pos.Ticker,
		"side":       pos.Side,
		"close_side": closeSide,
	})
	log.Info("closing position")

	req := model.OrderRequest{
		Ticker:     pos.Ticker,
		Side:       closeSide,
		Size:       e.cfg.OrderSize(),
		MarginMode: e.cfg.MarginMode,
	}

	res, err := e.call(ctx, func(ctx context.Context) (model.ExchangeResult, error) {
		return e.exchange.SubmitOrder(ctx, req)
	})
	if err != nil {
		return e.failure(pos.Ticker, pos.Side, err, map[string]interface{}{
			"action":     model.TradeActionClose,
			"close_side": closeSide,
			"size":       req.Size.String(),
			"response":   res.Raw,
		}), false
	}

	e.ledger.remove(pos.Ticker)

	ev := model.NewTradeEvent(model.TradeActionClose, pos.Ticker, pos.Side, e.now(), map[string]interface{}{
		"original_side":  pos.Side,
		"close_side":     closeSide,
		"entry_order_id": pos.OrderID,
		"size":           req.Size.String(),
		"response":       res.Raw,
	})
	ev.OrderID = res.OrderID

	log.WithField("order_id", res.OrderID).Info("position closed")
	e.emit(ev)
	return ev, true
}

// call runs one exchange request under the exchange timeout and folds both failure
// modes into sentinel errors.
func (e *Engine) call(ctx context.Context, fn func(context.Context) (model.ExchangeResult, error)) (model.ExchangeResult, error) {
	callCtx := ctx
	if e.cfg.ExchangeTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.cfg.ExchangeTimeout)
		defer cancel()
	}

	res, err := fn(callCtx)
	if err != nil {
		return res, fmt.Errorf("%w: %v", ErrExchangeUnavailable, err)
	}
	if !res.Success {
		return res, fmt.Errorf("%w: code=%s msg=%s", ErrExchangeRejected, res.Code, res.Msg)
	}
	return res, nil
}

func (e *Engine) failure(ticker, side string, err error, detail map[string]interface{}) model.TradeEvent {
	if detail == nil {
		detail = map[string]interface{}{}
	}
	detail["error"] = err.Error()

	ev := model.NewTradeEvent(model.TradeActionError, ticker, side, e.now(), detail)
	ev.ErrorKind = errorKind(err)

	e.logger.WithFields(logrus.Fields{
		"ticker":     ticker,
		"side":       side,
		"error_kind": ev.ErrorKind,
	}).WithError(err).Error("trade failed")

	e.emit(ev)
	return ev
}

func (e *Engine) emit(ev model.TradeEvent) {
	if e.recorder == nil {
		return
	}
	e.recorder.Record(ev)
}
