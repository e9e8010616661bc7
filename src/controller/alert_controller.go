package controller

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	logger "github.com/sirupsen/logrus"

	"signalrelay/src/model"
	"signalrelay/src/signal"
)

type signalHandler interface {
	Handle(ctx context.Context, sig signal.Signal) []model.TradeEvent
}

type webhookAlertRepository interface {
	Create(ctx context.Context, alert *model.WebhookAlert) error
}

// LastWebhook describes the most recent alert the relay accepted.
type LastWebhook struct {
	ReceivedAt time.Time          `json:"received_at"`
	Raw        string             `json:"raw"`
	Signal     signal.Signal      `json:"signal"`
	Events     []model.TradeEvent `json:"events"`
}

// AlertController turns an authorised webhook body into engine work.
type AlertController struct {
	parser     *signal.Parser
	engine     signalHandler
	alerts     webhookAlertRepository
	exceptions exceptionRepository
	logRaw     bool
	log        *logger.Entry
	now        func() time.Time

	mu   sync.RWMutex
	last *LastWebhook
}

// NewAlertController wires the parser and engine. alerts and exceptions may be nil when
// no database is configured.
func NewAlertController(
	parser *signal.Parser,
	engine signalHandler,
	alerts webhookAlertRepository,
	exceptions exceptionRepository,
	cfg Config,
	log *logger.Entry,
) *AlertController {
	return &AlertController{
		parser:     parser,
		engine:     engine,
		alerts:     alerts,
		exceptions: exceptions,
		logRaw:     cfg.LogRawWebhooks,
		log:        log.WithField("component", "alert_controller"),
		now:        time.Now,
	}
}

// AcceptAlert parses body and hands the signal to the engine. It never fails; the
// returned events are informational.
func (c *AlertController) AcceptAlert(ctx context.Context, body []byte) (events []model.TradeEvent) {
	raw := strings.TrimSpace(string(body))
	receivedAt := c.now()

	defer func() {
		if r := recover(); r != nil {
			CaptureException(ctx, c.exceptions, "alert_controller", "AcceptAlert", "error",
				fmt.Errorf("panic handling alert: %v", r), map[string]interface{}{"raw": raw})
			events = nil
		}
	}()

	if c.logRaw {
		c.log.WithField("raw", raw).Info("webhook received")
	}

	sig := c.parser.ParsePayload(body)
	c.storeAlert(ctx, sig, receivedAt)
	c.setLast(LastWebhook{ReceivedAt: receivedAt, Raw: raw, Signal: sig})

	if !sig.HasTicker() {
		c.log.WithField("raw", raw).Warn("no ticker found in alert, ignoring")
		return nil
	}

	c.log.WithFields(logger.Fields{
		"ticker":    sig.Ticker,
		"direction": sig.Direction,
		"is_exit":   sig.IsExit,
		"price":     sig.Price,
	}).Info("signal parsed")

	events = c.engine.Handle(ctx, sig)
	c.setLast(LastWebhook{ReceivedAt: receivedAt, Raw: raw, Signal: sig, Events: events})
	return events
}

// LastWebhook returns the most recent alert, if any arrived since startup.
func (c *AlertController) LastWebhook() (LastWebhook, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.last == nil {
		return LastWebhook{}, false
	}
	return *c.last, true
}

func (c *AlertController) setLast(last LastWebhook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = &last
}

func (c *AlertController) storeAlert(ctx context.Context, sig signal.Signal, at time.Time) {
	if c.alerts == nil {
		return
	}

	alert := &model.WebhookAlert{
		Raw:        sig.Raw,
		Ticker:     sig.Ticker,
		Direction:  string(sig.Direction),
		IsExit:     sig.IsExit,
		Price:      sig.Price,
		ReceivedAt: at.UTC(),
	}
	if err := c.alerts.Create(ctx, alert); err != nil {
		CaptureException(ctx, c.exceptions, "alert_controller", "storeAlert", "warn", err,
			map[string]interface{}{"ticker": sig.Ticker})
	}
}
