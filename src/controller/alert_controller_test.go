package controller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signalrelay/src/model"
	"signalrelay/src/signal"
)

type stubEngine struct {
	mu      sync.Mutex
	signals []signal.Signal
	events  []model.TradeEvent
	panic   bool
}

func (s *stubEngine) Handle(ctx context.Context, sig signal.Signal) []model.TradeEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.panic {
		panic("engine exploded")
	}
	s.signals = append(s.signals, sig)
	return s.events
}

type stubAlerts struct {
	created []model.WebhookAlert
	err     error
}

func (s *stubAlerts) Create(ctx context.Context, alert *model.WebhookAlert) error {
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, *alert)
	return nil
}

type stubExceptions struct {
	created []model.Exception
}

func (s *stubExceptions) Create(ctx context.Context, exc *model.Exception) error {
	s.created = append(s.created, *exc)
	return nil
}

func newTestController(eng signalHandler, alerts webhookAlertRepository, exceptions exceptionRepository) *AlertController {
	logger, _ := logrustest.NewNullLogger()
	c := NewAlertController(signal.NewParser("USDT", "BTCUSDT"), eng, alerts, exceptions, Config{LogRawWebhooks: true}, logrus.NewEntry(logger))
	c.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }
	return c
}

func TestAcceptAlertForwardsSignal(t *testing.T) {
	opened := model.NewTradeEvent(model.TradeActionOpen, "BELUSDT", "buy", time.Now(), nil)
	eng := &stubEngine{events: []model.TradeEvent{opened}}
	alerts := &stubAlerts{}
	c := newTestController(eng, alerts, nil)

	events := c.AcceptAlert(context.Background(), []byte("Buy - BELUSDT.P, Price = 0.6852\n"))

	require.Len(t, eng.signals, 1)
	assert.Equal(t, "BELUSDT", eng.signals[0].Ticker)
	assert.Equal(t, signal.DirectionBuy, eng.signals[0].Direction)
	assert.Equal(t, []model.TradeEvent{opened}, events)

	require.Len(t, alerts.created, 1)
	assert.Equal(t, "BELUSDT", alerts.created[0].Ticker)
	assert.Equal(t, "0.6852", alerts.created[0].Price)

	last, ok := c.LastWebhook()
	require.True(t, ok)
	assert.Equal(t, "Buy - BELUSDT.P, Price = 0.6852", last.Raw)
	assert.Equal(t, []model.TradeEvent{opened}, last.Events)
}

func TestAcceptAlertStructuredPayload(t *testing.T) {
	eng := &stubEngine{}
	c := newTestController(eng, nil, nil)

	c.AcceptAlert(context.Background(), []byte(`{"signal":"BUY-CLOSE","secret":"x"}`))

	require.Len(t, eng.signals, 1)
	assert.Equal(t, "BTCUSDT", eng.signals[0].Ticker)
	assert.True(t, eng.signals[0].IsExit)
}

func TestAcceptAlertWithoutTickerSkipsEngine(t *testing.T) {
	eng := &stubEngine{}
	alerts := &stubAlerts{}
	c := newTestController(eng, alerts, nil)

	events := c.AcceptAlert(context.Background(), []byte("hello world"))

	assert.Nil(t, events)
	assert.Empty(t, eng.signals)
	assert.Len(t, alerts.created, 1, "ignored alerts are still logged")

	last, ok := c.LastWebhook()
	require.True(t, ok)
	assert.False(t, last.Signal.HasTicker())
}

func TestAcceptAlertStoreFailureIsCaptured(t *testing.T) {
	eng := &stubEngine{}
	exceptions := &stubExceptions{}
	c := newTestController(eng, &stubAlerts{err: errors.New("disk full")}, exceptions)

	c.AcceptAlert(context.Background(), []byte("Sell - ETHUSDT.P"))

	assert.Len(t, eng.signals, 1, "storage failures do not block trading")
	require.Len(t, exceptions.created, 1)
	assert.Equal(t, "storeAlert", exceptions.created[0].Method)
	assert.Equal(t, "disk full", exceptions.created[0].Message)
}

func TestAcceptAlertRecoversPanics(t *testing.T) {
	exceptions := &stubExceptions{}
	c := newTestController(&stubEngine{panic: true}, nil, exceptions)

	assert.NotPanics(t, func() {
		events := c.AcceptAlert(context.Background(), []byte("Buy - BTCUSDT.P"))
		assert.Nil(t, events)
	})

	require.Len(t, exceptions.created, 1)
	assert.Equal(t, "AcceptAlert", exceptions.created[0].Method)
	assert.Contains(t, exceptions.created[0].Message, "engine exploded")
	assert.NotEmpty(t, exceptions.created[0].Stack)
}

func TestLastWebhookEmpty(t *testing.T) {
	c := newTestController(&stubEngine{}, nil, nil)
	_, ok := c.LastWebhook()
	assert.False(t, ok)
}

func TestCaptureExceptionIgnoresNil(t *testing.T) {
	exceptions := &stubExceptions{}
	CaptureException(context.Background(), exceptions, "m", "f", "error", nil, nil)
	assert.Empty(t, exceptions.created)
}
