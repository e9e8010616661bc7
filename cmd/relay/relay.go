package relay

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"signalrelay/src/auth"
	"signalrelay/src/connectors"
	"signalrelay/src/controller"
	"signalrelay/src/database"
	"signalrelay/src/engine"
	"signalrelay/src/handler"
	"signalrelay/src/repository"
	"signalrelay/src/security"
	"signalrelay/src/server"
	"signalrelay/src/sink"
	alertsignal "signalrelay/src/signal"
)

type Relay struct{}

// Start runs the relay until SIGINT or SIGTERM.
func (t *Relay) Start() error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Error("Failed to connect to main database")
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close database")
		}
	}()

	return Run(ctx)
}

// Run wires the relay from env config and serves until ctx is done.
func Run(ctx context.Context) error {
	cfg := GetConfig()
	serverCfg := server.GetConfig()
	engineCfg := engine.GetConfig()
	log := logrus.WithField("app", cfg.AppName)

	exchange := connectors.NewBitgetConnector(connectors.GetConfig())

	memory := sink.NewMemory(cfg.RecentEvents)
	hub := sink.NewHub(log)
	defer hub.Close()

	recorders := sink.Multi{sink.NewLogSink(log), memory, hub}

	var (
		repoSink  *sink.RepositorySink
		eventRepo *repository.TradeEventRepository
	)
	if database.MainDB != nil {
		eventRepo = repository.NewTradeEventRepository()
		repoSink = sink.NewRepositorySink(eventRepo, cfg.EventBuffer, log)
		recorders = append(recorders, repoSink)
	}

	eng := engine.NewEngine(log.WithField("component", "engine"), exchange, recorders, engineCfg)
	parser := alertsignal.NewParserFromConfig(alertsignal.GetConfig())

	var alerts *controller.AlertController
	if database.MainDB != nil {
		alerts = controller.NewAlertController(parser, eng,
			repository.NewWebhookAlertRepository(), repository.NewExceptionRepository(),
			controller.GetConfig(), log)
	} else {
		alerts = controller.NewAlertController(parser, eng, nil, nil, controller.GetConfig(), log)
	}

	events := handler.EventsHandler(nil, memory)
	if eventRepo != nil {
		events = handler.EventsHandler(eventRepo, memory)
	}

	info := handler.TradingInfo{
		StartedAt:          time.Now().UTC(),
		ExchangeConfigured: exchange.Configured(),
		PositionSizeUSD:    engineCfg.PositionSizeUSD.String(),
		Leverage:           engineCfg.Leverage,
		MarginMode:         engineCfg.MarginMode,
		WebhookURL:         serverCfg.WebhookURL(),
	}

	router := server.NewRouter(server.Routes{
		Webhook:        handler.WebhookHandler(security.GetConfig().WebhookSecret, alerts),
		Status:         handler.StatusHandler(info, eng, alerts, memory),
		Positions:      handler.PositionsHandler(eng),
		ForgetPosition: handler.ForgetPositionHandler(eng),
		Events:         events,
		LastWebhook:    handler.LastWebhookHandler(alerts),
		EventStream:    hub,
		AdminAuth:      auth.BasicAuth(auth.GetConfig()),
	})

	log.WithFields(logrus.Fields{
		"port":                serverCfg.Port,
		"exchange_configured": info.ExchangeConfigured,
		"position_size_usd":   info.PositionSizeUSD,
		"leverage":            info.Leverage,
		"margin_mode":         info.MarginMode,
		"persist_events":      repoSink != nil,
	}).Info("Starting signal relay")

	// The writer outlives the server so events from requests drained during shutdown
	// still reach the database.
	sinkCtx, stopSink := context.WithCancel(context.Background())
	defer stopSink()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer stopSink()
		return server.StartServer(gctx, serverCfg.Port, router, serverCfg.ShutdownTimeout)
	})
	if repoSink != nil {
		g.Go(func() error {
			return repoSink.Run(sinkCtx)
		})
	}

	return g.Wait()
}
