package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"signalrelay/cmd/relay"
	"signalrelay/src/auth"
	"signalrelay/src/connectors"
	"signalrelay/src/database"
	"signalrelay/src/model"
	"signalrelay/src/repository"
	"signalrelay/src/signal"
)

var Version string

func main() {
	relay.SetupLogger()

	app := cli.NewApp()
	app.Name = "signalrelay"
	app.Usage = "TradingView to Bitget futures relay"
	app.Version = Version

	app.Commands = []cli.Command{
		serveCMD,
		parseCMD,
		eventsCMD,
		marginModeCMD,
		hashPasswordCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	serveCMD = cli.Command{
		Name:        "serve",
		Usage:       "run the webhook relay",
		Action:      serveAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Run the HTTP relay: webhook, status API and trade event stream`,
	}
	parseCMD = cli.Command{
		Name:        "parse",
		Usage:       "show how an alert text is interpreted",
		Action:      parseAction,
		ArgsUsage:   "<alert text>",
		Flags:       []cli.Flag{},
		Description: `Parse an alert with the configured QUOTE_SUFFIX and print the resulting signal as JSON`,
	}
	eventsCMD = cli.Command{
		Name:      "events",
		Usage:     "list stored trade events",
		Action:    eventsAction,
		ArgsUsage: "",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "ticker", Usage: "only events for this ticker, e.g. BTCUSDT"},
			cli.StringFlag{Name: "action", Usage: "OPEN, CLOSE or ERROR"},
			cli.IntFlag{Name: "limit", Value: 20, Usage: "number of events"},
		},
		Description: `Print the newest trade events from DATABASE_URL (requires ENABLE_DB=true)`,
	}
	marginModeCMD = cli.Command{
		Name:        "margin-mode",
		Usage:       "set the margin mode of a symbol on Bitget",
		Action:      marginModeAction,
		ArgsUsage:   "<ticker> <isolated|crossed>",
		Flags:       []cli.Flag{},
		Description: `Switch a symbol between isolated and crossed margin. Bitget refuses while positions or orders are open`,
	}
	hashPasswordCMD = cli.Command{
		Name:        "hash-password",
		Usage:       "print a bcrypt hash for ADMIN_PASSWORD_HASH",
		Action:      hashPasswordAction,
		ArgsUsage:   "<password>",
		Flags:       []cli.Flag{},
		Description: `Hash a dashboard password`,
	}
)

func serveAction(_ *cli.Context) error {
	logrus.WithField("cmd", "serve").Info("Starting relay CMD")

	r := &relay.Relay{}
	if err := r.Start(); err != nil {
		logrus.WithError(err).Error("Starting cmd")
		return err
	}
	return nil
}

func parseAction(c *cli.Context) error {
	text := strings.Join(c.Args(), " ")
	if strings.TrimSpace(text) == "" {
		return errors.New("alert text is required")
	}

	sig := signal.NewParserFromConfig(signal.GetConfig()).ParsePayload([]byte(text))
	return printJSON(sig)
}

func eventsAction(c *cli.Context) error {
	if !database.GetConfig().EnableDB {
		return errors.New("ENABLE_DB is false, no events are stored")
	}
	if err := database.InitMainDB(); err != nil {
		return err
	}
	defer func() { _ = database.Close() }()

	opts := repository.TradeEventSearchOptions{Limit: c.Int("limit")}
	if ticker := c.String("ticker"); ticker != "" {
		normalized := signal.NewParserFromConfig(signal.GetConfig()).NormalizeTicker(ticker)
		opts.Ticker = &normalized
	}
	if action := strings.ToUpper(c.String("action")); action != "" {
		opts.Action = &action
	}

	events, err := repository.NewTradeEventRepository().Search(context.Background(), opts)
	if err != nil {
		return err
	}
	return printJSON(events)
}

func marginModeAction(c *cli.Context) error {
	if c.NArg() != 2 {
		return errors.New("usage: margin-mode <ticker> <isolated|crossed>")
	}

	ticker := signal.NewParserFromConfig(signal.GetConfig()).NormalizeTicker(c.Args().Get(0))
	mode, err := model.NormalizeMarginMode(c.Args().Get(1))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	res, err := connectors.NewBitgetConnector(connectors.GetConfig()).SetMarginMode(ctx, ticker, mode)
	if err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("bitget rejected margin mode change: code=%s msg=%s (%s)", res.Code, res.Msg, connectors.GetErrorMsg(res.Code))
	}

	logrus.WithFields(logrus.Fields{"ticker": ticker, "margin_mode": mode}).Info("Margin mode updated")
	return nil
}

func hashPasswordAction(c *cli.Context) error {
	pass := c.Args().First()
	if pass == "" {
		return errors.New("password is required")
	}

	hash, err := auth.HashPassword(pass)
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
