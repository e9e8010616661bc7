package engine

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"

	"signalrelay/src/model"
)

type Config struct {
	PositionSizeUSD decimal.Decimal `envconfig:"POSITION_SIZE_USD" default:"10"`
	Leverage        int             `envconfig:"LEVERAGE" default:"5"`
	MarginMode      string          `envconfig:"MARGIN_MODE" default:"isolated"` // isolated | crossed (cross accepted)
	ExchangeTimeout time.Duration   `envconfig:"EXCHANGE_TIMEOUT" default:"10s"`
	LockTimeout     time.Duration   `envconfig:"LOCK_TIMEOUT" default:"30s"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	if err := config.Normalize(); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}

// Normalize checks sizing and rewrites MarginMode to the exchange spelling.
func (c *Config) Normalize() error {
	if c.Leverage <= 0 {
		return fmt.Errorf("LEVERAGE must be positive, got %d", c.Leverage)
	}
	if !c.PositionSizeUSD.IsPositive() {
		return fmt.Errorf("POSITION_SIZE_USD must be positive, got %s", c.PositionSizeUSD)
	}

	mode, err := model.NormalizeMarginMode(c.MarginMode)
	if err != nil {
		return fmt.Errorf("MARGIN_MODE: %w", err)
	}
	c.MarginMode = mode
	return nil
}

// OrderSize is the USD notional sent with every open and close order.
func (c Config) OrderSize() decimal.Decimal {
	return c.PositionSizeUSD.Mul(decimal.NewFromInt(int64(c.Leverage)))
}
