package signal

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	QuoteSuffix   string `envconfig:"QUOTE_SUFFIX" default:"USDT"`
	DefaultSymbol string `envconfig:"DEFAULT_SYMBOL" default:"BTCUSDT"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
