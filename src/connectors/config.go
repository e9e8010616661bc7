package connectors

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	BitgetAPIKey     string `envconfig:"BITGET_API_KEY"`
	BitgetAPISecret  string `envconfig:"BITGET_API_SECRET"`
	BitgetPassphrase string `envconfig:"BITGET_PASSPHRASE"`

	BitgetBaseURL     string        `envconfig:"BITGET_BASE_URL" default:"https://api.bitget.com"`
	BitgetProductType string        `envconfig:"BITGET_PRODUCT_TYPE" default:"USDT-FUTURES"`
	BitgetMarginCoin  string        `envconfig:"BITGET_MARGIN_COIN" default:"USDT"`
	BitgetLocale      string        `envconfig:"BITGET_LOCALE" default:"en-US"`
	BitgetHTTPTimeout time.Duration `envconfig:"BITGET_HTTP_TIMEOUT" default:"15s"`
	BitgetRetryCount  int           `envconfig:"BITGET_RETRY_COUNT" default:"2"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}

// HasCredentials reports whether all three Bitget secrets are set.
func (c Config) HasCredentials() bool {
	return c.BitgetAPIKey != "" && c.BitgetAPISecret != "" && c.BitgetPassphrase != ""
}
