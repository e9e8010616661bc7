package security

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// WebhookSecret is the shared secret TradingView sends with each alert. Empty disables the check.
	WebhookSecret string `envconfig:"WEBHOOK_SECRET"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
