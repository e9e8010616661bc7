package controller

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// LogRawWebhooks writes every raw alert body to the application log.
	LogRawWebhooks bool `envconfig:"LOG_RAW_WEBHOOKS" default:"true"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
