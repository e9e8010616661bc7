package relay

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppName      string `envconfig:"APP_NAME" default:"signalrelay"`
	EventBuffer  int    `envconfig:"EVENT_BUFFER" default:"256"`   // queued trade events awaiting the database
	RecentEvents int    `envconfig:"RECENT_EVENTS" default:"200"`  // events kept in memory for the status API
}

func GetConfig() *Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return &config
}
