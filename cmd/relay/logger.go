package relay

import (
	"strings"

	logger "github.com/sirupsen/logrus"

	"signalrelay/src/database"
)

// SetupLogger applies LOG_LEVEL and LOG_FORMAT to the standard logrus logger.
func SetupLogger() {
	cfg := database.GetConfig()

	level, err := logger.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		level = logger.DebugLevel
	}
	logger.SetLevel(level)

	if strings.EqualFold(cfg.LogFormat, "json") {
		logger.SetFormatter(&logger.JSONFormatter{})
		return
	}
	logger.SetFormatter(&logger.TextFormatter{
		FullTimestamp: true,
	})
}
