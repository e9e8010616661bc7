package relay

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestSetupLogger(t *testing.T) {
	defer logrus.SetFormatter(&logrus.TextFormatter{})
	defer logrus.SetLevel(logrus.InfoLevel)

	t.Setenv("LOG_LEVEL", "WARN")
	t.Setenv("LOG_FORMAT", "json")
	SetupLogger()
	assert.Equal(t, logrus.WarnLevel, logrus.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logrus.StandardLogger().Formatter)

	t.Setenv("LOG_LEVEL", "nonsense")
	t.Setenv("LOG_FORMAT", "text")
	SetupLogger()
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, logrus.StandardLogger().Formatter)
}

func TestGetConfigDefaults(t *testing.T) {
	cfg := GetConfig()
	assert.Equal(t, "signalrelay", cfg.AppName)
	assert.Equal(t, 256, cfg.EventBuffer)
	assert.Equal(t, 200, cfg.RecentEvents)
}
