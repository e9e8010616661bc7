package main

import (
	"fmt"
	"os"
	"time"

	logger "github.com/sirupsen/logrus"

	"signalrelay/cmd/relay"
)

var APP_NAME = os.Getenv("APP_NAME")

func main() {
	relay.SetupLogger()
	defer handlePanic()

	r := &relay.Relay{}
	if err := r.Start(); err != nil {
		logger.WithError(err).Error("Signal relay stopped")
		os.Exit(1)
	}
}

func handlePanic() {
	if r := recover(); r != nil {
		logger.WithError(fmt.Errorf("%+v", r)).Error(fmt.Sprintf("Application %s panic", APP_NAME))
		//nolint
		time.Sleep(time.Second * 5)
	}
}
