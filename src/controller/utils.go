package controller

import (
	"context"
	"encoding/json"
	"runtime/debug"
	"time"

	logger "github.com/sirupsen/logrus"

	"signalrelay/src/model"
)

type exceptionRepository interface {
	Create(ctx context.Context, exception *model.Exception) error
}

// CaptureException logs err with its stack and stores it when a repository is available.
func CaptureException(
	ctx context.Context,
	repo exceptionRepository,
	module string,
	method string,
	level string,
	err error,
	contextData map[string]interface{},
) {
	if err == nil {
		return
	}

	var ctxJSON string
	if contextData != nil {
		if b, e := json.Marshal(contextData); e == nil {
			ctxJSON = string(b)
		}
	}

	exc := &model.Exception{
		Module:    module,
		Method:    method,
		Message:   err.Error(),
		Stack:     string(debug.Stack()),
		Level:     level,
		Context:   ctxJSON,
		CreatedAt: time.Now(),
	}

	logger.WithFields(logger.Fields{
		"module": module,
		"method": method,
		"level":  level,
	}).WithError(err).Error("System exception captured")

	if repo != nil {
		if e := repo.Create(ctx, exc); e != nil {
			logger.WithError(e).Error("Failed to persist exception")
		}
	}
}
