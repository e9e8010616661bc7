package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"

	logger "github.com/sirupsen/logrus"

	"signalrelay/src/model"
	"signalrelay/src/security"
)

const maxWebhookBody = 64 << 10

type alertAcceptor interface {
	AcceptAlert(ctx context.Context, body []byte) []model.TradeEvent
}

// WebhookHandler receives TradingView alerts. Once the secret checks out the alert is
// processed and acknowledged with {"success": true}, whatever the exchange answered.
func WebhookHandler(secret string, acceptor alertAcceptor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				logger.WithField("limit", tooLarge.Limit).Warn("webhook body too large")
				writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "Body too large"})
				return
			}
			logger.WithError(err).Warn("failed to read webhook body")
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid body"})
			return
		}

		if !security.ValidSecret(secret, security.ProvidedSecret(r, body)) {
			logger.WithField("remote", r.RemoteAddr).Warn("invalid webhook secret")
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid webhook secret"})
			return
		}

		body = alertText(r.Header.Get("Content-Type"), body)

		// the trade must finish even if TradingView hangs up early
		acceptor.AcceptAlert(context.WithoutCancel(r.Context()), body)

		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

// alertText unwraps form posts to their message field; other bodies pass through untouched.
func alertText(contentType string, body []byte) []byte {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != "application/x-www-form-urlencoded" {
		return body
	}

	values, err := url.ParseQuery(string(body))
	if err != nil {
		return body
	}
	for _, key := range []string{"message", "alert", "text"} {
		if v := values.Get(key); v != "" {
			return []byte(v)
		}
	}
	return body
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.WithError(err).Error("failed to encode response")
	}
}
