package security

import (
	"crypto/subtle"
	"net/http"

	"signalrelay/src/signal"
)

const WebhookSecretHeader = "X-Webhook-Secret"

// ProvidedSecret looks for the alert secret in the query string, then the header, then a
// structured JSON body.
func ProvidedSecret(r *http.Request, body []byte) string {
	if s := r.URL.Query().Get("secret"); s != "" {
		return s
	}
	if s := r.Header.Get(WebhookSecretHeader); s != "" {
		return s
	}
	return signal.PayloadSecret(body)
}

// ValidSecret reports whether provided matches expected. An empty expected secret
// accepts everything.
func ValidSecret(expected, provided string) bool {
	if expected == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(provided)) == 1
}
