package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"signalrelay/src/auth"
	"signalrelay/src/controller"
	"signalrelay/src/model"
	"signalrelay/src/repository"
)

const recentEventsOnStatus = 20

type positionBook interface {
	Positions() []model.Position
	Forget(ctx context.Context, ticker string) (bool, error)
}

type eventSearcher interface {
	Search(ctx context.Context, options repository.TradeEventSearchOptions) ([]model.TradeEvent, error)
}

type recentEvents interface {
	Latest(limit int) []model.TradeEvent
}

type lastWebhookSource interface {
	LastWebhook() (controller.LastWebhook, bool)
}

// TradingInfo is the static part of the status page.
type TradingInfo struct {
	StartedAt          time.Time `json:"started_at"`
	ExchangeConfigured bool      `json:"exchange_configured"`
	PositionSizeUSD    string    `json:"position_size_usd"`
	Leverage           int       `json:"leverage"`
	MarginMode         string    `json:"margin_mode"`
	WebhookURL         string    `json:"webhook_url,omitempty"`
}

type statusResponse struct {
	TradingInfo
	UptimeSeconds int64                   `json:"uptime_seconds"`
	LastWebhook   *controller.LastWebhook `json:"last_webhook"`
	Positions     []model.Position        `json:"positions"`
	RecentEvents  []model.TradeEvent      `json:"recent_events"`
}

// StatusHandler serves the dashboard summary: config, last webhook, positions and recent events.
func StatusHandler(info TradingInfo, book positionBook, last lastWebhookSource, recent recentEvents) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := statusResponse{
			TradingInfo:   info,
			UptimeSeconds: int64(time.Since(info.StartedAt).Seconds()),
			Positions:     book.Positions(),
			RecentEvents:  recent.Latest(recentEventsOnStatus),
		}
		if lw, ok := last.LastWebhook(); ok {
			resp.LastWebhook = &lw
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// PositionsHandler lists open positions ordered by ticker.
func PositionsHandler(book positionBook) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, book.Positions())
	}
}

// ForgetPositionHandler drops a ledger entry for a position that was closed by hand.
func ForgetPositionHandler(book positionBook) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ticker := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "ticker")))
		if ticker == "" {
			http.Error(w, "ticker is required", http.StatusBadRequest)
			return
		}

		removed, err := book.Forget(r.Context(), ticker)
		if err != nil {
			logger.WithError(err).WithField("ticker", ticker).Error("failed to forget position")
			http.Error(w, "Ticker busy, try again", http.StatusConflict)
			return
		}
		if !removed {
			http.Error(w, "No open position", http.StatusNotFound)
			return
		}

		user, _ := auth.GetUserFromContext(r.Context())
		logger.WithFields(logger.Fields{"ticker": ticker, "user": user}).Info("position forgotten via API")

		writeJSON(w, http.StatusOK, map[string]string{"status": "removed", "ticker": ticker})
	}
}

// LastWebhookHandler returns the most recent alert or 204 when none arrived yet.
func LastWebhookHandler(last lastWebhookSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lw, ok := last.LastWebhook()
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, lw)
	}
}

// EventsHandler lists trade events, newest first. It reads from the repository when one is
// configured and from the in-memory buffer otherwise.
// Supports ticker, action, from, to (RFC3339), page and pageSize.
func EventsHandler(repo eventSearcher, recent recentEvents) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var opts repository.TradeEventSearchOptions

		if ticker := strings.ToUpper(q.Get("ticker")); ticker != "" {
			opts.Ticker = &ticker
		}
		if action := strings.ToUpper(q.Get("action")); action != "" {
			opts.Action = &action
		}

		for _, p := range []struct {
			name string
			dst  **time.Time
		}{{"from", &opts.From}, {"to", &opts.To}} {
			if v := q.Get(p.name); v != "" {
				parsed, err := time.Parse(time.RFC3339, v)
				if err != nil {
					http.Error(w, "invalid "+p.name, http.StatusBadRequest)
					return
				}
				*p.dst = &parsed
			}
		}

		page, ok := positiveParam(q.Get("page"), 1)
		if !ok {
			http.Error(w, "invalid page", http.StatusBadRequest)
			return
		}
		pageSize, ok := positiveParam(q.Get("pageSize"), 50)
		if !ok {
			http.Error(w, "invalid pageSize", http.StatusBadRequest)
			return
		}
		opts.Limit = pageSize
		opts.Offset = (page - 1) * pageSize

		if repo == nil {
			writeJSON(w, http.StatusOK, filterEvents(recent.Latest(0), opts))
			return
		}

		events, err := repo.Search(r.Context(), opts)
		if err != nil {
			logger.WithError(err).Error("failed to search trade events")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, events)
	}
}

func positiveParam(v string, def int) (int, bool) {
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func filterEvents(events []model.TradeEvent, opts repository.TradeEventSearchOptions) []model.TradeEvent {
	out := make([]model.TradeEvent, 0, len(events))
	for _, ev := range events {
		if opts.Ticker != nil && ev.Ticker != *opts.Ticker {
			continue
		}
		if opts.Action != nil && ev.Action != *opts.Action {
			continue
		}
		if opts.From != nil && ev.Timestamp.Before(*opts.From) {
			continue
		}
		if opts.To != nil && ev.Timestamp.After(*opts.To) {
			continue
		}
		out = append(out, ev)
	}

	if opts.Offset >= len(out) {
		return []model.TradeEvent{}
	}
	out = out[opts.Offset:]
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out
}
