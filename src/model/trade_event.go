package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	TradeActionOpen  = "OPEN"
	TradeActionClose = "CLOSE"
	TradeActionError = "ERROR"
)

// TradeEvent is the audit record emitted for every exchange outcome.
type TradeEvent struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Action    string    `gorm:"size:10;index;not null" json:"action"`
	Ticker    string    `gorm:"size:50;index" json:"ticker"`
	Side      string    `gorm:"size:10" json:"side"`
	OrderID   string    `gorm:"size:100" json:"order_id,omitempty"`
	ErrorKind string    `gorm:"size:50" json:"error_kind,omitempty"`
	Detail    string    `gorm:"type:text" json:"detail"`
	Timestamp time.Time `gorm:"index" json:"timestamp"`
}

// TableName keeps the table name stable regardless of GORM naming strategy.
func (TradeEvent) TableName() string {
	return "trade_events"
}

// NewTradeEvent builds an event stamped with a fresh ID. Detail is marshalled to JSON;
// a value that cannot be marshalled is stored as its error text.
func NewTradeEvent(action, ticker, side string, at time.Time, detail map[string]interface{}) TradeEvent {
	ev := TradeEvent{
		ID:        uuid.NewString(),
		Action:    action,
		Ticker:    ticker,
		Side:      side,
		Timestamp: at.UTC(),
	}

	if len(detail) > 0 {
		b, err := json.Marshal(detail)
		if err != nil {
			ev.Detail = err.Error()
		} else {
			ev.Detail = string(b)
		}
	}

	return ev
}
