package model

import "time"

const (
	SideBuy  = "buy"
	SideSell = "sell"
)

// Position is an open exchange position tracked in memory for a single ticker.
// It exists from a confirmed open order until a confirmed close order.
type Position struct {
	Ticker    string    `json:"ticker"`
	Side      string    `json:"side"`
	OrderID   string    `json:"order_id"`
	EntryTime time.Time `json:"entry_time"`
}

// OppositeSide returns the side that closes a position opened on side.
func OppositeSide(side string) string {
	if side == SideBuy {
		return SideSell
	}
	return SideBuy
}
