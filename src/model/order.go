package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	MarginModeIsolated = "isolated"
	MarginModeCrossed  = "crossed"
)

// NormalizeMarginMode maps operator spellings to Bitget's values: "cross" and "crossed"
// become crossed, "isolated" stays isolated.
func NormalizeMarginMode(mode string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "isolated":
		return MarginModeIsolated, nil
	case "cross", "crossed":
		return MarginModeCrossed, nil
	default:
		return "", fmt.Errorf("invalid margin mode %q, expected isolated or crossed", mode)
	}
}

// OrderRequest is a market order the engine asks the exchange to place.
// Size is denominated in USD (position size multiplied by leverage).
type OrderRequest struct {
	Ticker     string          `json:"ticker"`
	Side       string          `json:"side"`
	Size       decimal.Decimal `json:"size"`
	MarginMode string          `json:"margin_mode"`
}

// ExchangeResult is the normalized outcome of an exchange call that got an answer.
// Success is false when the exchange answered with a non-success code.
type ExchangeResult struct {
	Success bool   `json:"success"`
	OrderID string `json:"order_id,omitempty"`
	Code    string `json:"code"`
	Msg     string `json:"msg,omitempty"`
	Raw     string `json:"raw,omitempty"`
}
