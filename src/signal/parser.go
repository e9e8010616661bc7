package signal

import (
	"bytes"
	"regexp"
	"strings"

	logger "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

const pricePrefix = "Price = "

// tickerPattern matches "- BELUSDT.P" style symbol tokens, capturing the bare symbol.
var tickerPattern = regexp.MustCompile(`-\s+([A-Za-z0-9]+)(?:\.[Pp])?`)

var exitMarkers = []string{"tp", "sl", "exit"}

type structuredCode struct {
	direction Direction
	exit      bool
}

// structuredCodes are the literal codes accepted in {"signal": "..."} alerts.
var structuredCodes = map[string]structuredCode{
	"ENTER-LONG":  {direction: DirectionBuy},
	"ENTER-SHORT": {direction: DirectionSell},
	"BUY-CLOSE":   {direction: DirectionSell, exit: true},
	"SELL-CLOSE":  {direction: DirectionBuy, exit: true},
	"EXIT":        {direction: DirectionUnknown, exit: true},
}

// Parser turns alert text into Signals. It holds no state besides its settings and is
// safe for concurrent use.
type Parser struct {
	quoteSuffix   string
	defaultSymbol string
}

func NewParser(quoteSuffix, defaultSymbol string) *Parser {
	quoteSuffix = strings.ToUpper(strings.TrimSpace(quoteSuffix))
	if quoteSuffix == "" {
		quoteSuffix = "USDT"
	}

	p := &Parser{quoteSuffix: quoteSuffix}
	p.defaultSymbol = p.NormalizeTicker(defaultSymbol)
	return p
}

// NewParserFromConfig builds a parser from the QUOTE_SUFFIX / DEFAULT_SYMBOL settings.
func NewParserFromConfig(cfg Config) *Parser {
	return NewParser(cfg.QuoteSuffix, cfg.DefaultSymbol)
}

// NormalizeTicker uppercases a symbol and appends the quote suffix when missing.
// Examples with the USDT suffix:
//
//	bel     -> BELUSDT
//	BELUSDT -> BELUSDT
func (p *Parser) NormalizeTicker(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" {
		return ""
	}
	if strings.HasSuffix(s, p.quoteSuffix) {
		return s
	}
	return s + p.quoteSuffix
}

// Parse reads a free-form alert such as "Buy TP - BELUSDT.P, Price = 0.6852".
// It never fails; unrecognized parts are left empty or unknown.
func (p *Parser) Parse(raw string) Signal {
	descriptor, priceNote, _ := strings.Cut(raw, ",")
	descriptor = strings.TrimSpace(descriptor)
	priceNote = strings.TrimSpace(priceNote)

	sig := Signal{
		Direction: detectDirection(descriptor),
		IsExit:    detectExit(descriptor),
		Price:     strings.TrimSpace(strings.TrimPrefix(priceNote, pricePrefix)),
		Raw:       raw,
	}

	if m := tickerPattern.FindStringSubmatch(descriptor); m != nil {
		sig.Ticker = p.NormalizeTicker(m[1])
	}

	logger.WithFields(logger.Fields{
		"ticker":    sig.Ticker,
		"direction": sig.Direction,
		"is_exit":   sig.IsExit,
		"price":     sig.Price,
	}).Debug("parsed signal")

	return sig
}

// ParsePayload parses a webhook body. JSON objects with a "signal" field are read as
// structured alerts, anything else is treated as alert text.
func (p *Parser) ParsePayload(body []byte) Signal {
	trimmed := bytes.TrimSpace(body)
	if gjson.ValidBytes(trimmed) {
		doc := gjson.ParseBytes(trimmed)
		if doc.IsObject() {
			if code := doc.Get("signal"); code.Exists() {
				return p.parseStructured(doc, string(trimmed))
			}
		}
	}

	return p.Parse(string(body))
}

func (p *Parser) parseStructured(doc gjson.Result, raw string) Signal {
	code := strings.ToUpper(strings.TrimSpace(doc.Get("signal").String()))

	sig := Signal{
		Direction: DirectionUnknown,
		Raw:       raw,
		Ticker:    p.defaultSymbol,
	}

	for _, field := range []string{"ticker", "symbol"} {
		if v := doc.Get(field); v.Exists() && strings.TrimSpace(v.String()) != "" {
			symbol := strings.ToUpper(strings.TrimSpace(v.String()))
			sig.Ticker = p.NormalizeTicker(strings.TrimSuffix(symbol, ".P"))
			break
		}
	}

	mapped, ok := structuredCodes[code]
	if !ok {
		logger.WithField("signal", code).Warn("unknown structured signal code")
		return sig
	}

	sig.Direction = mapped.direction
	sig.IsExit = mapped.exit
	return sig
}

// PayloadSecret returns the "secret" field of a JSON object body, or "" for any other body.
func PayloadSecret(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if !gjson.ValidBytes(trimmed) {
		return ""
	}
	doc := gjson.ParseBytes(trimmed)
	if !doc.IsObject() {
		return ""
	}
	return doc.Get("secret").String()
}

// buy is checked before sell, so a descriptor naming both maps to buy.
func detectDirection(descriptor string) Direction {
	lower := strings.ToLower(descriptor)
	switch {
	case strings.Contains(lower, "buy"):
		return DirectionBuy
	case strings.Contains(lower, "sell"):
		return DirectionSell
	default:
		return DirectionUnknown
	}
}

func detectExit(descriptor string) bool {
	lower := strings.ToLower(descriptor)
	for _, marker := range exitMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
