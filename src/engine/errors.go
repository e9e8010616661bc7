package engine

import "errors"

var (
	// ErrExchangeRejected means the exchange answered with a non-success code.
	ErrExchangeRejected = errors.New("exchange rejected request")
	// ErrExchangeUnavailable covers network failures and timeouts.
	ErrExchangeUnavailable = errors.New("exchange unavailable")
	// ErrConcurrencyTimeout means the per-ticker lock was not acquired in time.
	ErrConcurrencyTimeout = errors.New("ticker lock not acquired")
)

const (
	ErrorKindExchangeRejected    = "exchange_rejected"
	ErrorKindExchangeUnavailable = "exchange_unavailable"
	ErrorKindConcurrencyTimeout  = "concurrency_timeout"
)

func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrExchangeRejected):
		return ErrorKindExchangeRejected
	case errors.Is(err, ErrConcurrencyTimeout):
		return ErrorKindConcurrencyTimeout
	default:
		return ErrorKindExchangeUnavailable
	}
}
