package folio

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownTicker is returned for a ticker missing from a Source or a Portfolio.
	ErrUnknownTicker = errors.New("unknown ticker")
	// ErrNoPrices is returned when a provider returns an empty price series.
	ErrNoPrices = errors.New("no prices")
	// ErrCurrencyMismatch is returned when combining values of different currencies.
	ErrCurrencyMismatch = errors.New("currency mismatch")
	// ErrProvider marks failures of the price provider or the currency converter.
	ErrProvider = errors.New("provider failure")
	// ErrDuplicateTicker is returned when adding a ticker already in the portfolio.
	ErrDuplicateTicker = errors.New("duplicate ticker")
	// ErrLoading is returned when changing the display currency during a load.
	ErrLoading = errors.New("portfolio is loading")
)

// TickerError is the failure to load one ticker.
type TickerError struct {
	Ticker string
	Err    error
}

func (e TickerError) Error() string { return e.Ticker + ": " + e.Err.Error() }
func (e TickerError) Unwrap() error { return e.Err }

// LoadError lists the tickers that failed during a Load. The others were loaded.
type LoadError struct {
	Failures []TickerError
}

func (e *LoadError) Error() string {
	msgs := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		msgs[i] = f.Error()
	}
	return fmt.Sprintf("%d asset(s) failed to load: %s", len(e.Failures), strings.Join(msgs, "; "))
}

// Unwrap exposes every failure to errors.Is and errors.As.
func (e *LoadError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}

// Tickers returns the tickers that failed, in source order.
func (e *LoadError) Tickers() []string {
	tickers := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		tickers[i] = f.Ticker
	}
	return tickers
}
