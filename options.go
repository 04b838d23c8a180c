package folio

import (
	"strings"
	"time"

	"github.com/etnz/folio/date"
	"github.com/rs/zerolog"
)

// FailurePolicy tells a Portfolio what to do when a provider fails for a ticker.
//
// The call is retried Retries times, waiting Backoff, then twice Backoff and
// so on. If it still fails the ticker is reported as failed and the load
// goes on, unless Abort is set, then the whole load stops.
type FailurePolicy struct {
	Retries int
	Backoff time.Duration
	Abort   bool
}

// Option configures a Portfolio.
type Option func(*Portfolio)

// WithCurrency sets the initial display currency (EUR by default).
func WithCurrency(currency string) Option {
	return func(p *Portfolio) { p.currency = strings.ToUpper(currency) }
}

// WithLogger sets the logger, nothing is logged by default.
func WithLogger(log zerolog.Logger) Option {
	return func(p *Portfolio) { p.log = log.With().Str("component", "portfolio").Logger() }
}

// WithFailurePolicy sets how provider failures are handled.
func WithFailurePolicy(policy FailurePolicy) Option {
	return func(p *Portfolio) { p.policy = policy }
}

// WithWorkers sets how many tickers are fetched concurrently during Load.
func WithWorkers(n int) Option {
	return func(p *Portfolio) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithClock sets the function returning the current day.
func WithClock(today func() date.Date) Option {
	return func(p *Portfolio) { p.today = today }
}
