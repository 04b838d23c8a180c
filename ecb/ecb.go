// Package ecb converts amounts between currencies using the euro foreign
// exchange reference rates published by the European Central Bank.
package ecb

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/etnz/folio/date"
	"github.com/etnz/folio/fetch"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// DefaultURL is the full history of reference rates.
const DefaultURL = "https://www.ecb.europa.eu/stats/eurofxref/eurofxref-hist.zip"

// Client converts amounts with the ECB reference rates.
//
// The rate history is downloaded at most once per calendar day. A Client is
// safe for concurrent use.
type Client struct {
	fetch *fetch.Client
	url   string
	log   zerolog.Logger
	today func() date.Date

	group singleflight.Group
	mu    sync.RWMutex
	table *Table
	day   date.Date // day the table was downloaded
	tried date.Date // day of the last failed refresh
	rates *cache.Cache
}

// Option configures a Client.
type Option func(*Client)

// WithURL sets the location of the zipped history.
func WithURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.url = url
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log.With().Str("component", "ecb").Logger() }
}

// New returns a Client downloading through f.
func New(f *fetch.Client, opts ...Option) *Client {
	c := &Client{
		fetch: f,
		url:   DefaultURL,
		log:   zerolog.Nop(),
		today: date.Today,
		rates: cache.New(24*time.Hour, 48*time.Hour),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert implements folio.Converter.
func (c *Client) Convert(ctx context.Context, amount decimal.Decimal, from, to string, on date.Date) (decimal.Decimal, error) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	if from == to {
		return amount, nil
	}
	t, err := c.current(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	key := fmt.Sprintf("%s/%s@%s", from, to, on)
	if on.IsZero() {
		key = fmt.Sprintf("%s/%s@latest", from, to)
	}
	if r, found := c.rates.Get(key); found {
		p := r.(pair)
		return amount.Div(p.from).Mul(p.to), nil
	}
	var p pair
	if p.from, err = t.perEUR(from, on); err != nil {
		return decimal.Zero, err
	}
	if p.to, err = t.perEUR(to, on); err != nil {
		return decimal.Zero, err
	}
	c.rates.Set(key, p, cache.DefaultExpiration)
	return amount.Div(p.from).Mul(p.to), nil
}

// pair is the rates per EUR of two currencies on a given day.
type pair struct{ from, to decimal.Decimal }

// Currencies returns the currencies with a reference rate.
func (c *Client) Currencies(ctx context.Context) ([]string, error) {
	t, err := c.current(ctx)
	if err != nil {
		return nil, err
	}
	return t.Currencies(), nil
}

// fresh returns the table when no download is due today: it was either
// downloaded today or today's refresh already failed.
func (c *Client) fresh(today date.Date) (*Table, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.table == nil {
		return nil, false
	}
	return c.table, c.day == today || c.tried == today
}

// current returns today's table, downloading it if needed.
func (c *Client) current(ctx context.Context) (*Table, error) {
	today := c.today()
	if t, ok := c.fresh(today); ok {
		return t, nil
	}
	c.mu.RLock()
	t := c.table
	c.mu.RUnlock()

	v, err, _ := c.group.Do(today.String(), func() (any, error) {
		if t, ok := c.fresh(today); ok {
			return t, nil
		}
		var table *Table
		body, err := c.fetch.Get(ctx, c.url)
		if err == nil {
			table, err = ParseZip(body)
		}
		if err != nil {
			c.mu.Lock()
			if c.table != nil {
				c.tried = today
			}
			c.mu.Unlock()
			return nil, fmt.Errorf("cannot get ECB reference rates: %w", err)
		}
		c.mu.Lock()
		c.table, c.day = table, today
		c.rates.Flush()
		c.mu.Unlock()
		c.log.Info().Str("latest", table.Latest().String()).Int("currencies", len(table.Currencies())).Msg("reference rates refreshed")
		return table, nil
	})
	if err != nil {
		if t != nil {
			c.log.Warn().Err(err).Msg("using previous reference rates")
			return t, nil
		}
		return nil, err
	}
	return v.(*Table), nil
}
