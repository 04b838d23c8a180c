// Package yahoo retrieves daily closing prices from the Yahoo Finance chart API.
package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/etnz/folio/fetch"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DefaultURL is the base URL of the chart API.
const DefaultURL = "https://query1.finance.yahoo.com"

// ErrNoData is returned when Yahoo has no quote for a ticker over the requested period.
var ErrNoData = errors.New("no data")

// Client implements folio.PriceProvider.
type Client struct {
	fetch *fetch.Client
	base  string
	log   zerolog.Logger
	today func() date.Date
}

// Option configures a Client.
type Option func(*Client)

// WithURL sets the base URL of the chart API.
func WithURL(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.base = strings.TrimSuffix(base, "/")
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log.With().Str("component", "yahoo").Logger() }
}

// New returns a Client performing its requests through f.
func New(f *fetch.Client, opts ...Option) *Client {
	c := &Client{
		fetch: f,
		base:  DefaultURL,
		log:   zerolog.Nop(),
		today: date.Today,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchDailyClose implements folio.PriceProvider.
func (c *Client) FetchDailyClose(ctx context.Context, ticker string, from date.Date) (folio.Series, error) {
	today := c.today()
	if from.IsZero() || from.After(today) {
		from = today
	}
	addr := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d&events=history",
		c.base,
		url.PathEscape(ticker),
		from.Time().Unix(),
		today.Add(1).Time().Unix(),
	)

	var jobj any
	if err := c.fetch.GetJSON(ctx, addr, &jobj); err != nil {
		var status *fetch.StatusError
		if errors.As(err, &status) && status.Code == http.StatusNotFound {
			return folio.Series{}, fmt.Errorf("%s: %w", ticker, ErrNoData)
		}
		return folio.Series{}, fmt.Errorf("error retrieving %q: %w", ticker, err)
	}

	chart, err := parseChart(jobj)
	if err != nil {
		return folio.Series{}, fmt.Errorf("error parsing %q: %w", ticker, err)
	}
	if chart.closes.Len() == 0 {
		return folio.Series{}, fmt.Errorf("%s: %w", ticker, ErrNoData)
	}
	c.log.Debug().Str("ticker", ticker).Int("quotes", chart.closes.Len()).Str("currency", chart.currency).Msg("prices")
	return folio.FillSeries(chart.currency, chart.closes, date.Between(from, today))
}

// chart is the part of the chart API response we use.
type chart struct {
	currency string
	closes   *date.History[decimal.Decimal]
}

// get returns the value at path. Paths without wildcard return a single value.
func get(path string, jobj any) (any, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", path, err)
	}
	return jval, nil
}

func parseChart(jobj any) (*chart, error) {
	if jerr, err := jsonpath.Get("$.chart.error", jobj); err == nil && jerr != nil {
		desc, _ := jsonpath.Get("$.chart.error.description", jobj)
		return nil, fmt.Errorf("%w: %v", ErrNoData, desc)
	}

	res := &chart{closes: new(date.History[decimal.Decimal])}
	if cur, err := get("$.chart.result[0].meta.currency", jobj); err == nil {
		res.currency, _ = cur.(string)
	}
	var offset float64
	if off, err := get("$.chart.result[0].meta.gmtoffset", jobj); err == nil {
		offset, _ = off.(float64)
	}

	jts, err := get("$.chart.result[0].timestamp", jobj)
	if err != nil {
		// a period without any quote has no timestamp
		return res, nil
	}
	timestamps, ok := jts.([]any)
	if !ok {
		return nil, fmt.Errorf("timestamps are not a list: %T", jts)
	}
	jcl, err := get("$.chart.result[0].indicators.quote[0].close", jobj)
	if err != nil {
		return nil, err
	}
	closes, ok := jcl.([]any)
	if !ok || len(closes) != len(timestamps) {
		return nil, fmt.Errorf("got %d timestamps and %v closes", len(timestamps), jcl)
	}

	for i, jt := range timestamps {
		ts, ok := jt.(float64)
		if !ok {
			return nil, fmt.Errorf("invalid timestamp %v", jt)
		}
		price, ok := closes[i].(float64)
		if !ok {
			// null closes are days without trading
			continue
		}
		on := date.Of(time.Unix(int64(ts+offset), 0).UTC())
		res.closes.Append(on, decimal.NewFromFloat(price))
	}
	return res, nil
}
