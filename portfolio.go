package folio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/etnz/folio/date"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// State is the lifecycle state of a Portfolio.
type State int

const (
	Empty State = iota
	Loading
	Loaded
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// PortfolioSeries is the name of the whole portfolio series in Portfolio.Series.
const PortfolioSeries = "PORTFOLIO"

// Portfolio is an ordered set of assets valued in one display currency.
//
// A Portfolio is not safe for concurrent use.
type Portfolio struct {
	prices  PriceProvider
	conv    Converter
	log     zerolog.Logger
	policy  FailurePolicy
	workers int
	today   func() date.Date

	currency   string
	categories []Category
	assets     []*Asset
	byTicker   map[string]*Asset
	value      Money // sum of the assets current value
	version    int   // bumped each time the asset set changes
	state      State

	evolution struct {
		currency string
		version  int
		series   Series
		valid    bool
	}
}

// New returns an empty Portfolio using prices and conv as providers.
func New(prices PriceProvider, conv Converter, opts ...Option) *Portfolio {
	p := &Portfolio{
		prices:   prices,
		conv:     conv,
		log:      zerolog.Nop(),
		workers:  1,
		today:    date.Today,
		currency: "EUR",
		byTicker: make(map[string]*Asset),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.value = M(0, p.currency)
	return p
}

func (p *Portfolio) State() State               { return p.state }
func (p *Portfolio) DisplayCurrency() string    { return p.currency }
func (p *Portfolio) Categories() []Category     { return p.categories }
func (p *Portfolio) Assets() []*Asset           { return p.assets }
func (p *Portfolio) Value() Money               { return p.value }
func (p *Portfolio) Asset(ticker string) *Asset { return p.byTicker[strings.ToUpper(ticker)] }

// Reset removes every asset and category.
func (p *Portfolio) Reset() {
	p.assets = nil
	p.categories = nil
	p.byTicker = make(map[string]*Asset)
	p.value = M(0, p.currency)
	p.version++
	p.evolution.valid = false
	p.state = Empty
}

// SetDisplayCurrency revalues every asset in currency.
//
// Either all assets are revalued or, on error, none is.
func (p *Portfolio) SetDisplayCurrency(ctx context.Context, currency string) error {
	currency = strings.ToUpper(currency)
	if currency == p.currency {
		return nil
	}
	if p.state == Loading {
		return ErrLoading
	}
	vals := make([]*valuation, len(p.assets))
	for i, a := range p.assets {
		val, err := a.valuate(ctx, currency)
		if err != nil {
			return fmt.Errorf("cannot change display currency to %s: %w", currency, err)
		}
		vals[i] = val
	}
	p.currency = currency
	p.value = M(0, currency)
	for i, a := range p.assets {
		a.val = vals[i]
		p.value = p.value.Add(a.CurrentValue())
	}
	p.evolution.valid = false
	p.log.Debug().Str("currency", currency).Int("assets", len(p.assets)).Msg("display currency changed")
	return nil
}

// AddAsset loads one ticker from src and adds it to the portfolio.
//
// On error the portfolio is left unchanged.
func (p *Portfolio) AddAsset(ctx context.Context, src Source, ticker string) (*Asset, error) {
	ticker = strings.ToUpper(ticker)
	if _, exists := p.byTicker[ticker]; exists {
		return nil, fmt.Errorf("%s: %w", ticker, ErrDuplicateTicker)
	}
	a, err := p.build(ctx, src, ticker)
	if err != nil {
		return nil, err
	}
	if err := p.commit(a); err != nil {
		return nil, err
	}
	if p.state == Empty {
		p.state = Loaded
	}
	return a, nil
}

// build creates the asset for ticker without modifying the portfolio.
func (p *Portfolio) build(ctx context.Context, src Source, ticker string) (*Asset, error) {
	data, err := src.Lookup(ticker)
	if err != nil {
		return nil, err
	}
	if data.Info.Ticker == "" {
		data.Info.Ticker = ticker
	}
	currency, today := p.currency, p.today()
	var a *Asset
	err = p.retry(ctx, ticker, func() error {
		prices, err := p.prices.FetchDailyClose(ctx, ticker, data.startDate())
		if err != nil {
			return fmt.Errorf("%w: fetching %s prices: %w", ErrProvider, ticker, err)
		}
		a, err = newAsset(ctx, data, prices, p.conv, currency, today)
		return err
	})
	return a, err
}

// retry calls f until it succeeds, applying the failure policy to provider errors.
func (p *Portfolio) retry(ctx context.Context, ticker string, f func() error) error {
	for attempt := 1; ; attempt++ {
		err := f()
		if err == nil || !errors.Is(err, ErrProvider) || attempt > p.policy.Retries {
			return err
		}
		wait := time.Duration(attempt) * p.policy.Backoff
		p.log.Warn().Err(err).Str("ticker", ticker).Int("attempt", attempt).Dur("wait", wait).Msg("retrying")
		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(wait):
		}
	}
}

// commit appends a built asset.
func (p *Portfolio) commit(a *Asset) error {
	if _, exists := p.byTicker[a.Ticker()]; exists {
		return fmt.Errorf("%s: %w", a.Ticker(), ErrDuplicateTicker)
	}
	p.assets = append(p.assets, a)
	p.byTicker[a.Ticker()] = a
	p.value = p.value.Add(a.CurrentValue())
	p.version++
	p.evolution.valid = false
	return nil
}

// Load adds every ticker of src to the portfolio and sets its categories.
//
// progress, if not nil, is called after each ticker, from a single goroutine
// at a time. Tickers that fail are skipped and reported in a *LoadError.
// With an aborting failure policy, the first provider failure stops the load
// and leaves the portfolio unchanged.
func (p *Portfolio) Load(ctx context.Context, src Source, progress func(done, total int, ticker string)) error {
	prev := p.state
	p.state = Loading

	tickers := src.Tickers()
	assets := make([]*Asset, len(tickers))
	errs := make([]error, len(tickers))

	var mu sync.Mutex
	done := 0
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, ticker := range tickers {
		g.Go(func() error {
			assets[i], errs[i] = p.build(gctx, src, ticker)
			if errs[i] != nil && p.policy.Abort && errors.Is(errs[i], ErrProvider) {
				return errs[i]
			}
			if progress != nil {
				mu.Lock()
				done++
				progress(done, len(tickers), ticker)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		p.state = prev
		return fmt.Errorf("load aborted: %w", err)
	}
	p.categories = src.Categories()

	var failures []TickerError
	for i, ticker := range tickers {
		err := errs[i]
		if err == nil {
			err = p.commit(assets[i])
		}
		if err != nil {
			p.log.Warn().Err(err).Str("ticker", ticker).Msg("asset failed to load")
			failures = append(failures, TickerError{Ticker: ticker, Err: err})
		}
	}
	p.state = Loaded
	p.log.Info().Int("assets", len(p.assets)).Int("failed", len(failures)).Msg("portfolio loaded")
	if len(failures) > 0 {
		return &LoadError{Failures: failures}
	}
	return nil
}

// TotalInvested is the sum of invested amounts in display currency.
func (p *Portfolio) TotalInvested() Money {
	total := M(0, p.currency)
	for _, a := range p.assets {
		total = total.Add(a.Invested())
	}
	return total
}

// Result is the overall gain of the portfolio relative to the invested amount.
func (p *Portfolio) Result() Percent {
	invested := p.TotalInvested()
	return percentOf(p.value.Sub(invested).Amount(), invested.Amount())
}

// Evolution is the daily value of the whole portfolio in display currency.
// It returns false when the portfolio has no asset.
func (p *Portfolio) Evolution() (Series, bool) {
	if len(p.assets) == 0 {
		return Series{}, false
	}
	e := &p.evolution
	if e.valid && e.currency == p.currency && e.version == p.version {
		return e.series, true
	}
	series := make([]Series, len(p.assets))
	for i, a := range p.assets {
		series[i] = a.Evolution()
	}
	sum, err := Sum(series...)
	if err != nil {
		p.log.Error().Err(err).Msg("cannot sum asset evolutions")
		return Series{}, false
	}
	e.series, e.currency, e.version, e.valid = sum, p.currency, p.version, true
	return sum, true
}

// TickerEvolution is the daily value of one asset in display currency.
func (p *Portfolio) TickerEvolution(ticker string) (Series, bool) {
	a := p.Asset(ticker)
	if a == nil {
		return Series{}, false
	}
	return a.Evolution(), true
}

// Series returns the evolution named name, PortfolioSeries or a ticker,
// within window.
func (p *Portfolio) Series(name string, window date.Range) (Series, bool) {
	var s Series
	var ok bool
	if strings.EqualFold(name, PortfolioSeries) {
		s, ok = p.Evolution()
	} else {
		s, ok = p.TickerEvolution(name)
	}
	if !ok {
		return Series{}, false
	}
	return s.Slice(window), true
}
