package folio

import (
	"context"
	"fmt"
	"sync"

	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
)

// EUR is a helper for test to create euro money from const
func EUR(v float64) Money { return M(v, "EUR") }

// USD is a helper for test to create usd money from const
func USD(v float64) Money { return M(v, "USD") }

// D is a helper for test to create a decimal from const
func D(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// day returns the nth day of January 2025.
func day(n int) date.Date { return date.New(2025, 1, n) }

// series builds a series starting on day(1).
func series(cur string, values ...float64) Series {
	ds := make([]decimal.Decimal, len(values))
	for i, v := range values {
		ds[i] = D(v)
	}
	return NewSeries(cur, day(1), ds)
}

// floats returns the values of s as floats for easy comparison.
func floats(s Series) []float64 {
	var res []float64
	for _, v := range s.Values() {
		res = append(res, v.InexactFloat64())
	}
	return res
}

// fakeConverter converts using a fixed number of units per EUR, optionally
// different per day, and counts its calls.
type fakeConverter struct {
	mu     sync.Mutex
	rates  map[string]float64               // units per EUR
	pairs  map[string]float64               // direct rates like "USD/EUR", take precedence
	byDay  map[date.Date]map[string]float64 // overrides rates on a given day
	calls  int
	failOn string // currency that fails
}

func newFakeConverter() *fakeConverter {
	return &fakeConverter{rates: map[string]float64{"EUR": 1, "USD": 1.25, "GBP": 0.8}}
}

func (c *fakeConverter) rate(cur string, on date.Date) (float64, error) {
	if r, ok := c.byDay[on][cur]; ok {
		return r, nil
	}
	r, ok := c.rates[cur]
	if !ok {
		return 0, fmt.Errorf("no rate for %q", cur)
	}
	return r, nil
}

func (c *fakeConverter) Convert(ctx context.Context, amount decimal.Decimal, from, to string, on date.Date) (decimal.Decimal, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if from == c.failOn || to == c.failOn {
		return decimal.Zero, fmt.Errorf("converter down for %s", c.failOn)
	}
	if r, ok := c.pairs[from+"/"+to]; ok {
		return amount.Mul(D(r)), nil
	}
	rf, err := c.rate(from, on)
	if err != nil {
		return decimal.Zero, err
	}
	rt, err := c.rate(to, on)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Div(D(rf)).Mul(D(rt)), nil
}

func (c *fakeConverter) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// fakePrices serves fixed series per ticker and counts its calls.
type fakePrices struct {
	mu       sync.Mutex
	series   map[string]Series
	failures map[string]int // number of calls failing before success, -1 for always
	calls    map[string]int
}

func newFakePrices() *fakePrices {
	return &fakePrices{
		series:   make(map[string]Series),
		failures: make(map[string]int),
		calls:    make(map[string]int),
	}
}

func (f *fakePrices) FetchDailyClose(ctx context.Context, ticker string, from date.Date) (Series, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[ticker]++
	if n := f.failures[ticker]; n < 0 || f.calls[ticker] <= n {
		return Series{}, fmt.Errorf("quote service unavailable for %s", ticker)
	}
	s, ok := f.series[ticker]
	if !ok {
		return Series{}, fmt.Errorf("no quote for %s", ticker)
	}
	return s, nil
}

// fakeSource is an in memory Source.
type fakeSource struct {
	tickers    []string
	data       map[string]TickerData
	errs       map[string]error
	categories []Category
}

func newFakeSource(categories ...Category) *fakeSource {
	return &fakeSource{data: make(map[string]TickerData), errs: make(map[string]error), categories: categories}
}

// add registers a ticker that has always held owned units since day(1).
func (s *fakeSource) add(ticker, category, cur string, owned, invested float64) *fakeSource {
	return s.addData(TickerData{
		Records: []TransactionRecord{{Amount: D(owned), BuyDate: day(1)}},
		Info:    AssetInfo{Ticker: ticker, Name: ticker + " Inc.", Category: category, Currency: cur, FirstBuy: day(1)},
		Results: ResultStats{Invested: M(invested, cur), AverageBuy: M(invested/owned, cur), Owned: Q(owned)},
	})
}

func (s *fakeSource) addData(d TickerData) *fakeSource {
	s.tickers = append(s.tickers, d.Info.Ticker)
	s.data[d.Info.Ticker] = d
	return s
}

func (s *fakeSource) Tickers() []string      { return s.tickers }
func (s *fakeSource) Categories() []Category { return s.categories }
func (s *fakeSource) Lookup(ticker string) (TickerData, error) {
	if err := s.errs[ticker]; err != nil {
		return TickerData{}, err
	}
	d, ok := s.data[ticker]
	if !ok {
		return TickerData{}, fmt.Errorf("%s: %w", ticker, ErrUnknownTicker)
	}
	return d, nil
}
