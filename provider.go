package folio

import (
	"context"

	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
)

// Source gives access to the transaction records, asset metadata and
// category taxonomy of a portfolio.
//
// Implementations must be safe for concurrent reads.
type Source interface {
	// Tickers returns every ticker of the source, in source order.
	Tickers() []string
	// Lookup returns everything known about a ticker. It returns an error
	// wrapping ErrUnknownTicker for a ticker absent from the source, or the
	// parsing error of one of its rows.
	Lookup(ticker string) (TickerData, error)
	// Categories returns the category taxonomy, in source order.
	Categories() []Category
}

// PriceProvider retrieves daily closing prices.
type PriceProvider interface {
	// FetchDailyClose returns one closing price per day from 'from' to today,
	// in the currency of the instrument. Missing days are forward-filled and
	// days before the first quote are back-filled.
	FetchDailyClose(ctx context.Context, ticker string, from date.Date) (Series, error)
}

// Converter converts amounts between currencies.
type Converter interface {
	// Convert converts amount from one currency to another using the rate of
	// day 'on', or the most recent rate before it. A zero 'on' uses the most
	// recent rate available.
	Convert(ctx context.Context, amount decimal.Decimal, from, to string, on date.Date) (decimal.Decimal, error)
}

// Currencies lists the display currencies offered by default.
var Currencies = []string{"EUR", "USD", "GBP", "CZK", "CHF", "JPY"}
