package folio

import (
	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
)

// TransactionRecord is a single buy of an amount of units, possibly sold later.
type TransactionRecord struct {
	Amount   decimal.Decimal
	BuyDate  date.Date
	SellDate date.Date // zero while still held
}

// Held reports whether the record is not sold yet.
func (r TransactionRecord) Held() bool { return r.SellDate.IsZero() }

// AssetInfo is the static description of a ticker.
type AssetInfo struct {
	Ticker   string
	Name     string
	Category string
	Currency string // native currency of the prices
	Field    string // free text sector
	FirstBuy date.Date
	// Multiplier divides record amounts and owned quantity before they are
	// multiplied by a price. Zero means 1.
	Multiplier decimal.Decimal
}

// multiplier returns the effective unit multiplier.
func (i AssetInfo) multiplier() decimal.Decimal {
	if i.Multiplier.IsZero() {
		return decimal.NewFromInt(1)
	}
	return i.Multiplier
}

// ResultStats are the aggregates of a ticker computed upstream, in native currency.
type ResultStats struct {
	Invested   Money
	AverageBuy Money
	Owned      Quantity
}

// TickerData is everything a Source knows about one ticker.
type TickerData struct {
	Records []TransactionRecord
	Info    AssetInfo
	Results ResultStats
}

// startDate returns the first day prices are needed for.
func (d TickerData) startDate() date.Date {
	start := d.Info.FirstBuy
	for _, r := range d.Records {
		if start.IsZero() || r.BuyDate.Before(start) {
			start = r.BuyDate
		}
	}
	return start
}

// Category is an allocation bucket with a target share of the portfolio.
type Category struct {
	Name string
	Goal Percent
}
