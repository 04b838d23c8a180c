package folio

import (
	"errors"
	"fmt"

	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
)

// ProjectHoldings returns the daily value of the units held by records, over
// the days of the price series and in its currency.
//
// A record adds Amount/multiplier units from its BuyDate until the day before
// its SellDate, or until today when it has not been sold. Overlapping records
// add up. Holding periods are clipped to the price series.
func ProjectHoldings(records []TransactionRecord, prices Series, multiplier decimal.Decimal, today date.Date) (Series, error) {
	if multiplier.IsZero() {
		return Series{}, errors.New("unit multiplier cannot be zero")
	}
	quantities := make([]decimal.Decimal, prices.Len())
	if prices.IsEmpty() {
		return NewSeries(prices.Currency(), prices.Start(), quantities), nil
	}
	for _, r := range records {
		last := today
		if !r.Held() {
			if r.SellDate.Before(r.BuyDate) {
				return Series{}, fmt.Errorf("record bought on %v is sold before, on %v", r.BuyDate, r.SellDate)
			}
			last = r.SellDate.Add(-1)
		}
		first := date.Max(r.BuyDate, prices.Start())
		last = date.Min(last, prices.End())
		if last.Before(first) {
			continue
		}
		units := r.Amount.Div(multiplier)
		i, j := first.Sub(prices.Start()), last.Sub(prices.Start())
		for k := i; k <= j; k++ {
			quantities[k] = quantities[k].Add(units)
		}
	}
	return NewSeries("", prices.Start(), quantities).Mul(prices)
}
