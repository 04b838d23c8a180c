package folio

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
)

// Asset is one ticker of the portfolio, with its prices and its value in the
// display currency.
type Asset struct {
	info    AssetInfo
	results ResultStats
	records []TransactionRecord
	prices  Series // native currency
	holding Series // native currency
	conv    Converter

	val *valuation
}

// valuation holds the figures of an asset converted into one display currency.
type valuation struct {
	currency  string
	current   Money
	invested  Money
	evolution Series
}

// NewAsset builds an asset from its ticker data and price series, valued in currency.
//
// Records not sold are held up to the last day of prices.
func NewAsset(ctx context.Context, data TickerData, prices Series, conv Converter, currency string) (*Asset, error) {
	return newAsset(ctx, data, prices, conv, currency, prices.End())
}

func newAsset(ctx context.Context, data TickerData, prices Series, conv Converter, currency string, today date.Date) (*Asset, error) {
	if prices.IsEmpty() {
		return nil, fmt.Errorf("%s: %w", data.Info.Ticker, ErrNoPrices)
	}
	native := strings.ToUpper(data.Info.Currency)
	if native == "" {
		native = prices.Currency()
	}
	prices = prices.WithCurrency(native)

	holding, err := ProjectHoldings(data.Records, prices, data.Info.multiplier(), today)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", data.Info.Ticker, err)
	}
	data.Info.Currency = native
	a := &Asset{
		info:    data.Info,
		results: data.Results,
		records: data.Records,
		prices:  prices,
		holding: holding,
		conv:    conv,
	}
	if a.val, err = a.valuate(ctx, strings.ToUpper(currency)); err != nil {
		return nil, err
	}
	return a, nil
}

// valuate computes the asset figures in currency.
func (a *Asset) valuate(ctx context.Context, currency string) (*valuation, error) {
	current := a.HoldingValue()
	invested := a.results.Invested.In(a.info.Currency)
	evolution := a.holding
	if currency != a.info.Currency {
		var err error
		if current, err = a.convert(ctx, current, currency, date.Date{}); err != nil {
			return nil, err
		}
		if invested, err = a.convert(ctx, invested, currency, date.Date{}); err != nil {
			return nil, err
		}
		evolution, err = a.holding.Map(currency, func(on date.Date, v decimal.Decimal) (decimal.Decimal, error) {
			return a.conv.Convert(ctx, v, a.info.Currency, currency, on)
		})
		if err != nil {
			return nil, a.providerError(err)
		}
	}
	return &valuation{
		currency:  currency,
		current:   current,
		invested:  invested,
		evolution: evolution,
	}, nil
}

func (a *Asset) convert(ctx context.Context, m Money, currency string, on date.Date) (Money, error) {
	v, err := a.conv.Convert(ctx, m.Amount(), m.Currency(), currency, on)
	if err != nil {
		return Money{}, a.providerError(err)
	}
	return M(v, currency), nil
}

func (a *Asset) providerError(err error) error {
	if errors.Is(err, ErrProvider) {
		return err
	}
	return fmt.Errorf("%w: converting %s: %w", ErrProvider, a.info.Ticker, err)
}

// ChangeDisplayCurrency revalues the asset in currency. On error the asset
// keeps its previous valuation.
func (a *Asset) ChangeDisplayCurrency(ctx context.Context, currency string) error {
	currency = strings.ToUpper(currency)
	if a.val.currency == currency {
		return nil
	}
	val, err := a.valuate(ctx, currency)
	if err != nil {
		return err
	}
	a.val = val
	return nil
}

func (a *Asset) Ticker() string          { return a.info.Ticker }
func (a *Asset) Info() AssetInfo         { return a.info }
func (a *Asset) Results() ResultStats    { return a.results }
func (a *Asset) Prices() Series          { return a.prices }
func (a *Asset) DisplayCurrency() string { return a.val.currency }

// CurrentValue is the value of the owned units at the last price, in display currency.
func (a *Asset) CurrentValue() Money { return a.val.current }

// Invested is the invested amount in display currency.
func (a *Asset) Invested() Money { return a.val.invested }

// Evolution is the daily value of the holdings in display currency.
func (a *Asset) Evolution() Series { return a.val.evolution }

// UnitValue is the last price, in native currency.
func (a *Asset) UnitValue() Money { return a.prices.LastMoney() }

// HoldingValue is the value of the owned units at the last price, in native currency.
func (a *Asset) HoldingValue() Money {
	units := a.results.Owned.Div(Q(a.info.multiplier()))
	return a.UnitValue().Mul(units)
}
