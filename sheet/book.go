package sheet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/etnz/folio"
	"github.com/shopspring/decimal"
)

// Book is a folio.Source backed by the tables of a Workbook.
//
// A Book is read-only once built and safe for concurrent use.
type Book struct {
	tickers    []string
	data       map[string]folio.TickerData
	errs       map[string]error
	categories []folio.Category
}

var _ folio.Source = (*Book)(nil)

// Open reads the workbook at path, see Read, and builds its Book.
func Open(path string, multipliers map[string]decimal.Decimal) (*Book, error) {
	wb, err := Read(path)
	if err != nil {
		return nil, err
	}
	return NewBook(wb, multipliers)
}

// NewBook parses the tables of wb.
//
// multipliers gives the unit multiplier of tickers whose asset row has no
// Multiplier cell. Errors in a row only fail the ticker of that row; they
// are returned by Lookup.
func NewBook(wb *Workbook, multipliers map[string]decimal.Decimal) (*Book, error) {
	var tables [4]*Table
	var errs error
	for i, name := range []string{RecordsTable, AssetsTable, CategoriesTable, ResultsTable} {
		t, err := wb.Table(name)
		errs = errors.Join(errs, err)
		tables[i] = t
	}
	if errs != nil {
		return nil, errs
	}
	records, assets, categories, results := tables[0], tables[1], tables[2], tables[3]

	b := &Book{
		data: make(map[string]folio.TickerData),
		errs: make(map[string]error),
	}
	if err := b.readAssets(assets, multipliers); err != nil {
		return nil, err
	}
	if err := b.readRecords(records); err != nil {
		return nil, err
	}
	if err := b.readResults(results); err != nil {
		return nil, err
	}
	if err := b.readCategories(categories); err != nil {
		return nil, err
	}
	return b, nil
}

// columns returns the index of every named column, failing on the first missing.
func columns(t *Table, names ...string) ([]int, error) {
	idx := make([]int, len(names))
	for i, n := range names {
		if idx[i] = t.Column(n); idx[i] < 0 {
			return nil, fmt.Errorf("table %q: missing column %q", t.Name, n)
		}
	}
	return idx, nil
}

// fail records the first error of a ticker.
func (b *Book) fail(ticker string, err error) {
	if _, ok := b.errs[ticker]; !ok {
		b.errs[ticker] = err
	}
}

func (b *Book) readAssets(t *Table, multipliers map[string]decimal.Decimal) error {
	cols, err := columns(t, "TICKER", "Name", "Category", "Currency", "First buy")
	if err != nil {
		return err
	}
	field, mult := t.Column("Field"), t.Column("Multiplier")
	for i, row := range t.Rows {
		ticker := strings.ToUpper(row[cols[0]])
		if ticker == "" {
			continue
		}
		if _, dup := b.data[ticker]; dup {
			return fmt.Errorf("table %q line %d: duplicate ticker %q", t.Name, i+2, ticker)
		}
		b.tickers = append(b.tickers, ticker)
		info := folio.AssetInfo{
			Ticker:     ticker,
			Name:       row[cols[1]],
			Category:   row[cols[2]],
			Currency:   strings.ToUpper(row[cols[3]]),
			Multiplier: multipliers[ticker],
		}
		if field >= 0 {
			info.Field = row[field]
		}
		if info.Currency == "" {
			b.fail(ticker, fmt.Errorf("table %q line %d: missing Currency", t.Name, i+2))
		}
		if info.FirstBuy, err = parseDate(row[cols[4]]); err != nil {
			b.fail(ticker, fmt.Errorf("table %q line %d: First buy: %w", t.Name, i+2, err))
		}
		if mult >= 0 && row[mult] != "" {
			m, err := parseDecimal(row[mult])
			if err == nil && !m.IsPositive() {
				err = fmt.Errorf("multiplier must be positive, got %v", m)
			}
			if err != nil {
				b.fail(ticker, fmt.Errorf("table %q line %d: Multiplier: %w", t.Name, i+2, err))
			}
			info.Multiplier = m
		}
		b.data[ticker] = folio.TickerData{Info: info}
	}
	return nil
}

func (b *Book) readRecords(t *Table) error {
	cols, err := columns(t, "TICKER", "Amount", "Buy Date", "Sell Date")
	if err != nil {
		return err
	}
	for i, row := range t.Rows {
		ticker := strings.ToUpper(row[cols[0]])
		d, ok := b.data[ticker]
		if !ok {
			continue // records of unknown tickers are ignored
		}
		var r folio.TransactionRecord
		var errs error
		r.Amount, err = parseDecimal(row[cols[1]])
		errs = errors.Join(errs, err)
		r.BuyDate, err = parseDate(row[cols[2]])
		errs = errors.Join(errs, err)
		if err == nil && r.BuyDate.IsZero() {
			errs = errors.Join(errs, errors.New("missing Buy Date"))
		}
		r.SellDate, err = parseDate(row[cols[3]])
		errs = errors.Join(errs, err)
		if errs != nil {
			b.fail(ticker, fmt.Errorf("table %q line %d: %w", t.Name, i+2, errs))
			continue
		}
		d.Records = append(d.Records, r)
		b.data[ticker] = d
	}
	return nil
}

func (b *Book) readResults(t *Table) error {
	cols, err := columns(t, "TICKER", "INVESTED", "Average buy value", "OWNED")
	if err != nil {
		return err
	}
	seen := make(map[string]bool)
	for i, row := range t.Rows {
		ticker := strings.ToUpper(row[cols[0]])
		d, ok := b.data[ticker]
		if !ok {
			continue
		}
		seen[ticker] = true
		invested, err1 := parseDecimal(row[cols[1]])
		avg, err2 := parseDecimal(row[cols[2]])
		owned, err3 := parseDecimal(row[cols[3]])
		if err := errors.Join(err1, err2, err3); err != nil {
			b.fail(ticker, fmt.Errorf("table %q line %d: %w", t.Name, i+2, err))
			continue
		}
		d.Results = folio.ResultStats{
			Invested:   folio.M(invested, d.Info.Currency),
			AverageBuy: folio.M(avg, d.Info.Currency),
			Owned:      folio.Q(owned),
		}
		b.data[ticker] = d
	}
	for _, ticker := range b.tickers {
		if !seen[ticker] {
			b.fail(ticker, fmt.Errorf("table %q: no results row", t.Name))
		}
	}
	return nil
}

func (b *Book) readCategories(t *Table) error {
	cols, err := columns(t, "Category", "Goal")
	if err != nil {
		return err
	}
	for i, row := range t.Rows {
		name := row[cols[0]]
		if name == "" {
			continue
		}
		goal, err := parseGoal(row[cols[1]])
		if err != nil {
			return fmt.Errorf("table %q line %d: %w", t.Name, i+2, err)
		}
		b.categories = append(b.categories, folio.Category{Name: name, Goal: folio.Percent(goal)})
	}
	return nil
}

// Tickers implements folio.Source.
func (b *Book) Tickers() []string { return b.tickers }

// Categories implements folio.Source.
func (b *Book) Categories() []folio.Category { return b.categories }

// Lookup implements folio.Source.
func (b *Book) Lookup(ticker string) (folio.TickerData, error) {
	ticker = strings.ToUpper(ticker)
	if err := b.errs[ticker]; err != nil {
		return folio.TickerData{}, fmt.Errorf("%s: %w", ticker, err)
	}
	d, ok := b.data[ticker]
	if !ok {
		return folio.TickerData{}, fmt.Errorf("%s: %w", ticker, folio.ErrUnknownTicker)
	}
	return d, nil
}
