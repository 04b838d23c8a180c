package ecb

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
)

var (
	// ErrUnknownCurrency is returned for a currency without reference rate.
	ErrUnknownCurrency = errors.New("unknown currency")
	// ErrNoRate is returned for a date before the first known rate.
	ErrNoRate = errors.New("no rate")
)

// Table holds the history of reference rates, in units of currency per EUR.
type Table struct {
	rates map[string]*date.History[decimal.Decimal]
}

// NewTable returns an empty table. EUR is always known.
func NewTable() *Table {
	return &Table{rates: make(map[string]*date.History[decimal.Decimal])}
}

// Add records the rate of currency on a given day, as units per EUR.
func (t *Table) Add(on date.Date, currency string, perEUR decimal.Decimal) *Table {
	currency = strings.ToUpper(currency)
	h, ok := t.rates[currency]
	if !ok {
		h = new(date.History[decimal.Decimal])
		t.rates[currency] = h
	}
	h.Append(on, perEUR)
	return t
}

// Currencies returns the known currencies, EUR included, sorted.
func (t *Table) Currencies() []string {
	curs := []string{"EUR"}
	for c := range t.rates {
		curs = append(curs, c)
	}
	slices.Sort(curs)
	return curs
}

// Latest returns the day of the most recent rate.
func (t *Table) Latest() date.Date {
	var latest date.Date
	for _, h := range t.rates {
		if on, _ := h.Latest(); on.After(latest) {
			latest = on
		}
	}
	return latest
}

// perEUR returns the units of currency for one EUR on day 'on', or the
// latest known if 'on' is zero.
func (t *Table) perEUR(currency string, on date.Date) (decimal.Decimal, error) {
	if currency == "EUR" {
		return decimal.NewFromInt(1), nil
	}
	h, ok := t.rates[currency]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownCurrency, currency)
	}
	if on.IsZero() {
		_, v := h.Latest()
		return v, nil
	}
	v, ok := h.ValueAsOf(on)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s on %v", ErrNoRate, currency, on)
	}
	return v, nil
}

// Convert converts amount using the cross rate through EUR of day 'on', or
// of the latest day before it. A zero 'on' uses the latest rates.
func (t *Table) Convert(_ context.Context, amount decimal.Decimal, from, to string, on date.Date) (decimal.Decimal, error) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	if from == to {
		return amount, nil
	}
	rf, err := t.perEUR(from, on)
	if err != nil {
		return decimal.Zero, err
	}
	rt, err := t.perEUR(to, on)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Div(rf).Mul(rt), nil
}

// ParseCSV reads the ECB history CSV format: a "Date" column followed by one
// column per currency. "N/A" and empty cells are skipped.
func ParseCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("not enough records in csv to parse rates")
	}
	header := records[0]
	if len(header) == 0 || strings.TrimSpace(header[0]) != "Date" {
		return nil, fmt.Errorf("unexpected csv header %q", header)
	}

	// History appends are cheap in chronological order only, and the ECB
	// publishes the newest day first.
	rows := records[1:]
	n := len(rows)
	line := func(i int) int { return i + 2 }
	if descending(rows) {
		slices.Reverse(rows)
		line = func(i int) int { return n - i + 1 }
	}

	t := NewTable()
	for i, row := range rows {
		on, err := date.Parse(strings.TrimSpace(row[0]))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line(i), err)
		}
		for j := 1; j < len(row) && j < len(header); j++ {
			currency, cell := strings.TrimSpace(header[j]), strings.TrimSpace(row[j])
			if currency == "" || cell == "" || cell == "N/A" {
				continue
			}
			v, err := decimal.NewFromString(cell)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid %s rate %q: %w", line(i), currency, cell, err)
			}
			t.Add(on, currency, v)
		}
	}
	return t, nil
}

// descending reports whether the first row is dated after the last one.
func descending(rows [][]string) bool {
	first, err := date.Parse(strings.TrimSpace(rows[0][0]))
	if err != nil {
		return false
	}
	last, err := date.Parse(strings.TrimSpace(rows[len(rows)-1][0]))
	if err != nil {
		return false
	}
	return first.After(last)
}

// ParseZip reads the rates from the first csv file of a zip archive.
func ParseZip(body []byte) (*Table, error) {
	zipReader, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to open zip archive: %w", err)
	}
	var foundFiles []string
	for _, f := range zipReader.File {
		foundFiles = append(foundFiles, f.Name)
		if !strings.HasSuffix(strings.ToLower(f.Name), ".csv") {
			continue
		}
		csvFile, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %q from zip archive: %w", f.Name, err)
		}
		defer csvFile.Close()
		return ParseCSV(csvFile)
	}
	return nil, fmt.Errorf("could not find a csv file in zip archive (found: %s)", strings.Join(foundFiles, ", "))
}
