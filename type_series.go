package folio

import (
	"fmt"
	"iter"

	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
)

// Series is a contiguous daily series of values starting at a given date.
//
// The currency is empty for dimensionless series (quantities). A Series is
// never modified after construction: every operation returns a new one.
type Series struct {
	cur    string
	start  date.Date
	values []decimal.Decimal
}

// NewSeries returns a series of values, one per day from start.
func NewSeries(currency string, start date.Date, values []decimal.Decimal) Series {
	if len(values) == 0 {
		return Series{cur: currency}
	}
	return Series{cur: currency, start: start, values: append([]decimal.Decimal(nil), values...)}
}

// ConstantSeries returns a series with the same value on every day of r.
func ConstantSeries(currency string, r date.Range, v decimal.Decimal) Series {
	n := r.To.Sub(r.From) + 1
	if r.From.IsZero() || r.To.IsZero() || n <= 0 {
		return Series{cur: currency}
	}
	values := make([]decimal.Decimal, n)
	for i := range values {
		values[i] = v
	}
	return Series{cur: currency, start: r.From, values: values}
}

// FillSeries turns a sparse history into a daily series over r.
//
// Days without a value carry the previous one forward. Days before the first
// value in the history take that first value.
func FillSeries(currency string, h *date.History[decimal.Decimal], r date.Range) (Series, error) {
	if h.Len() == 0 {
		return Series{}, ErrNoPrices
	}
	first, firstValue := h.First()
	last, _ := h.Latest()
	if r.From.IsZero() {
		r.From = first
	}
	if r.To.IsZero() {
		r.To = last
	}
	if r.To.Before(r.From) {
		return Series{}, fmt.Errorf("invalid range %v", r)
	}
	values := make([]decimal.Decimal, 0, r.To.Sub(r.From)+1)
	for on := range r.Days() {
		v, ok := h.ValueAsOf(on)
		if !ok {
			v = firstValue
		}
		values = append(values, v)
	}
	return Series{cur: currency, start: r.From, values: values}, nil
}

func (s Series) Currency() string { return s.cur }
func (s Series) Len() int         { return len(s.values) }
func (s Series) IsEmpty() bool    { return len(s.values) == 0 }
func (s Series) Start() date.Date { return s.start }

// End returns the last day of the series, or the zero date if it is empty.
func (s Series) End() date.Date {
	if len(s.values) == 0 {
		return date.Date{}
	}
	return s.start.Add(len(s.values) - 1)
}

// Range returns the inclusive range of days covered.
func (s Series) Range() date.Range { return date.Between(s.start, s.End()) }

// WithCurrency returns the same values tagged with another currency.
func (s Series) WithCurrency(currency string) Series {
	s.cur = currency
	return s
}

// At returns the value on a given day.
func (s Series) At(on date.Date) (decimal.Decimal, bool) {
	i := on.Sub(s.start)
	if len(s.values) == 0 || i < 0 || i >= len(s.values) {
		return decimal.Zero, false
	}
	return s.values[i], true
}

// Last returns the last day and its value.
func (s Series) Last() (date.Date, decimal.Decimal) {
	if len(s.values) == 0 {
		return date.Date{}, decimal.Zero
	}
	return s.End(), s.values[len(s.values)-1]
}

// LastMoney returns the last value as Money.
func (s Series) LastMoney() Money {
	_, v := s.Last()
	return M(v, s.cur)
}

// Values iterates over every day of the series in chronological order.
func (s Series) Values() iter.Seq2[date.Date, decimal.Decimal] {
	return func(yield func(date.Date, decimal.Decimal) bool) {
		for i, v := range s.values {
			if !yield(s.start.Add(i), v) {
				return
			}
		}
	}
}

// Slice returns the part of the series within r. Zero bounds are open.
func (s Series) Slice(r date.Range) Series {
	if len(s.values) == 0 {
		return s
	}
	from, to := s.start, s.End()
	if !r.From.IsZero() {
		from = date.Max(from, r.From)
	}
	if !r.To.IsZero() {
		to = date.Min(to, r.To)
	}
	if to.Before(from) {
		return Series{cur: s.cur}
	}
	i, j := from.Sub(s.start), to.Sub(s.start)+1
	return Series{cur: s.cur, start: from, values: s.values[i:j:j]}
}

// Map returns a series in currency where each value has been transformed by f.
func (s Series) Map(currency string, f func(on date.Date, v decimal.Decimal) (decimal.Decimal, error)) (Series, error) {
	values := make([]decimal.Decimal, len(s.values))
	for i, v := range s.values {
		r, err := f(s.start.Add(i), v)
		if err != nil {
			return Series{}, err
		}
		values[i] = r
	}
	return Series{cur: currency, start: s.start, values: values}, nil
}

// Mul multiplies s by q day by day, q must cover the same days as s.
//
// The result has the currency of the operand that has one.
func (s Series) Mul(q Series) (Series, error) {
	c, err := weakCurrency(s.cur, q.cur)
	if err != nil {
		return Series{}, err
	}
	if s.start != q.start || len(s.values) != len(q.values) {
		return Series{}, fmt.Errorf("cannot multiply series over %v and %v", s.Range(), q.Range())
	}
	values := make([]decimal.Decimal, len(s.values))
	for i, v := range s.values {
		values[i] = v.Mul(q.values[i])
	}
	return Series{cur: c, start: s.start, values: values}, nil
}

// Sum returns the day by day sum of all series over the union of their ranges.
//
// Days not covered by a series count as zero for it. All non empty currencies
// must be the same.
func Sum(series ...Series) (Series, error) {
	var c string
	var from, to date.Date
	for _, s := range series {
		var err error
		if c, err = weakCurrency(c, s.cur); err != nil {
			return Series{}, err
		}
		if s.IsEmpty() {
			continue
		}
		if from.IsZero() || s.start.Before(from) {
			from = s.start
		}
		if to.IsZero() || s.End().After(to) {
			to = s.End()
		}
	}
	if from.IsZero() {
		return Series{cur: c}, nil
	}
	values := make([]decimal.Decimal, to.Sub(from)+1)
	for i := range values {
		values[i] = decimal.Zero
	}
	for _, s := range series {
		offset := s.start.Sub(from)
		for i, v := range s.values {
			values[offset+i] = values[offset+i].Add(v)
		}
	}
	return Series{cur: c, start: from, values: values}, nil
}

// weakCurrency combines two currencies where "" matches anything.
func weakCurrency(a, b string) (string, error) {
	switch {
	case a == "":
		return b, nil
	case b == "" || a == b:
		return a, nil
	default:
		return "", fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, a, b)
	}
}

// MarshalJSON writes the series as its currency and a list of dated points.
func (s Series) MarshalJSON() ([]byte, error) {
	type point struct {
		Date  date.Date       `json:"date"`
		Value decimal.Decimal `json:"value"`
	}
	points := make([]point, 0, len(s.values))
	for on, v := range s.Values() {
		points = append(points, point{on, v})
	}
	var w jsonObjectWriter
	w.Optional("currency", s.cur)
	w.Append("points", points)
	return w.MarshalJSON()
}
