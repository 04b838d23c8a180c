package folio

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Percent is a ratio expressed in percent: 12.5 means 12.5%.
type Percent float64

// UndefinedPercent is the result of a ratio with a zero denominator.
var UndefinedPercent = Percent(math.NaN())

// percentOf returns num/den as a Percent, or UndefinedPercent when den is zero.
func percentOf(num, den decimal.Decimal) Percent {
	if den.IsZero() {
		return UndefinedPercent
	}
	return Percent(num.Div(den).Shift(2).InexactFloat64())
}

// IsDefined reports whether p is a number.
func (p Percent) IsDefined() bool { return !math.IsNaN(float64(p)) }

// Fraction returns p as a fraction of 1.
func (p Percent) Fraction() float64 { return float64(p) / 100 }

func (p Percent) Equal(q Percent) bool {
	if !p.IsDefined() || !q.IsDefined() {
		return p.IsDefined() == q.IsDefined()
	}
	// it has to be compared with some precision
	const precision = 0.0001
	return math.Abs(float64(p-q)) < precision
}

func (p Percent) String() string {
	if !p.IsDefined() {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", float64(p))
}

func (p Percent) SignedString() string {
	if !p.IsDefined() {
		return "n/a"
	}
	res := fmt.Sprintf("%+.2f%%", float64(p))
	if res == "+0.00%" {
		return "-"
	}
	return res
}

// MarshalJSON writes undefined percents as null.
func (p Percent) MarshalJSON() ([]byte, error) {
	if !p.IsDefined() {
		return []byte("null"), nil
	}
	return json.Marshal(math.Round(float64(p)*10000) / 10000)
}
