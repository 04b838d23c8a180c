package sheet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// parseDate reads a date written as ISO text or as an Excel serial number.
// An empty cell is the zero date.
func parseDate(cell string) (date.Date, error) {
	if cell == "" {
		return date.Date{}, nil
	}
	// Excel may store a date time, only the day matters.
	day, _, _ := strings.Cut(cell, " ")
	day, _, _ = strings.Cut(day, "T")
	if d, err := date.Parse(day); err == nil {
		return d, nil
	}
	serial, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return date.Date{}, fmt.Errorf("invalid date %q", cell)
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return date.Date{}, fmt.Errorf("invalid date %q: %w", cell, err)
	}
	return date.Of(t), nil
}

// parseDecimal reads a number, accepting a decimal comma and thousands spaces.
func parseDecimal(cell string) (decimal.Decimal, error) {
	s := strings.ReplaceAll(cell, " ", "")
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid number %q", cell)
	}
	return d, nil
}

// parseGoal reads a target share, either as a fraction (0.25) or as a
// percentage ("25%").
func parseGoal(cell string) (float64, error) {
	if cell == "" {
		return 0, nil
	}
	if p, ok := strings.CutSuffix(cell, "%"); ok {
		d, err := parseDecimal(p)
		if err != nil {
			return 0, err
		}
		return d.InexactFloat64(), nil
	}
	d, err := parseDecimal(cell)
	if err != nil {
		return 0, err
	}
	return d.Shift(2).InexactFloat64(), nil
}
