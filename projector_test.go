package folio

import (
	"slices"
	"testing"
)

func TestProjectHoldings(t *testing.T) {
	flat := series("EUR", 1, 1, 1, 1, 1, 1, 1, 1, 1, 1)

	testCases := []struct {
		name       string
		records    []TransactionRecord
		prices     Series
		multiplier float64
		today      int
		want       []float64
	}{
		{
			name: "buy and partial sell",
			records: []TransactionRecord{
				{Amount: D(10), BuyDate: day(1)},
				{Amount: D(5), BuyDate: day(3), SellDate: day(5)},
			},
			prices:     flat,
			multiplier: 1,
			today:      10,
			want:       []float64{10, 10, 15, 15, 10, 10, 10, 10, 10, 10},
		},
		{
			name: "overlapping records add up",
			records: []TransactionRecord{
				{Amount: D(2), BuyDate: day(2), SellDate: day(6)},
				{Amount: D(3), BuyDate: day(4), SellDate: day(8)},
				{Amount: D(-1), BuyDate: day(5)},
			},
			prices:     flat,
			multiplier: 1,
			today:      10,
			want:       []float64{0, 2, 2, 5, 4, 2, 2, -1, -1, -1},
		},
		{
			name:       "held records stop today",
			records:    []TransactionRecord{{Amount: D(4), BuyDate: day(1)}},
			prices:     flat,
			multiplier: 1,
			today:      3,
			want:       []float64{4, 4, 4, 0, 0, 0, 0, 0, 0, 0},
		},
		{
			name:       "unit multiplier",
			records:    []TransactionRecord{{Amount: D(200), BuyDate: day(2)}},
			prices:     series("USD", 3, 3, 4),
			multiplier: 100,
			today:      3,
			want:       []float64{0, 6, 8},
		},
		{
			name: "records outside the prices are clipped",
			records: []TransactionRecord{
				{Amount: D(1), BuyDate: day(-5)},
				{Amount: D(7), BuyDate: day(-5), SellDate: day(-1)},
				{Amount: D(9), BuyDate: day(20)},
			},
			prices:     series("EUR", 2, 2, 2),
			multiplier: 1,
			today:      30,
			want:       []float64{2, 2, 2},
		},
		{
			name:       "no record",
			prices:     series("EUR", 5, 6),
			multiplier: 1,
			today:      2,
			want:       []float64{0, 0},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ProjectHoldings(tc.records, tc.prices, D(tc.multiplier), day(tc.today))
			if err != nil {
				t.Fatalf("ProjectHoldings() error = %v", err)
			}
			if !slices.Equal(floats(got), tc.want) {
				t.Errorf("ProjectHoldings() = %v want %v", floats(got), tc.want)
			}
			if got.Start() != tc.prices.Start() || got.Currency() != tc.prices.Currency() {
				t.Errorf("ProjectHoldings() start=%v currency=%q want %v %q", got.Start(), got.Currency(), tc.prices.Start(), tc.prices.Currency())
			}
		})
	}
}

func TestProjectHoldings_Errors(t *testing.T) {
	prices := series("EUR", 1, 1, 1)
	if _, err := ProjectHoldings(nil, prices, D(0), day(3)); err == nil {
		t.Errorf("ProjectHoldings(multiplier=0) want error")
	}
	sellBeforeBuy := []TransactionRecord{{Amount: D(1), BuyDate: day(3), SellDate: day(2)}}
	if _, err := ProjectHoldings(sellBeforeBuy, prices, D(1), day(3)); err == nil {
		t.Errorf("ProjectHoldings(sell before buy) want error")
	}
}
