package sheet

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testWorkbook() *Workbook {
	return NewWorkbook(
		&Table{
			Name:   RecordsTable,
			Header: []string{"TICKER", "Amount", "Buy Date", "Sell Date"},
			Rows: [][]string{
				{"aapl", "10", "2025-01-02", ""},
				{"AAPL", "5", "45661", "2025-01-08"},
				{"CSP1.L", "300", "2025-01-03", ""},
				{"BAD", "ten", "2025-01-03", ""},
				{"GONE", "1", "2025-01-03", ""},
			},
		},
		&Table{
			Name:   AssetsTable,
			Header: []string{"TICKER", "Name", "Category", "Currency", "Field", "First buy"},
			Rows: [][]string{
				{"AAPL", "Apple", "Stocks", "usd", "Tech", "2025-01-02"},
				{"CSP1.L", "iShares Core S&P 500", "ETF", "GBP", "", "2025-01-03"},
				{"BAD", "Broken", "Stocks", "EUR", "", "2025-01-03"},
				{"", "", "", "", "", ""},
			},
		},
		&Table{
			Name:   CategoriesTable,
			Header: []string{"Category", "Goal"},
			Rows:   [][]string{{"Stocks", "0.4"}, {"ETF", "60%"}, {"Bonds", ""}},
		},
		&Table{
			Name:   ResultsTable,
			Header: []string{"TICKER", "INVESTED", "Average buy value", "OWNED"},
			Rows: [][]string{
				{"AAPL", "1500", "100", "15"},
				{"CSP1.L", "150000", "500", "300"},
				{"BAD", "1", "1", "1"},
			},
		},
	)
}

func TestNewBook(t *testing.T) {
	b, err := NewBook(testWorkbook(), map[string]decimal.Decimal{"CSP1.L": decimal.NewFromInt(100)})
	require.NoError(t, err)

	assert.Equal(t, []string{"AAPL", "CSP1.L", "BAD"}, b.Tickers())
	assert.Equal(t, []folio.Category{{Name: "Stocks", Goal: 40}, {Name: "ETF", Goal: 60}, {Name: "Bonds", Goal: 0}}, b.Categories())

	aapl, err := b.Lookup("aapl")
	require.NoError(t, err)
	assert.Equal(t, "USD", aapl.Info.Currency)
	assert.Equal(t, "Tech", aapl.Info.Field)
	assert.Equal(t, date.New(2025, 1, 2), aapl.Info.FirstBuy)
	require.Len(t, aapl.Records, 2)
	assert.Equal(t, date.New(2025, 1, 4), aapl.Records[1].BuyDate, "excel serial date")
	assert.Equal(t, date.New(2025, 1, 8), aapl.Records[1].SellDate)
	assert.True(t, aapl.Records[0].Held())
	assert.True(t, aapl.Results.Invested.Equal(folio.M(1500, "USD")))
	assert.True(t, aapl.Results.Owned.Equal(folio.Q(15)))
	assert.True(t, aapl.Info.Multiplier.IsZero())

	csp, err := b.Lookup("CSP1.L")
	require.NoError(t, err)
	assert.True(t, csp.Info.Multiplier.Equal(decimal.NewFromInt(100)))

	_, err = b.Lookup("BAD")
	assert.ErrorContains(t, err, `invalid number "ten"`)

	_, err = b.Lookup("GONE")
	assert.ErrorIs(t, err, folio.ErrUnknownTicker)
}

func TestNewBook_MultiplierColumn(t *testing.T) {
	wb := testWorkbook()
	assets, _ := wb.Table(AssetsTable)
	assets.Header = append(assets.Header, "Multiplier")
	for i := range assets.Rows {
		assets.Rows[i] = append(assets.Rows[i], "")
	}
	assets.Rows[0][6] = "10"

	b, err := NewBook(wb, nil)
	require.NoError(t, err)
	aapl, err := b.Lookup("AAPL")
	require.NoError(t, err)
	assert.True(t, aapl.Info.Multiplier.Equal(decimal.NewFromInt(10)))
}

func TestNewBook_RowErrors(t *testing.T) {
	testCases := []struct {
		name    string
		edit    func(wb *Workbook)
		wantErr string
	}{
		{
			name: "missing buy date",
			edit: func(wb *Workbook) {
				t, _ := wb.Table(RecordsTable)
				t.Rows[0][2] = ""
			},
			wantErr: "missing Buy Date",
		},
		{
			name: "invalid sell date",
			edit: func(wb *Workbook) {
				t, _ := wb.Table(RecordsTable)
				t.Rows[0][3] = "yesterday"
			},
			wantErr: `invalid date "yesterday"`,
		},
		{
			name: "no results",
			edit: func(wb *Workbook) {
				t, _ := wb.Table(ResultsTable)
				t.Rows = t.Rows[1:]
			},
			wantErr: "no results row",
		},
		{
			name: "missing currency",
			edit: func(wb *Workbook) {
				t, _ := wb.Table(AssetsTable)
				t.Rows[0][3] = ""
			},
			wantErr: "missing Currency",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			wb := testWorkbook()
			tc.edit(wb)
			b, err := NewBook(wb, nil)
			require.NoError(t, err)
			_, err = b.Lookup("AAPL")
			assert.ErrorContains(t, err, tc.wantErr)
			_, err = b.Lookup("CSP1.L")
			assert.NoError(t, err, "other tickers are not affected")
		})
	}
}

func TestNewBook_MissingTable(t *testing.T) {
	wb := testWorkbook()
	delete(wb.tables, ResultsTable)
	delete(wb.tables, CategoriesTable)
	_, err := NewBook(wb, nil)
	assert.ErrorIs(t, err, ErrMissingTable)
	assert.ErrorContains(t, err, ResultsTable)
	assert.ErrorContains(t, err, CategoriesTable)

	wb = testWorkbook()
	assets, _ := wb.Table(AssetsTable)
	assets.Header[3] = "Devise"
	_, err = NewBook(wb, nil)
	assert.ErrorContains(t, err, `missing column "Currency"`)
}

// writeXLSX saves the tables of wb into an excel file, records in sheet
// Records, assets and categories in sheet Assets, results in sheet Results.
func writeXLSX(t *testing.T, wb *Workbook, path string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	layout := []struct {
		sheet, table, at string
	}{
		{"Records", RecordsTable, "A1"},
		{"Assets", AssetsTable, "A1"},
		{"Assets", CategoriesTable, "I1"},
		{"Results", ResultsTable, "B2"},
	}
	for _, l := range layout {
		if idx, _ := f.GetSheetIndex(l.sheet); idx < 0 {
			_, err := f.NewSheet(l.sheet)
			require.NoError(t, err)
		}
		tb, err := wb.Table(l.table)
		require.NoError(t, err)
		col, row, err := excelize.CellNameToCoordinates(l.at)
		require.NoError(t, err)
		for i, cells := range append([][]string{tb.Header}, tb.Rows...) {
			values := make([]any, len(cells))
			for j, c := range cells {
				values[j] = c
			}
			cell, err := excelize.CoordinatesToCellName(col, row+i)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(l.sheet, cell, &values))
		}
		start, _ := excelize.CoordinatesToCellName(col, row)
		end, _ := excelize.CoordinatesToCellName(col+len(tb.Header)-1, row+len(tb.Rows))
		require.NoError(t, f.AddTable(l.sheet, &excelize.Table{Range: start + ":" + end, Name: l.table}))
	}
	require.NoError(t, f.DeleteSheet("Sheet1"))
	require.NoError(t, f.SaveAs(path))
}

func TestReadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portfolio.xlsx")
	writeXLSX(t, testWorkbook(), path)

	b, err := Open(path, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "CSP1.L", "BAD"}, b.Tickers())
	assert.Len(t, b.Categories(), 3)
	aapl, err := b.Lookup("AAPL")
	require.NoError(t, err)
	assert.Len(t, aapl.Records, 2)
	assert.True(t, aapl.Results.AverageBuy.Equal(folio.M(100, "USD")))
}

func TestReadCSVDir(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"records.csv":    "TICKER,Amount,Buy Date,Sell Date\nAAPL,10,2025-01-02,\nAAPL,5,2025-01-04,2025-01-08\n",
		"assets.csv":     "TICKER,Name,Category,Currency,Field,First buy\nAAPL,Apple,Stocks,USD,Tech,2025-01-02\n",
		"categories.csv": "Category,Goal\nStocks,1\n",
		"results.csv":    "TICKER,INVESTED,Average buy value,OWNED\nAAPL,1500,100,15\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	b, err := Open(dir, nil)
	require.NoError(t, err)
	aapl, err := b.Lookup("AAPL")
	require.NoError(t, err)
	assert.Len(t, aapl.Records, 2)
	assert.Equal(t, []folio.Category{{Name: "Stocks", Goal: 100}}, b.Categories())

	require.NoError(t, os.Remove(filepath.Join(dir, "results.csv")))
	_, err = Open(dir, nil)
	assert.True(t, errors.Is(err, ErrMissingTable), "got %v", err)
}
