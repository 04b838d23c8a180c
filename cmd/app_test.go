package cmd

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/etnz/folio"
	"github.com/etnz/folio/config"
	"github.com/etnz/folio/date"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// AAPL closes at $100 on 2025-01-02 and $125 from 2025-01-07 on.
const chartJSON = `{"chart":{"result":[{"meta":{"currency":"USD","gmtoffset":0},
"timestamp":[1735776000,1736208000],
"indicators":{"quote":[{"close":[100,125]}]}}],"error":null}}`

const rates = "Date,USD,GBP,\n2025-01-10,1.25,0.8,\n2024-12-31,1.25,0.8,\n"

// withFixture points the global configuration to a CSV workbook and to fake
// Yahoo and ECB servers.
func withFixture(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range map[string]string{
		"records.csv":    "TICKER,Amount,Buy Date,Sell Date\nAAPL,10,2025-01-02,\nAAPL,5,2025-01-04,2025-01-08\nMSFT,1,2025-01-02,\n",
		"assets.csv":     "TICKER,Name,Category,Currency,Field,First buy\nAAPL,Apple,Stocks,USD,Tech,2025-01-02\nMSFT,Microsoft,Stocks,USD,Tech,2025-01-02\n",
		"categories.csv": "Category,Goal\nStocks,1\n",
		"results.csv":    "TICKER,INVESTED,Average buy value,OWNED\nAAPL,1000,100,10\nMSFT,400,400,1\n",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	var zipped bytes.Buffer
	zw := zip.NewWriter(&zipped)
	f, err := zw.Create("eurofxref-hist.csv")
	if err != nil {
		t.Fatal(err)
	}
	f.Write([]byte(rates))
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/ecb.zip":
			w.Write(zipped.Bytes())
		case strings.HasPrefix(r.URL.Path, "/v8/finance/chart/AAPL"):
			w.Write([]byte(chartJSON))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	cfg = &config.Config{
		File:      dir,
		Currency:  "EUR",
		LogLevel:  "error",
		Workers:   2,
		YahooURL:  srv.URL,
		ECBURL:    srv.URL + "/ecb.zip",
		Addr:      ":0",
		LogPretty: false,
	}
	t.Cleanup(func() { cfg = &config.Config{} })
}

func TestOpenPortfolio(t *testing.T) {
	withFixture(t)

	p, failed, status := openPortfolio(context.Background())
	if status != subcommands.ExitSuccess {
		t.Fatalf("openPortfolio() status = %v", status)
	}
	if len(failed) != 1 || failed[0] != "MSFT" {
		t.Errorf("openPortfolio() failed = %v, want [MSFT]", failed)
	}
	if got, want := p.Value(), folio.M(1000, "EUR"); !got.Equal(want) {
		t.Errorf("Value() = %v, want %v", got, want)
	}

	s, ok := p.Series("PORTFOLIO", date.Between(date.New(2025, 1, 2), date.New(2025, 1, 8)))
	if !ok {
		t.Fatal("Series(PORTFOLIO) not found")
	}
	// 10 units then 15 from the 4th to the 7th, $100 then $125 from the 7th.
	want := []float64{800, 800, 1200, 1200, 1200, 1500, 1000}
	var got []float64
	for _, v := range s.Values() {
		got = append(got, v.InexactFloat64())
	}
	if len(got) != len(want) {
		t.Fatalf("Series() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Series()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestOpenPortfolio_Errors(t *testing.T) {
	withFixture(t)

	cfg.Currency = "XYZ"
	if _, _, status := openPortfolio(context.Background()); status != subcommands.ExitUsageError {
		t.Errorf("openPortfolio(XYZ) status = %v, want usage error", status)
	}

	cfg.Currency = "EUR"
	cfg.File = filepath.Join(t.TempDir(), "missing.xlsx")
	if _, _, status := openPortfolio(context.Background()); status != subcommands.ExitFailure {
		t.Errorf("openPortfolio(missing file) status = %v, want failure", status)
	}

	cfg.File = ""
	if _, _, status := openPortfolio(context.Background()); status != subcommands.ExitFailure {
		t.Errorf("openPortfolio(no file) status = %v, want failure", status)
	}
}

func TestParseWindow(t *testing.T) {
	testCases := []struct {
		from, to string
		want     date.Range
		wantErr  bool
	}{
		{"", "", date.Range{}, false},
		{"2025-01-02", "", date.Range{From: date.New(2025, 1, 2)}, false},
		{"", "2025-1-9", date.Range{To: date.New(2025, 1, 9)}, false},
		{"2025-01-02", "2025-01-09", date.Between(date.New(2025, 1, 2), date.New(2025, 1, 9)), false},
		{"2025-01-09", "2025-01-02", date.Range{}, true},
		{"yesterday", "", date.Range{}, true},
	}
	for _, tc := range testCases {
		t.Run(tc.from+".."+tc.to, func(t *testing.T) {
			got, err := parseWindow(tc.from, tc.to)
			if (err != nil) != tc.wantErr {
				t.Fatalf("parseWindow() error = %v, wantErr %v", err, tc.wantErr)
			}
			if !tc.wantErr && got != tc.want {
				t.Errorf("parseWindow() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestWriteCSV(t *testing.T) {
	s := folio.NewSeries("EUR", date.New(2025, 1, 1), []decimal.Decimal{decimal.NewFromFloat(10.5), decimal.NewFromInt(12)})
	var b bytes.Buffer
	if err := writeCSV(&b, s); err != nil {
		t.Fatal(err)
	}
	want := "date,value,currency\n2025-01-01,10.50,EUR\n2025-01-02,12.00,EUR\n"
	if b.String() != want {
		t.Errorf("writeCSV() = %q, want %q", b.String(), want)
	}
}

func TestFprintMarkdown(t *testing.T) {
	var b bytes.Buffer
	fprintMarkdown(&b, "# Title\n\nSome **text**.\n")
	if !strings.Contains(b.String(), "Title") || !strings.Contains(b.String(), "text") {
		t.Errorf("fprintMarkdown() = %q", b.String())
	}
}
