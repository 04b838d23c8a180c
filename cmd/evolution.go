package cmd

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/folio"
	"github.com/etnz/folio/renderer"
	"github.com/google/subcommands"
)

type evolutionCmd struct {
	ticker string
	from   string
	to     string
	csv    bool
}

func (*evolutionCmd) Name() string     { return "evolution" }
func (*evolutionCmd) Synopsis() string { return "display the daily value of an asset or of the portfolio" }
func (*evolutionCmd) Usage() string {
	return `im evolution [-t <ticker>] [-from <date>] [-to <date>] [-csv]

  Displays the daily value, in display currency, of an asset or of the
  whole portfolio (-t PORTFOLIO, the default).
`
}

func (c *evolutionCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ticker, "t", folio.PortfolioSeries, "ticker to report on, or PORTFOLIO")
	f.StringVar(&c.from, "from", "", "first day (YYYY-MM-DD)")
	f.StringVar(&c.to, "to", "", "last day (YYYY-MM-DD)")
	f.BoolVar(&c.csv, "csv", false, "print CSV instead of a table")
}

func (c *evolutionCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	window, err := parseWindow(c.from, c.to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing dates: %v\n", err)
		return subcommands.ExitUsageError
	}

	p, _, status := openPortfolio(ctx)
	if status != subcommands.ExitSuccess {
		return status
	}
	s, ok := p.Series(c.ticker, window)
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown ticker %q\n", c.ticker)
		return subcommands.ExitFailure
	}

	if c.csv {
		if err := writeCSV(os.Stdout, s); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing CSV: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.RenderEvolution(renderer.NewEvolution(c.ticker, s)))
	return subcommands.ExitSuccess
}

// writeCSV writes one "date,value,currency" line per day of s.
func writeCSV(w io.Writer, s folio.Series) error {
	cw := csv.NewWriter(w)
	cw.Write([]string{"date", "value", "currency"})
	for on, v := range s.Values() {
		cw.Write([]string{on.String(), v.StringFixed(2), s.Currency()})
	}
	cw.Flush()
	return cw.Error()
}
