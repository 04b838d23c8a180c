package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/folio"
	"github.com/etnz/folio/chart"
	"github.com/google/subcommands"
)

type chartCmd struct {
	ticker string
	from   string
	to     string
	output string
}

func (*chartCmd) Name() string     { return "chart" }
func (*chartCmd) Synopsis() string { return "draw the evolution of an asset or of the portfolio" }
func (*chartCmd) Usage() string {
	return `im chart [-t <ticker>] [-from <date>] [-to <date>] -o <file.png>

  Draws the daily value of an asset, or of the whole portfolio, as a PNG
  line chart.
`
}

func (c *chartCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ticker, "t", folio.PortfolioSeries, "ticker to draw, or PORTFOLIO")
	f.StringVar(&c.from, "from", "", "first day (YYYY-MM-DD)")
	f.StringVar(&c.to, "to", "", "last day (YYYY-MM-DD)")
	f.StringVar(&c.output, "o", "", "output PNG file")
}

func (c *chartCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.output == "" {
		fmt.Fprintln(os.Stderr, "-o is required")
		return subcommands.ExitUsageError
	}
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

	png, err := chart.Line(strings.ToUpper(c.ticker), s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error drawing chart: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := os.WriteFile(c.output, png, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", c.output, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Chart written to %s\n", c.output)
	return subcommands.ExitSuccess
}
