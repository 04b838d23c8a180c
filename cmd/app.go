// Package cmd implements the im command line to value a portfolio.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/folio"
	"github.com/etnz/folio/config"
	"github.com/etnz/folio/date"
	"github.com/etnz/folio/ecb"
	"github.com/etnz/folio/fetch"
	"github.com/etnz/folio/logger"
	"github.com/etnz/folio/sheet"
	"github.com/etnz/folio/yahoo"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
)

// Commands lists every subcommand, by group.
var Commands = map[string][]subcommands.Command{
	"reports": {&summaryCmd{}, &assetsCmd{}, &evolutionCmd{}, &chartCmd{}},
	"tools":   {&serveCmd{}, &adviseCmd{}},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.
var (
	cfg     = &config.Config{}
	verbose bool
)

// Register binds the global flags to conf, whose values are the defaults,
// and registers the subcommands.
func Register(c *subcommands.Commander, fs *flag.FlagSet, conf *config.Config) {
	cfg = conf
	fs.StringVar(&cfg.File, "f", cfg.File, "portfolio workbook (.xlsx) or directory of CSV files")
	fs.StringVar(&cfg.Currency, "c", cfg.Currency, "display currency")
	fs.BoolVar(&verbose, "v", false, "verbose logging")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "number of tickers loaded concurrently")
	fs.IntVar(&cfg.Retries, "retries", cfg.Retries, "number of retries of a failing provider call")
	fs.BoolVar(&cfg.Abort, "abort", cfg.Abort, "stop loading on the first provider failure")

	for group, cmds := range Commands {
		for _, cmd := range cmds {
			c.Register(cmd, group)
		}
	}
}

func newLogger() zerolog.Logger {
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	return logger.New(logger.Config{Level: level, Pretty: cfg.LogPretty})
}

// newPortfolio creates an empty portfolio backed by the Yahoo and ECB providers.
func newPortfolio(log zerolog.Logger) (*folio.Portfolio, error) {
	currency := strings.ToUpper(cfg.Currency)
	if !folio.IsCurrency(currency) {
		return nil, fmt.Errorf("unknown currency %q", cfg.Currency)
	}
	if cfg.Workers < 1 {
		return nil, fmt.Errorf("-workers must be at least 1, got %d", cfg.Workers)
	}

	opts := []fetch.Option{fetch.WithLogger(log), fetch.WithRateLimit(100*time.Millisecond, 30)}
	if cfg.CacheDir != "" {
		opts = append(opts, fetch.WithDiskCache(cfg.CacheDir))
	}
	client := fetch.New(opts...)

	prices := yahoo.New(client, yahoo.WithURL(cfg.YahooURL), yahoo.WithLogger(log))
	rates := ecb.New(client, ecb.WithURL(cfg.ECBURL), ecb.WithLogger(log))

	return folio.New(prices, rates,
		folio.WithCurrency(currency),
		folio.WithLogger(log),
		folio.WithWorkers(cfg.Workers),
		folio.WithFailurePolicy(folio.FailurePolicy{
			Retries: cfg.Retries,
			Backoff: cfg.Backoff,
			Abort:   cfg.Abort,
		}),
	), nil
}

// openSource reads the portfolio workbook.
func openSource() (*sheet.Book, error) {
	if cfg.File == "" {
		return nil, errors.New("no portfolio file, use -f or IM_FILE")
	}
	src, err := sheet.Open(cfg.File, cfg.Multipliers)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", cfg.File, err)
	}
	return src, nil
}

// load reads the workbook and loads every ticker in p, showing progress on
// stderr. Failed tickers are reported on stderr and returned.
func load(ctx context.Context, p *folio.Portfolio) (failed []string, err error) {
	src, err := openSource()
	if err != nil {
		return nil, err
	}

	var bar *progressbar.ProgressBar
	err = p.Load(ctx, src, func(done, total int, ticker string) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionSetElapsedTime(true),
				progressbar.OptionClearOnFinish(),
			)
		}
		bar.Describe("Processing asset: " + ticker)
		bar.Set(done)
	})
	if bar != nil {
		bar.Finish()
	}

	var lerr *folio.LoadError
	if errors.As(err, &lerr) {
		for _, f := range lerr.Failures {
			fmt.Fprintf(os.Stderr, "Asset %s failed to load: %v\n", f.Ticker, f.Err)
		}
		return lerr.Tickers(), nil
	}
	return nil, err
}

// openPortfolio creates and loads the portfolio described by the global flags.
func openPortfolio(ctx context.Context) (*folio.Portfolio, []string, subcommands.ExitStatus) {
	log := newLogger()
	p, err := newPortfolio(log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return nil, nil, subcommands.ExitUsageError
	}
	failed, err := load(ctx, p)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading portfolio: %v\n", err)
		return nil, nil, subcommands.ExitFailure
	}
	return p, failed, subcommands.ExitSuccess
}

// parseWindow parses optional -from and -to flags.
func parseWindow(from, to string) (date.Range, error) {
	var r date.Range
	var err error
	if from != "" {
		if r.From, err = date.Parse(from); err != nil {
			return r, err
		}
	}
	if to != "" {
		if r.To, err = date.Parse(to); err != nil {
			return r, err
		}
	}
	if !r.From.IsZero() && !r.To.IsZero() && r.To.Before(r.From) {
		return r, fmt.Errorf("-to %s is before -from %s", r.To, r.From)
	}
	return r, nil
}

// printMarkdown renders md for the terminal, or prints it raw if that fails.
func printMarkdown(md string) {
	fprintMarkdown(os.Stdout, md)
}

func fprintMarkdown(w io.Writer, md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(160))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Fprint(w, out)
			return
		}
	}
	fmt.Fprint(w, md)
}
