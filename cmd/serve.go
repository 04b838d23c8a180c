package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/etnz/folio"
	"github.com/etnz/folio/server"
	"github.com/google/subcommands"
)

type serveCmd struct {
	addr string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the portfolio reports over HTTP" }
func (*serveCmd) Usage() string {
	return `im serve [-addr <host:port>]

  Loads the portfolio and serves it:
    GET  /api/summary
    GET  /api/assets
    GET  /api/series/{ticker|PORTFOLIO}?from=&to=
    GET  /api/chart/{ticker|PORTFOLIO}.png?from=&to=
    PUT  /api/currency   {"currency":"USD"}
    POST /api/reload
    GET  /report
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", cfg.Addr, "address to listen on")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	p, _, status := openPortfolio(ctx)
	if status != subcommands.ExitSuccess {
		return status
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := server.New(server.Config{
		Addr:      c.addr,
		Log:       newLogger(),
		Portfolio: p,
		Reload: func(ctx context.Context, p *folio.Portfolio) error {
			src, err := openSource()
			if err != nil {
				return err
			}
			p.Reset()
			return p.Load(ctx, src, nil)
		},
	})

	errc := make(chan error, 1)
	go func() { errc <- s.Start() }()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "Server failed: %v\n", err)
			return subcommands.ExitFailure
		}
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdown); err != nil {
			fmt.Fprintf(os.Stderr, "Server shutdown failed: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}
