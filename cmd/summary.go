package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/folio/renderer"
	"github.com/google/subcommands"
)

// summaryCmd holds the flags for the 'summary' subcommand.
type summaryCmd struct {
	html bool
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the portfolio value by category" }
func (*summaryCmd) Usage() string {
	return `im summary [-html]

  Displays the portfolio value, invested amount and result, and the
  allocation of each category compared to its goal.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.html, "html", false, "print HTML instead of terminal output")
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	p, failed, status := openPortfolio(ctx)
	if status != subcommands.ExitSuccess {
		return status
	}

	md := renderer.RenderSummary(renderer.NewSummary(p, failed...))
	if !c.html {
		printMarkdown(md)
		return subcommands.ExitSuccess
	}
	html, err := renderer.HTML(md)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering HTML: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Print(html)
	return subcommands.ExitSuccess
}
