package cmd

import (
	"context"
	"flag"

	"github.com/etnz/folio/renderer"
	"github.com/google/subcommands"
)

type assetsCmd struct{}

func (*assetsCmd) Name() string     { return "assets" }
func (*assetsCmd) Synopsis() string { return "display every asset of the portfolio" }
func (*assetsCmd) Usage() string {
	return `im assets

  Displays one row per asset: units owned, unit value, holding value,
  invested amount, result and share of the portfolio.
`
}

func (*assetsCmd) SetFlags(*flag.FlagSet) {}

func (*assetsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	p, _, status := openPortfolio(ctx)
	if status != subcommands.ExitSuccess {
		return status
	}
	printMarkdown(renderer.RenderAssets(renderer.NewAssets(p)))
	return subcommands.ExitSuccess
}
