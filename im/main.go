// Command im values an investment portfolio kept in a spreadsheet.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path"

	"github.com/etnz/folio"
	"github.com/etnz/folio/cmd"
	"github.com/etnz/folio/config"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	conf, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(int(subcommands.ExitUsageError))
	}

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander, flag.CommandLine, conf)

	completion().Complete(path.Base(os.Args[0]))

	flag.Parse()

	if flag.NArg() > 0 && !isCommand(commander, flag.Arg(0)) {
		if found, code := cmd.RunExtension(flag.Arg(0), flag.Args()[1:]); found {
			os.Exit(code)
		}
	}
	os.Exit(int(commander.Execute(context.Background())))
}

// isCommand reports whether name is a registered subcommand.
func isCommand(c *subcommands.Commander, name string) bool {
	found := false
	c.VisitCommands(func(_ *subcommands.CommandGroup, cmd subcommands.Command) {
		if cmd.Name() == name {
			found = true
		}
	})
	return found
}

// completion describes the command line for shell completion.
func completion() *complete.Command {
	tickers := predict.Set{folio.PortfolioSeries}
	window := map[string]complete.Predictor{
		"t":    tickers,
		"from": predict.Something,
		"to":   predict.Something,
	}
	chart := map[string]complete.Predictor{"o": predict.Files("*.png")}
	for k, v := range window {
		chart[k] = v
	}
	evolution := map[string]complete.Predictor{"csv": predict.Nothing}
	for k, v := range window {
		evolution[k] = v
	}

	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"f":       predict.Or(predict.Files("*.xlsx"), predict.Dirs("*")),
			"c":       predict.Set(folio.Currencies),
			"v":       predict.Nothing,
			"workers": predict.Something,
			"retries": predict.Something,
			"abort":   predict.Nothing,
		},
		Sub: map[string]*complete.Command{
			"summary":   {Flags: map[string]complete.Predictor{"html": predict.Nothing}},
			"assets":    {},
			"evolution": {Flags: evolution},
			"chart":     {Flags: chart},
			"serve":     {Flags: map[string]complete.Predictor{"addr": predict.Something}},
			"advise":    {Flags: map[string]complete.Predictor{"model": predict.Something}},
			"help":      {},
			"flags":     {},
			"commands":  {},
		},
	}
}
