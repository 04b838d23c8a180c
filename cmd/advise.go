package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/folio/advisor"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

const defaultQuestion = "Review my portfolio: compare each category with its goal, comment the main gains and losses, and suggest how to rebalance."

type adviseCmd struct {
	model string
}

func (*adviseCmd) Name() string     { return "advise" }
func (*adviseCmd) Synopsis() string { return "ask Gemini to review the portfolio" }
func (*adviseCmd) Usage() string {
	return `im advise [-model <name>] [question...]

  Sends the question, or a default review request, to Gemini. The model can
  read the summary, the assets and the evolution of the loaded portfolio.
  The API key is read from GEMINI_API_KEY or GOOGLE_API_KEY.
`
}

func (c *adviseCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.model, "model", cfg.Model, "Gemini model name")
}

func (c *adviseCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	question := defaultQuestion
	if f.NArg() > 0 {
		question = strings.Join(f.Args(), " ")
	}

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	p, _, status := openPortfolio(ctx)
	if status != subcommands.ExitSuccess {
		return status
	}

	a := advisor.New(client.Models, c.model, newLogger(), advisor.PortfolioTools(p)...)
	answer, err := a.Ask(ctx, question)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Advisor failed:", err)
		return subcommands.ExitFailure
	}
	printMarkdown(answer)
	return subcommands.ExitSuccess
}
