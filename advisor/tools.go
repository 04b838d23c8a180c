package advisor

import (
	"context"
	"fmt"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/etnz/folio/renderer"
	"google.golang.org/genai"
)

// PortfolioTools returns the functions reading reports of p.
func PortfolioTools(p *folio.Portfolio) []Function {
	return []Function{
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "Summary",
				Description: "Portfolio value, invested amount, result, and the allocation by category with each category's goal and current share.",
				Response: &genai.Schema{
					Type:        genai.TypeString,
					Description: "A markdown report.",
				},
			},
			Func: func(context.Context, map[string]any) (string, error) {
				return renderer.RenderSummary(renderer.NewSummary(p)), nil
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "Assets",
				Description: "One row per asset: ticker, name, category, owned units, unit value, holding value, invested amount, result and share of the portfolio.",
				Response: &genai.Schema{
					Type:        genai.TypeString,
					Description: "A markdown table.",
				},
			},
			Func: func(context.Context, map[string]any) (string, error) {
				return renderer.RenderAssets(renderer.NewAssets(p)), nil
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "Evolution",
				Description: "Daily value of an asset, or of the whole portfolio, over a period.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"ticker": {
							Type:        genai.TypeString,
							Description: "Ticker of the asset, or PORTFOLIO for the whole portfolio.",
						},
						"from": {
							Type:        genai.TypeString,
							Description: "First day, as YYYY-MM-DD. Defaults to the start of the series.",
						},
						"to": {
							Type:        genai.TypeString,
							Description: "Last day, as YYYY-MM-DD. Defaults to the end of the series.",
						},
					},
					Required: []string{"ticker"},
				},
				Response: &genai.Schema{
					Type:        genai.TypeString,
					Description: "A markdown table of daily values.",
				},
			},
			Func: func(_ context.Context, args map[string]any) (string, error) {
				ticker, ok := args["ticker"].(string)
				if !ok {
					return "", fmt.Errorf("argument 'ticker' is not a string as expected but %T", args["ticker"])
				}
				var window date.Range
				var err error
				if window.From, err = parseDate(args, "from"); err != nil {
					return "", err
				}
				if window.To, err = parseDate(args, "to"); err != nil {
					return "", err
				}
				s, ok := p.Series(ticker, window)
				if !ok {
					return "", fmt.Errorf("unknown ticker %q", ticker)
				}
				return renderer.RenderEvolution(renderer.NewEvolution(ticker, s)), nil
			},
		},
	}
}

// parseDate reads an optional date argument. A missing one is zero.
func parseDate(args map[string]any, name string) (date.Date, error) {
	v, ok := args[name]
	if !ok {
		return date.Date{}, nil
	}
	s, ok := v.(string)
	if !ok {
		return date.Date{}, fmt.Errorf("argument %q is not a string as expected but %T", name, v)
	}
	if s == "" {
		return date.Date{}, nil
	}
	return date.Parse(s)
}
