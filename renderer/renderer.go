// Package renderer turns portfolio reports into markdown and HTML.
package renderer

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed *.md
var templates embed.FS

// Summary is the allocation report of a portfolio.
type Summary struct {
	Currency   string
	Value      folio.Money
	Invested   folio.Money
	Result     folio.Percent
	Categories []folio.CategorySummary
	Failed     []string
}

// NewSummary collects the summary report of p. Failed lists the tickers
// that could not be loaded, if any.
func NewSummary(p *folio.Portfolio, failed ...string) *Summary {
	return &Summary{
		Currency:   p.DisplayCurrency(),
		Value:      p.Value(),
		Invested:   p.TotalInvested(),
		Result:     p.Result(),
		Categories: p.SummaryByCategory(),
		Failed:     failed,
	}
}

// Assets is the per asset report of a portfolio.
type Assets struct {
	Currency string
	Rows     []folio.AssetRow
}

// NewAssets collects the asset report of p.
func NewAssets(p *folio.Portfolio) *Assets {
	return &Assets{Currency: p.DisplayCurrency(), Rows: p.AssetRows()}
}

// Point is a single day of an Evolution.
type Point struct {
	Date  date.Date
	Value folio.Money
}

// Evolution is a daily value series ready for display.
type Evolution struct {
	Name     string
	Currency string
	Range    date.Range
	Points   []Point
}

// NewEvolution converts a series into a report.
func NewEvolution(name string, s folio.Series) *Evolution {
	e := &Evolution{Name: name, Currency: s.Currency()}
	if s.IsEmpty() {
		return e
	}
	e.Range = s.Range()
	e.Points = make([]Point, 0, s.Len())
	for on, v := range s.Values() {
		e.Points = append(e.Points, Point{Date: on, Value: folio.M(v, s.Currency())})
	}
	return e
}

// RenderSummary renders the summary report to markdown.
func RenderSummary(s *Summary) string {
	partials := map[string]string{
		"summary_categories": "summary_categories.md",
		"summary_failed":     "",
	}
	if len(s.Failed) > 0 {
		partials["summary_failed"] = "summary_failed.md"
	}
	return renderTemplate("summary", "summary.md", partials, s)
}

// RenderAssets renders the asset report to markdown.
func RenderAssets(a *Assets) string {
	return renderTemplate("assets", "assets.md", nil, a)
}

// RenderEvolution renders a series report to markdown.
func RenderEvolution(e *Evolution) string {
	return renderTemplate("evolution", "evolution.md", nil, e)
}

// HTML converts a markdown report into an HTML fragment.
func HTML(markdown string) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var b bytes.Buffer
	if err := md.Convert([]byte(markdown), &b); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return b.String(), nil
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcs).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name is a valid case, resulting in an empty template.
		if file != "" {
			content, err = fs.ReadFile(templates, file)
			if err != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, err)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}

var funcs = template.FuncMap{
	// goal prints an empty cell for categories without a target.
	"goal": func(p folio.Percent) string {
		if !p.IsDefined() || p == 0 {
			return ""
		}
		return p.String()
	},
	"cell": func(s string) string { return strings.ReplaceAll(s, "|", `\|`) },
}
