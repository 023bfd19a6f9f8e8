// Package renderer renders basket reports as markdown.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"math"
	"strings"
	"text/template"

	"github.com/etnz/basket"
	"github.com/etnz/basket/analytics"
	"github.com/etnz/basket/date"
)

//go:embed templates/*.md
var templatesFS embed.FS

var templates, _ = fs.Sub(templatesFS, "templates")

var funcs = template.FuncMap{
	"pct": func(v float64) string { return fmt.Sprintf("%.2f%%", 100*v) },
	"ratio": func(v float64) string {
		if math.IsInf(v, 1) {
			return "∞"
		}
		return fmt.Sprintf("%.2f", v)
	},
}

// RenderValuation renders a valuation report.
func RenderValuation(r *basket.ValuationReport) string {
	partials := map[string]string{
		"valuation_positions": "valuation_positions.md",
	}
	return renderTemplate("valuation", "valuation.md", partials, r)
}

// RenderHoldings renders the FIFO holdings of a portfolio on a date.
func RenderHoldings(on date.Date, holdings []basket.Holding) string {
	data := struct {
		Date     date.Date
		Holdings []basket.Holding
	}{on, holdings}
	return renderTemplate("holdings", "holdings.md", nil, data)
}

// RenderLog renders the journal of sub-ledger writes.
func RenderLog(events []basket.Event) string {
	return renderTemplate("log", "log.md", nil, events)
}

// RenderSummary renders trading statistics computed on a date.
func RenderSummary(on date.Date, s analytics.Summary) string {
	data := struct {
		Date date.Date
		analytics.Summary
	}{on, s}
	return renderTemplate("kelly", "kelly.md", nil, data)
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
		content, err := fs.ReadFile(templates, file)
		if err != nil {
			return fmt.Sprintf("error reading partial template %q: %v", file, err)
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
