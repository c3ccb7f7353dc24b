// Package report renders ledger views as markdown, and markdown as HTML or
// styled terminal text.
package report

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"fintrack/internal/aggregate"
	"fintrack/internal/core"
	"fintrack/internal/services"
)

//go:embed templates/*.md
var templates embed.FS

var parsed = template.Must(template.ParseFS(templates, "templates/*.md"))

type categoryView struct {
	Name  string
	Total string
	Count int
	Share string
}

type dayView struct {
	Label string
	Total string
}

type summaryView struct {
	Anchor      string
	Records     int
	Total       string
	TopCategory string
	Budget      string
	Daily       []dayView
	Categories  []categoryView
}

type rowView struct {
	Date        string
	Description string
	Category    string
	Amount      string
	ID          string
}

type transactionsView struct {
	Total        int
	PatternError string
	Rows         []rowView
}

// Summary renders the dashboard as a markdown document.
func Summary(d aggregate.Dashboard) (string, error) {
	view := summaryView{
		Anchor:      d.Anchor.String(),
		Records:     d.Records,
		Total:       d.Total.Fixed(),
		TopCategory: orDash(d.TopCategory),
		Budget:      BudgetLine(d.Budget),
	}
	for _, day := range d.Daily {
		view.Daily = append(view.Daily, dayView{Label: day.Label, Total: day.Total.Fixed()})
	}
	for _, c := range d.Categories {
		view.Categories = append(view.Categories, categoryView{
			Name:  cell(c.Name),
			Total: c.Total.Fixed(),
			Count: c.Count,
			Share: c.Percentage.StringFixed(1) + "%",
		})
	}
	return execute("summary.md", view)
}

// Transactions renders a listing as a markdown table.
func Transactions(res services.ListResult) (string, error) {
	view := transactionsView{Total: res.Total, PatternError: res.PatternError}
	for _, r := range res.Rows {
		view.Rows = append(view.Rows, rowView{
			Date:        r.Date.String(),
			Description: cell(r.Description),
			Category:    cell(r.Category),
			Amount:      r.Amount.Fixed(),
			ID:          r.ID,
		})
	}
	return execute("transactions.md", view)
}

// BudgetLine is the one-sentence budget state.
func BudgetLine(b aggregate.BudgetStatus) string {
	switch b.State {
	case aggregate.NoLimitSet:
		return fmt.Sprintf("No budget limit set. Spent %s.", b.Spent.Fixed())
	case aggregate.OverBudget:
		return fmt.Sprintf("Over budget: spent %s of %s (%s%%), %s over.",
			b.Spent.Fixed(), b.Limit.Fixed(), b.Percentage.StringFixed(1), core.Money{}.Sub(*b.Remaining).Fixed())
	default:
		return fmt.Sprintf("Under budget: spent %s of %s (%s%%), %s left.",
			b.Spent.Fixed(), b.Limit.Fixed(), b.Percentage.StringFixed(1), b.Remaining.Fixed())
	}
}

func execute(name string, data any) (string, error) {
	var b strings.Builder
	if err := parsed.ExecuteTemplate(&b, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return b.String(), nil
}

// cell keeps user text from breaking a table row.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
