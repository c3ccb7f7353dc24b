package aggregate

import (
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// DefaultWindowDays is the length of the trend series.
const DefaultWindowDays = 7

type Options struct {
	WindowDays int
	Anchor     core.Date
	Limit      *core.Money
}

type CategoryShare struct {
	Name       string          `json:"name"`
	Total      core.Money      `json:"total"`
	Count      int             `json:"count"`
	Percentage decimal.Decimal `json:"percentage"`
}

type Dashboard struct {
	Anchor      core.Date       `json:"anchor"`
	Records     int             `json:"records"`
	Total       core.Money      `json:"total"`
	TopCategory string          `json:"topCategory"`
	Daily       []DayTotal      `json:"daily"`
	Categories  []CategoryShare `json:"categories"`
	Budget      BudgetStatus    `json:"budget"`
}

// Summarize derives every dashboard figure in one pass over records.
func Summarize(records []core.Transaction, opts Options) Dashboard {
	window := opts.WindowDays
	if window == 0 {
		window = DefaultWindowDays
	}
	total := Total(records)

	totals := CategoryTotals(records)
	shares := make([]CategoryShare, len(totals))
	for i, c := range totals {
		pct := decimal.Zero
		if !total.IsZero() {
			pct = c.Amount.Decimal().Mul(decimal.NewFromInt(100)).Div(total.Decimal()).Round(1)
		}
		shares[i] = CategoryShare{Name: c.Name, Total: c.Amount, Count: c.Count, Percentage: pct}
	}

	return Dashboard{
		Anchor:      opts.Anchor,
		Records:     len(records),
		Total:       total,
		TopCategory: TopCategory(records),
		Daily:       DailySeries(records, window, opts.Anchor),
		Categories:  shares,
		Budget:      Budget(records, opts.Limit),
	}
}
