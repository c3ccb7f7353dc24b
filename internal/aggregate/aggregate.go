// Package aggregate computes dashboard figures over the full collection.
package aggregate

import (
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// NoCategory is reported by TopCategory for an empty collection.
const NoCategory = "N/A"

type BudgetState string

const (
	UnderBudget BudgetState = "UnderBudget"
	OverBudget  BudgetState = "OverBudget"
	NoLimitSet  BudgetState = "NoLimitSet"
)

type DayTotal struct {
	Date  core.Date  `json:"date"`
	Label string     `json:"label"`
	Total core.Money `json:"total"`
}

// BudgetStatus compares spending against a limit. Limit, Remaining and
// Percentage are only set when State is not NoLimitSet.
type BudgetStatus struct {
	State      BudgetState      `json:"state"`
	Spent      core.Money       `json:"spent"`
	Limit      *core.Money      `json:"limit,omitempty"`
	Remaining  *core.Money      `json:"remaining,omitempty"`
	Percentage *decimal.Decimal `json:"percentage,omitempty"`
}

func Total(records []core.Transaction) core.Money {
	var sum core.Money
	for _, t := range records {
		sum = sum.Add(t.Amount)
	}
	return sum
}

// DailySeries returns one entry per day for the windowDays days ending at
// anchor, oldest first. Days without records are kept with a zero total.
func DailySeries(records []core.Transaction, windowDays int, anchor core.Date) []DayTotal {
	if windowDays <= 0 {
		return []DayTotal{}
	}
	start := anchor.AddDays(-(windowDays - 1))
	series := make([]DayTotal, windowDays)
	index := make(map[string]int, windowDays)
	for i := range series {
		d := start.AddDays(i)
		series[i] = DayTotal{Date: d, Label: d.Label()}
		index[d.String()] = i
	}
	for _, t := range records {
		if i, ok := index[t.Date.String()]; ok {
			series[i].Total = series[i].Total.Add(t.Amount)
		}
	}
	return series
}

// CategoryTotals sums amounts per category in order of first appearance.
func CategoryTotals(records []core.Transaction) []core.CategoryAmount {
	index := make(map[string]int)
	var out []core.CategoryAmount
	for _, t := range records {
		i, ok := index[t.Category]
		if !ok {
			i = len(out)
			index[t.Category] = i
			out = append(out, core.CategoryAmount{Name: t.Category})
		}
		out[i].Amount = out[i].Amount.Add(t.Amount)
		out[i].Count++
	}
	if out == nil {
		return []core.CategoryAmount{}
	}
	return out
}

// TopCategory is the category with the most records. On a tie the one seen
// first wins.
func TopCategory(records []core.Transaction) string {
	top, best := NoCategory, 0
	for _, c := range CategoryTotals(records) {
		if c.Count > best {
			top, best = c.Name, c.Count
		}
	}
	return top
}

// Budget classifies total spending against limit. A nil or non-positive
// limit yields NoLimitSet.
func Budget(records []core.Transaction, limit *core.Money) BudgetStatus {
	spent := Total(records)
	if limit == nil || limit.Cents <= 0 {
		return BudgetStatus{State: NoLimitSet, Spent: spent}
	}
	remaining := limit.Sub(spent)
	pct := spent.Decimal().Mul(decimal.NewFromInt(100)).Div(limit.Decimal())
	lim := *limit

	state := UnderBudget
	if remaining.IsNegative() {
		state = OverBudget
	}
	return BudgetStatus{
		State:      state,
		Spent:      spent,
		Limit:      &lim,
		Remaining:  &remaining,
		Percentage: &pct,
	}
}
