package report

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/aggregate"
	"fintrack/internal/core"
	"fintrack/internal/services"
)

func sampleDashboard() aggregate.Dashboard {
	records := []core.Transaction{
		{ID: "txn_1", Description: "Lunch", Amount: core.Money{Cents: 1250}, Category: "Food", Date: core.NewDate(2024, 3, 10)},
		{ID: "txn_2", Description: "Rent", Amount: core.Money{Cents: 40000}, Category: "Housing", Date: core.NewDate(2024, 3, 9)},
	}
	limit := core.Money{Cents: 30000}
	return aggregate.Summarize(records, aggregate.Options{Anchor: core.NewDate(2024, 3, 10), Limit: &limit})
}

func TestSummary(t *testing.T) {
	md, err := Summary(sampleDashboard())
	require.NoError(t, err)

	assert.Contains(t, md, "# Spending Summary on 2024-03-10")
	assert.Contains(t, md, "Total spent: **412.50** across 2 transactions.")
	assert.Contains(t, md, "Top category: Housing")
	assert.Contains(t, md, "Over budget: spent 412.50 of 300.00")
	assert.Contains(t, md, "112.50 over.")
	assert.Contains(t, md, "| 3/9 | 400.00 |")
	assert.Contains(t, md, "| Housing | 400.00 | 1 | 97.0% |")
}

func TestSummaryEmpty(t *testing.T) {
	md, err := Summary(aggregate.Summarize(nil, aggregate.Options{Anchor: core.NewDate(2024, 3, 10)}))
	require.NoError(t, err)
	assert.Contains(t, md, "across 0 transactions.")
	assert.Contains(t, md, "Top category: -")
	assert.Contains(t, md, "No budget limit set.")
	assert.Contains(t, md, "No transactions yet.")
}

func TestBudgetLineUnder(t *testing.T) {
	limit := core.Money{Cents: 50000}
	remaining := core.Money{Cents: 10000}
	pct := decimal.NewFromInt(80)
	line := BudgetLine(aggregate.BudgetStatus{
		State:      aggregate.UnderBudget,
		Spent:      core.Money{Cents: 40000},
		Limit:      &limit,
		Remaining:  &remaining,
		Percentage: &pct,
	})
	assert.Equal(t, "Under budget: spent 400.00 of 500.00 (80.0%), 100.00 left.", line)
}

func TestTransactions(t *testing.T) {
	res := services.ListResult{
		Total: 3,
		Rows: []services.Row{{Transaction: core.Transaction{
			ID: "txn_1", Description: "Fish | chips", Amount: core.Money{Cents: 900}, Category: "Food", Date: core.NewDate(2024, 3, 10),
		}}},
		PatternError: "invalid pattern",
	}
	md, err := Transactions(res)
	require.NoError(t, err)
	assert.Contains(t, md, "Showing 1 of 3.")
	assert.Contains(t, md, "Search pattern ignored: invalid pattern")
	assert.Contains(t, md, `| 2024-03-10 | Fish \| chips | Food | 9.00 | `+"`txn_1`"+` |`)

	md, err = Transactions(services.ListResult{})
	require.NoError(t, err)
	assert.Contains(t, md, "Nothing matches.")
}

func TestHTML(t *testing.T) {
	md, err := Summary(sampleDashboard())
	require.NoError(t, err)

	html, err := HTML(md)
	require.NoError(t, err)
	assert.Contains(t, html, "<h1>Spending Summary on 2024-03-10</h1>")
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<strong>412.50</strong>")

	html, err = HTML("<script>alert(1)</script>")
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}

func TestTerminal(t *testing.T) {
	out, err := Terminal("# Title\n\nSpent **12.50**.", StyleNoTTY, 40)
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "12.50")
	assert.False(t, strings.Contains(out, "**"))
}
