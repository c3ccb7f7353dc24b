package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/aggregate"
	"fintrack/internal/core"
	"fintrack/internal/impexp"
	"fintrack/internal/kv"
	"fintrack/internal/search"
	"fintrack/internal/validate"
)

func newTestLedger(t *testing.T) (*Ledger, *kv.Memory) {
	t.Helper()
	mem := kv.NewMemory()
	now := func() time.Time { return time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC) }
	return NewLedger(mem, LedgerConfig{Namespace: "finance", Now: now}), mem
}

func mustCreate(t *testing.T, l *Ledger, desc, amount, category, date string) core.Transaction {
	t.Helper()
	tx, err := l.Create(context.Background(), validate.Raw{Description: desc, Amount: amount, Category: category, Date: date})
	require.NoError(t, err)
	return tx
}

func TestLedgerCreate(t *testing.T) {
	l, _ := newTestLedger(t)
	tx := mustCreate(t, l, "Lunch", "12.50", "Food", "2024-03-10")
	assert.True(t, strings.HasPrefix(tx.ID, "txn_"))
	assert.Equal(t, int64(1250), tx.Amount.Cents)

	_, err := l.Create(context.Background(), validate.Raw{Description: "the the", Amount: "1", Category: "Food", Date: "2024-03-10"})
	var verr *validate.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, validate.DuplicateWord, verr.Kind)

	recs, err := l.Records(context.Background())
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestLedgerEditAndRemove(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	tx := mustCreate(t, l, "Lunch", "12.50", "Food", "2024-03-10")

	category := "Eating Out"
	edited, err := l.Edit(ctx, tx.ID, validate.RawPatch{Category: &category})
	require.NoError(t, err)
	assert.Equal(t, "Eating Out", edited.Category)
	assert.Equal(t, tx.Description, edited.Description)

	bad := "12.345"
	_, err = l.Edit(ctx, tx.ID, validate.RawPatch{Amount: &bad})
	var verr *validate.Error
	require.ErrorAs(t, err, &verr)

	_, err = l.Edit(ctx, "missing", validate.RawPatch{Category: &category})
	assert.ErrorIs(t, err, core.ErrNotFound)

	removed, err := l.Remove(ctx, tx.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = l.Remove(ctx, tx.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = l.Get(ctx, tx.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestLedgerList(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	mustCreate(t, l, "Morning coffee", "3.50", "Food", "2024-01-09")
	mustCreate(t, l, "Bus ticket", "12", "Transport", "2024-01-10")
	mustCreate(t, l, "Iced tea", "2.25", "Food", "2024-01-11")

	res, err := l.List(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, res.Rows, 3)
	assert.Equal(t, "Iced tea", res.Rows[0].Description, "newest first")
	assert.Equal(t, 3, res.Total)

	res, err = l.List(ctx, Query{Search: "co"})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "Morning <mark>co</mark>ffee", res.Rows[0].Highlighted)

	res, err = l.List(ctx, Query{Search: "(", Filters: search.Filters{Category: "Food"}})
	require.NoError(t, err)
	assert.NotEmpty(t, res.PatternError)
	assert.Len(t, res.Rows, 2)

	res, err = l.List(ctx, Query{Tag: "beverage"})
	require.NoError(t, err)
	assert.Len(t, res.Rows, 2)

	res, err = l.List(ctx, Query{Tag: "cents"})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "Iced tea", res.Rows[0].Description)

	_, err = l.List(ctx, Query{Tag: "snacks"})
	assert.ErrorIs(t, err, ErrUnknownTag)
}

func TestLedgerListSurvivesCorruptCollection(t *testing.T) {
	ctx := context.Background()
	l, mem := newTestLedger(t)
	require.NoError(t, mem.Set(ctx, "finance:transactions", []byte("{oops")))

	res, err := l.List(ctx, Query{})
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
}

func TestLedgerDashboardAndBudget(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	mustCreate(t, l, "Groceries", "70", "Food", "2024-03-10")
	mustCreate(t, l, "Rent share", "50", "Housing", "2024-03-08")

	st, err := l.Budget(ctx)
	require.NoError(t, err)
	assert.Equal(t, aggregate.NoLimitSet, st.State)

	_, err = l.SetBudget(ctx, "0")
	assert.ErrorIs(t, err, core.ErrInvalidBudget)
	_, err = l.SetBudget(ctx, "abc")
	var verr *validate.Error
	assert.ErrorAs(t, err, &verr)

	limit, err := l.SetBudget(ctx, "100")
	require.NoError(t, err)
	assert.Equal(t, int64(10000), limit.Cents)

	d, err := l.Dashboard(ctx, core.Date{})
	require.NoError(t, err)
	assert.Equal(t, core.NewDate(2024, 3, 10), d.Anchor)
	assert.Equal(t, 2, d.Records)
	assert.Equal(t, int64(12000), d.Total.Cents)
	assert.Equal(t, aggregate.OverBudget, d.Budget.State)
	assert.Equal(t, int64(-2000), d.Budget.Remaining.Cents)
	assert.Equal(t, "3/10", d.Daily[len(d.Daily)-1].Label)
	assert.Equal(t, int64(7000), d.Daily[len(d.Daily)-1].Total.Cents)

	require.NoError(t, l.ClearBudget(ctx))
	st, err = l.Budget(ctx)
	require.NoError(t, err)
	assert.Equal(t, aggregate.NoLimitSet, st.State)
}

func TestLedgerConvertAndSettings(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	c, err := l.Convert(ctx, decimal.NewFromInt(10000), "rwf", "usd")
	require.NoError(t, err)
	assert.Equal(t, "USD", c.To)
	assert.Equal(t, "$7.70", c.Formatted)

	_, err = l.Convert(ctx, decimal.NewFromInt(1), "GBP", "USD")
	assert.ErrorIs(t, err, core.ErrUnknownCurrency)

	s, err := l.SetRate(ctx, "gbp", 0.0006)
	require.NoError(t, err)
	assert.Equal(t, 0.0006, s.Rates["GBP"])
	_, err = l.Convert(ctx, decimal.NewFromInt(1), "GBP", "USD")
	require.NoError(t, err)

	_, err = l.SetRate(ctx, "JPY", -1)
	assert.ErrorIs(t, err, core.ErrInvalidRate)

	s, err = l.SetBase(ctx, "usd")
	require.NoError(t, err)
	assert.Equal(t, "USD", s.BaseCurrency)
	got, err := l.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestLedgerImportExport(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	mustCreate(t, l, "Lunch", "12.50", "Food", "2024-03-10")

	var buf bytes.Buffer
	require.NoError(t, l.ExportJSON(ctx, &buf))
	exported := buf.Bytes()

	other, _ := newTestLedger(t)
	res, err := other.Import(ctx, exported, impexp.Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)

	a, _ := l.Records(ctx)
	b, _ := other.Records(ctx)
	assert.Equal(t, a, b)

	buf.Reset()
	require.NoError(t, other.ExportCSV(ctx, &buf))
	lines := strings.Split(buf.String(), "\n")
	assert.Len(t, lines, 2)

	_, err = other.Import(ctx, []byte(`[{"id":"x"}]`), impexp.Options{})
	assert.True(t, errors.Is(err, core.ErrImportFormat))
	b2, _ := other.Records(ctx)
	assert.Equal(t, b, b2)
}
