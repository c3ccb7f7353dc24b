package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/aggregate"
	"fintrack/internal/core"
	"fintrack/internal/currency"
	"fintrack/internal/impexp"
	"fintrack/internal/kv"
	applog "fintrack/internal/log"
	"fintrack/internal/records"
	"fintrack/internal/search"
	"fintrack/internal/validate"
)

var ErrUnknownTag = errors.New("unknown tag")

// tags are the keyword views offered next to pattern search.
var tags = map[string]func(core.Transaction) bool{
	"beverage": func(t core.Transaction) bool { return validate.IsBeverage(t.Description) },
	"cents":    func(t core.Transaction) bool { return validate.HasCents(t.Amount.String()) },
}

type LedgerConfig struct {
	Namespace  string
	WindowDays int
	Notifier   records.Notifier
	Now        func() time.Time
}

// Ledger is the single entry point used by the HTTP API and the CLI.
type Ledger struct {
	store      *records.Store
	settings   *records.SettingsStore
	budget     *records.BudgetStore
	importer   *impexp.Importer
	windowDays int
	now        func() time.Time
}

func NewLedger(store kv.Store, cfg LedgerConfig) *Ledger {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	window := cfg.WindowDays
	if window <= 0 {
		window = aggregate.DefaultWindowDays
	}
	opts := []records.Option{records.WithClock(now)}
	if cfg.Notifier != nil {
		opts = append(opts, records.WithNotifier(cfg.Notifier))
	}
	recs := records.NewStore(store, cfg.Namespace, opts...)
	return &Ledger{
		store:      recs,
		settings:   records.NewSettingsStore(store, cfg.Namespace),
		budget:     records.NewBudgetStore(store, cfg.Namespace),
		importer:   impexp.NewImporter(recs),
		windowDays: window,
		now:        now,
	}
}

// Today is the current calendar day in local time.
func (l *Ledger) Today() core.Date {
	return core.DateOf(l.now())
}

// load returns the collection, treating a decode failure as empty.
func (l *Ledger) load(ctx context.Context) ([]core.Transaction, error) {
	res := l.store.Load(ctx)
	if res.Err != nil && !errors.Is(res.Err, core.ErrPersistenceDecode) {
		return nil, res.Err
	}
	return res.Records, nil
}

// Records returns the full stored collection.
func (l *Ledger) Records(ctx context.Context) ([]core.Transaction, error) {
	return l.load(ctx)
}

func (l *Ledger) Create(ctx context.Context, raw validate.Raw) (core.Transaction, error) {
	in, err := validate.Transaction(raw)
	if err != nil {
		return core.Transaction{}, err
	}
	t, err := l.store.Add(ctx, core.Transaction{
		Description: in.Description,
		Amount:      in.Amount,
		Category:    in.Category,
		Date:        in.Date,
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	return t, nil
}

func (l *Ledger) Get(ctx context.Context, id string) (core.Transaction, error) {
	recs, err := l.load(ctx)
	if err != nil {
		return core.Transaction{}, err
	}
	for _, t := range recs {
		if t.ID == id {
			return t, nil
		}
	}
	return core.Transaction{}, core.ErrNotFound
}

// Edit validates only the supplied fields and applies them.
func (l *Ledger) Edit(ctx context.Context, id string, raw validate.RawPatch) (core.Transaction, error) {
	p, err := validate.PatchFields(raw)
	if err != nil {
		return core.Transaction{}, err
	}
	t, found, err := l.store.Update(ctx, id, records.Patch(p))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("edit transaction: %w", err)
	}
	if !found {
		return core.Transaction{}, core.ErrNotFound
	}
	return t, nil
}

// Remove is idempotent; removed reports whether anything was deleted.
func (l *Ledger) Remove(ctx context.Context, id string) (bool, error) {
	removed, err := l.store.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete transaction: %w", err)
	}
	return removed, nil
}

type Query struct {
	Search        string
	CaseSensitive bool
	Filters       search.Filters
	Tag           string
}

// Row is a listed transaction plus its description with search matches
// marked up.
type Row struct {
	core.Transaction
	Highlighted string `json:"highlighted"`
}

type ListResult struct {
	Rows  []Row `json:"rows"`
	Total int   `json:"total"`
	// PatternError is set when the search text did not compile; the rows
	// are then unfiltered by it.
	PatternError string `json:"patternError,omitempty"`
}

// List sorts newest first, then applies the search pattern, the structured
// filters and the tag.
func (l *Ledger) List(ctx context.Context, q Query) (ListResult, error) {
	var tagFn func(core.Transaction) bool
	if q.Tag != "" {
		fn, ok := tags[strings.ToLower(q.Tag)]
		if !ok {
			return ListResult{}, fmt.Errorf("%w: %q", ErrUnknownTag, q.Tag)
		}
		tagFn = fn
	}

	recs, err := l.load(ctx)
	if err != nil {
		return ListResult{}, err
	}
	result := ListResult{Total: len(recs)}

	pattern, perr := search.Compile(q.Search, q.CaseSensitive)
	if perr != nil {
		result.PatternError = perr.Error()
		slog.DebugContext(ctx, "Search pattern rejected", applog.FieldComponent, applog.ComponentLedger, applog.FieldError, perr)
	}

	view := search.SortByDateDesc(recs)
	view = search.Match(view, pattern)
	view = search.Apply(view, q.Filters)

	result.Rows = make([]Row, 0, len(view))
	for _, t := range view {
		if tagFn != nil && !tagFn(t) {
			continue
		}
		result.Rows = append(result.Rows, Row{Transaction: t, Highlighted: search.Highlight(t.Description, pattern)})
	}
	return result, nil
}

// Dashboard summarizes the whole collection. A zero anchor means today.
func (l *Ledger) Dashboard(ctx context.Context, anchor core.Date) (aggregate.Dashboard, error) {
	if anchor.IsZero() {
		anchor = l.Today()
	}
	recs, err := l.load(ctx)
	if err != nil {
		return aggregate.Dashboard{}, err
	}
	limit, ok, err := l.budget.Limit(ctx)
	if err != nil {
		return aggregate.Dashboard{}, err
	}
	opts := aggregate.Options{WindowDays: l.windowDays, Anchor: anchor}
	if ok {
		opts.Limit = &limit
	}
	return aggregate.Summarize(recs, opts), nil
}

type Conversion struct {
	Amount    decimal.Decimal `json:"amount"`
	From      string          `json:"from"`
	To        string          `json:"to"`
	Result    decimal.Decimal `json:"result"`
	Formatted string          `json:"formatted"`
}

func (l *Ledger) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (Conversion, error) {
	s, err := l.settings.Load(ctx)
	if err != nil {
		return Conversion{}, err
	}
	out, err := currency.Convert(amount, from, to, s)
	if err != nil {
		return Conversion{}, err
	}
	to = currency.Normalize(to)
	return Conversion{
		Amount:    amount,
		From:      currency.Normalize(from),
		To:        to,
		Result:    out,
		Formatted: currency.Format(out, to),
	}, nil
}

func (l *Ledger) Settings(ctx context.Context) (core.Settings, error) {
	return l.settings.Load(ctx)
}

func (l *Ledger) SaveSettings(ctx context.Context, s core.Settings) error {
	return l.settings.Save(ctx, s)
}

// SetRate adds or replaces one exchange rate.
func (l *Ledger) SetRate(ctx context.Context, code string, rate float64) (core.Settings, error) {
	s, err := l.settings.Load(ctx)
	if err != nil {
		return core.Settings{}, err
	}
	s = s.Clone()
	if s.Rates == nil {
		s.Rates = map[string]float64{}
	}
	s.Rates[currency.Normalize(code)] = rate
	if err := l.settings.Save(ctx, s); err != nil {
		return core.Settings{}, err
	}
	return s, nil
}

// SetBase changes the base currency and keeps the existing rates.
func (l *Ledger) SetBase(ctx context.Context, code string) (core.Settings, error) {
	s, err := l.settings.Load(ctx)
	if err != nil {
		return core.Settings{}, err
	}
	s = s.Clone()
	s.BaseCurrency = currency.Normalize(code)
	if err := l.settings.Save(ctx, s); err != nil {
		return core.Settings{}, err
	}
	return s, nil
}

// Budget reports spending against the stored limit.
func (l *Ledger) Budget(ctx context.Context) (aggregate.BudgetStatus, error) {
	recs, err := l.load(ctx)
	if err != nil {
		return aggregate.BudgetStatus{}, err
	}
	limit, ok, err := l.budget.Limit(ctx)
	if err != nil {
		return aggregate.BudgetStatus{}, err
	}
	if !ok {
		return aggregate.Budget(recs, nil), nil
	}
	return aggregate.Budget(recs, &limit), nil
}

// SetBudget stores a positive limit written like a transaction amount.
func (l *Ledger) SetBudget(ctx context.Context, text string) (core.Money, error) {
	limit, err := validate.Amount(strings.TrimSpace(text))
	if err != nil {
		return core.Money{}, err
	}
	if err := l.budget.Set(ctx, limit); err != nil {
		return core.Money{}, err
	}
	return limit, nil
}

func (l *Ledger) ClearBudget(ctx context.Context) error {
	return l.budget.Clear(ctx)
}

func (l *Ledger) Import(ctx context.Context, data []byte, opts impexp.Options) (impexp.Result, error) {
	return l.importer.Import(ctx, data, opts)
}

func (l *Ledger) ExportCSV(ctx context.Context, w io.Writer) error {
	recs, err := l.load(ctx)
	if err != nil {
		return err
	}
	return impexp.WriteCSV(w, recs)
}

func (l *Ledger) ExportJSON(ctx context.Context, w io.Writer) error {
	recs, err := l.load(ctx)
	if err != nil {
		return err
	}
	return impexp.WriteJSON(w, recs)
}
