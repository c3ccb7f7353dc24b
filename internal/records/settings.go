package records

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/kv"
	applog "fintrack/internal/log"
)

// SettingsStore persists the currency settings blob.
type SettingsStore struct {
	kv        kv.Store
	namespace string
}

func NewSettingsStore(store kv.Store, namespace string) *SettingsStore {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &SettingsStore{kv: store, namespace: namespace}
}

func (s *SettingsStore) Key() string {
	return s.namespace + ":settings"
}

// Load returns the stored settings, or the defaults when nothing usable is
// stored. Only store I/O failures are returned as errors.
func (s *SettingsStore) Load(ctx context.Context) (core.Settings, error) {
	data, ok, err := s.kv.Get(ctx, s.Key())
	if err != nil {
		return core.Settings{}, fmt.Errorf("read settings: %w", err)
	}
	if !ok {
		return core.DefaultSettings(), nil
	}
	var settings core.Settings
	if err := json.Unmarshal(data, &settings); err != nil || settings.BaseCurrency == "" {
		slog.WarnContext(ctx, "Stored settings are malformed, using defaults",
			applog.FieldComponent, applog.ComponentRecords,
			applog.FieldKey, s.Key(),
			applog.FieldError, err)
		return core.DefaultSettings(), nil
	}
	if settings.Rates == nil {
		settings.Rates = map[string]float64{}
	}
	return settings, nil
}

// Save replaces the stored settings wholesale.
func (s *SettingsStore) Save(ctx context.Context, settings core.Settings) error {
	settings.BaseCurrency = normalizeCode(settings.BaseCurrency)
	if settings.Rates != nil {
		rates := make(map[string]float64, len(settings.Rates))
		for code, rate := range settings.Rates {
			code = normalizeCode(code)
			if _, dup := rates[code]; dup {
				return fmt.Errorf("save settings: rate for %s given twice", code)
			}
			rates[code] = rate
		}
		settings.Rates = rates
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := s.kv.Set(ctx, s.Key(), data); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// BudgetStore persists the optional spending limit, independent of the
// transaction collection.
type BudgetStore struct {
	kv        kv.Store
	namespace string
}

func NewBudgetStore(store kv.Store, namespace string) *BudgetStore {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &BudgetStore{kv: store, namespace: namespace}
}

func (b *BudgetStore) Key() string {
	return b.namespace + ":budgetLimit"
}

// Limit returns the stored limit. ok is false when none is set or the stored
// value is not a positive number.
func (b *BudgetStore) Limit(ctx context.Context) (core.Money, bool, error) {
	data, ok, err := b.kv.Get(ctx, b.Key())
	if err != nil {
		return core.Money{}, false, fmt.Errorf("read budget: %w", err)
	}
	if !ok {
		return core.Money{}, false, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(string(data)))
	var limit core.Money
	if err == nil {
		limit, err = core.MoneyFromDecimal(d.Round(2))
	}
	if err != nil || limit.Cents <= 0 {
		slog.WarnContext(ctx, "Stored budget limit is malformed, ignoring it",
			applog.FieldComponent, applog.ComponentRecords,
			applog.FieldKey, b.Key())
		return core.Money{}, false, nil
	}
	return limit, true, nil
}

func (b *BudgetStore) Set(ctx context.Context, limit core.Money) error {
	if limit.Cents <= 0 {
		return core.ErrInvalidBudget
	}
	if err := b.kv.Set(ctx, b.Key(), []byte(limit.String())); err != nil {
		return fmt.Errorf("write budget: %w", err)
	}
	return nil
}

func (b *BudgetStore) Clear(ctx context.Context) error {
	if err := b.kv.Delete(ctx, b.Key()); err != nil {
		return fmt.Errorf("clear budget: %w", err)
	}
	return nil
}
