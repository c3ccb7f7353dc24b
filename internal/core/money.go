// Package core provides the transaction model shared by every component.
//
// Amounts are held as integer cents so that sums and equality checks are
// exact. JSON encodes them as plain numbers (12.5, 0, 1234.56).
package core

import (
	"bytes"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

type Money struct {
	Cents int64
}

var (
	maxCents = decimal.NewFromInt(math.MaxInt64)
	minCents = decimal.NewFromInt(math.MinInt64)
)

// centsOf converts d to cents, failing when the result does not fit an
// int64.
func centsOf(d decimal.Decimal) (int64, error) {
	c := d.Shift(2)
	if c.GreaterThan(maxCents) || c.LessThan(minCents) {
		return 0, fmt.Errorf("%w: %s is out of range", ErrInvalidAmount, d.String())
	}
	return c.IntPart(), nil
}

// MoneyFromDecimal converts d to cents. It fails when d carries more than
// two decimal places or is too large to hold.
func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	if !d.Equal(d.Round(2)) {
		return Money{}, ErrInvalidAmount
	}
	cents, err := centsOf(d)
	if err != nil {
		return Money{}, err
	}
	return Money{Cents: cents}, nil
}

// ParseMoney parses a plain decimal string such as "12", "12.5" or "0.07".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return MoneyFromDecimal(d)
}

func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String renders the shortest form, matching how a JSON number prints.
func (m Money) String() string {
	return m.Decimal().String()
}

// Fixed renders exactly two decimals for display.
func (m Money) Fixed() string {
	return m.Decimal().StringFixed(2)
}

func (m Money) Add(n Money) Money { return Money{Cents: m.Cents + n.Cents} }
func (m Money) Sub(n Money) Money { return Money{Cents: m.Cents - n.Cents} }
func (m Money) IsZero() bool      { return m.Cents == 0 }
func (m Money) IsNegative() bool  { return m.Cents < 0 }

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string. Values with more
// than two decimals are rounded half-up, so legacy data still loads.
func (m *Money) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) || len(b) == 0 {
		return fmt.Errorf("%w: null", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(strings.Trim(string(b), `"`))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, b)
	}
	cents, err := centsOf(d.Round(2))
	if err != nil {
		return err
	}
	m.Cents = cents
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
