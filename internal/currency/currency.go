// Package currency converts amounts between the base currency and the
// currencies listed in the settings.
package currency

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// UnknownCurrencyError reports a code that is neither the base currency nor
// present in the rates.
type UnknownCurrencyError struct {
	Code string
}

func (e *UnknownCurrencyError) Error() string {
	return fmt.Sprintf("unknown currency %q", e.Code)
}

func (e *UnknownCurrencyError) Is(target error) bool { return target == core.ErrUnknownCurrency }

// Normalize upper-cases and trims a currency code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// rate returns the multiplier for code, or ok=false for the base currency.
func rate(code string, s core.Settings) (decimal.Decimal, bool, error) {
	if code == Normalize(s.BaseCurrency) {
		return decimal.Decimal{}, false, nil
	}
	r, found := s.Rates[code]
	if !found {
		return decimal.Decimal{}, false, &UnknownCurrencyError{Code: code}
	}
	if r <= 0 {
		return decimal.Decimal{}, false, fmt.Errorf("%w: %s=%v", core.ErrInvalidRate, code, r)
	}
	return decimal.NewFromFloat(r), true, nil
}

// Convert goes through the base currency: divide by the source rate, then
// multiply by the target rate. Rates are target units per base unit.
func Convert(amount decimal.Decimal, from, to string, s core.Settings) (decimal.Decimal, error) {
	from, to = Normalize(from), Normalize(to)
	if from == to {
		return amount, nil
	}
	fromRate, fromRated, err := rate(from, s)
	if err != nil {
		return decimal.Decimal{}, err
	}
	toRate, toRated, err := rate(to, s)
	if err != nil {
		return decimal.Decimal{}, err
	}

	inBase := amount
	if fromRated {
		inBase = amount.Div(fromRate)
	}
	if !toRated {
		return inBase, nil
	}
	return inBase.Mul(toRate), nil
}

// Format renders amount for display in the given currency, e.g. "$1,234.50".
// Codes missing from the currency table print as "1234.50 XYZ".
func Format(amount decimal.Decimal, code string) string {
	code = Normalize(code)
	cur := money.GetCurrency(code)
	if cur == nil {
		return amount.StringFixed(2) + " " + code
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return cur.Formatter().Format(minor)
}
