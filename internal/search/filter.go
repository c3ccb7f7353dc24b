package search

import (
	"fmt"
	"slices"
	"strings"

	"fintrack/internal/core"
)

// Filters are field-scoped constraints; zero-valued fields are inactive.
type Filters struct {
	Description string
	From        core.Date
	To          core.Date
	Amount      *core.Money
	Category    string
}

func (f Filters) IsEmpty() bool {
	return f.Description == "" && f.From.IsZero() && f.To.IsZero() && f.Amount == nil && f.Category == ""
}

// ParseFilters builds Filters from text inputs, ignoring blank ones.
func ParseFilters(description, from, to, amount, category string) (Filters, error) {
	f := Filters{
		Description: strings.TrimSpace(description),
		Category:    strings.TrimSpace(category),
	}
	if from = strings.TrimSpace(from); from != "" {
		d, err := core.ParseDate(from)
		if err != nil {
			return Filters{}, fmt.Errorf("from: %w", err)
		}
		f.From = d
	}
	if to = strings.TrimSpace(to); to != "" {
		d, err := core.ParseDate(to)
		if err != nil {
			return Filters{}, fmt.Errorf("to: %w", err)
		}
		f.To = d
	}
	if amount = strings.TrimSpace(amount); amount != "" {
		m, err := core.ParseMoney(amount)
		if err != nil {
			return Filters{}, fmt.Errorf("amount: %w", err)
		}
		f.Amount = &m
	}
	return f, nil
}

func (f Filters) match(t core.Transaction) bool {
	if f.Description != "" && !strings.Contains(strings.ToLower(t.Description), strings.ToLower(f.Description)) {
		return false
	}
	if !f.From.IsZero() && t.Date.Compare(f.From) < 0 {
		return false
	}
	if !f.To.IsZero() && t.Date.Compare(f.To) > 0 {
		return false
	}
	if f.Amount != nil && t.Amount != *f.Amount {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	return true
}

// Apply keeps the records satisfying every active filter. With no active
// filter the input slice itself is returned.
func Apply(records []core.Transaction, f Filters) []core.Transaction {
	if f.IsEmpty() {
		return records
	}
	out := make([]core.Transaction, 0, len(records))
	for _, t := range records {
		if f.match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Records keeps those whose description, category or amount matches
// patternText, ignoring case. Blank or invalid patterns keep everything.
func Records(records []core.Transaction, patternText string) []core.Transaction {
	p, err := Compile(patternText, false)
	if err != nil || p == nil {
		return records
	}
	return Match(records, p)
}

// Match is Records for an already compiled pattern.
func Match(records []core.Transaction, p *Pattern) []core.Transaction {
	if p == nil {
		return records
	}
	out := make([]core.Transaction, 0, len(records))
	for _, t := range records {
		if p.MatchString(t.Description) || p.MatchString(t.Category) || p.MatchString(t.Amount.String()) {
			out = append(out, t)
		}
	}
	return out
}

// SortByDateDesc returns a copy ordered newest day first. Records on the
// same day keep their relative order.
func SortByDateDesc(records []core.Transaction) []core.Transaction {
	out := slices.Clone(records)
	slices.SortStableFunc(out, func(a, b core.Transaction) int {
		return b.Date.Compare(a.Date)
	})
	return out
}
