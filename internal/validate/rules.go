// Package validate holds the field rules applied before a transaction is
// stored. Each rule is a pure function; Transaction runs them in a fixed
// fail-fast order.
package validate

import (
	"fmt"
	"regexp"
	"strings"

	"fintrack/internal/core"
)

const (
	FieldDescription = "description"
	FieldAmount      = "amount"
	FieldDate        = "date"
	FieldCategory    = "category"
)

var (
	interiorSpaceRe = regexp.MustCompile(`\s{2,}`)
	amountRe        = regexp.MustCompile(`^(?:0|[1-9]\d*)?(?:\.\d{1,2})?$`)
	dateRe          = regexp.MustCompile(`^\d{4}-(?:0[1-9]|1[0-2])-(?:0[1-9]|[12]\d|3[01])$`)
	categoryRe      = regexp.MustCompile(`^[A-Za-z]+(?:[ -][A-Za-z]+)*$`)
	wordRe          = regexp.MustCompile(`\b\w+\b`)
	centsRe         = regexp.MustCompile(`\.\d{2}\b`)
	beverageRe      = regexp.MustCompile(`(?i)(coffee|tea|juice|soda|drink|beverage)`)
)

func hasSurroundingSpace(s string) bool {
	return strings.TrimSpace(s) != s
}

// Description returns the trimmed description.
func Description(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", newError(FieldDescription, EmptyDescription, "Description cannot be empty")
	}
	if hasSurroundingSpace(text) {
		return "", newError(FieldDescription, WhitespaceError, "Description cannot have leading or trailing spaces")
	}
	if interiorSpaceRe.MatchString(trimmed) {
		return "", newError(FieldDescription, WhitespaceError, "Description cannot have consecutive spaces")
	}
	return trimmed, nil
}

// Amount accepts a non-negative decimal with at most two fractional digits
// and no leading zeros in the integer part.
func Amount(text string) (core.Money, error) {
	if hasSurroundingSpace(text) {
		return core.Money{}, newError(FieldAmount, WhitespaceError, "Amount cannot have leading or trailing spaces")
	}
	if !amountRe.MatchString(text) || strings.Trim(text, ".") == "" {
		return core.Money{}, newError(FieldAmount, FormatError, "Amount must be a positive number with up to 2 decimals")
	}
	m, err := core.ParseMoney(text)
	if err != nil {
		return core.Money{}, newError(FieldAmount, FormatError, "Amount must be a positive number with up to 2 decimals")
	}
	return m, nil
}

// Date checks the YYYY-MM-DD shape first and calendar validity second.
func Date(text string) (core.Date, error) {
	if hasSurroundingSpace(text) {
		return core.Date{}, newError(FieldDate, WhitespaceError, "Date cannot have leading or trailing spaces")
	}
	if !dateRe.MatchString(text) {
		return core.Date{}, newError(FieldDate, FormatError, "Date must be in YYYY-MM-DD format")
	}
	d, err := core.ParseDate(text)
	if err != nil {
		return core.Date{}, newError(FieldDate, InvalidCalendarDate, "Invalid date")
	}
	return d, nil
}

func Category(text string) (string, error) {
	if hasSurroundingSpace(text) {
		return "", newError(FieldCategory, WhitespaceError, "Category cannot have leading or trailing spaces")
	}
	if !categoryRe.MatchString(text) {
		return "", newError(FieldCategory, FormatError, "Category can only contain letters, spaces, and hyphens")
	}
	return text, nil
}

// DuplicateWords reports the first word that appears a second time,
// ignoring case. Every token counts, short words included.
func DuplicateWords(text string) (string, bool) {
	seen := make(map[string]struct{})
	for _, w := range wordRe.FindAllString(strings.ToLower(text), -1) {
		if _, ok := seen[w]; ok {
			return w, true
		}
		seen[w] = struct{}{}
	}
	return "", false
}

// DescriptionWords runs Description followed by the duplicate word check.
func DescriptionWords(text string) (string, error) {
	desc, err := Description(text)
	if err != nil {
		return "", err
	}
	if word, found := DuplicateWords(desc); found {
		return "", duplicateWordError(word)
	}
	return desc, nil
}

func duplicateWordError(word string) *Error {
	return newError(FieldDescription, DuplicateWord, fmt.Sprintf("Duplicate word detected: %q", word))
}

// HasCents reports whether the amount text is written with two decimals.
func HasCents(amountText string) bool {
	return centsRe.MatchString(amountText)
}

// IsBeverage reports whether a description mentions a drink.
func IsBeverage(description string) bool {
	return beverageRe.MatchString(description)
}
