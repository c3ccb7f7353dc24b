package core

import (
	"errors"
	"maps"
	"strings"
	"time"
)

const (
	OpCreated  ChangeOp = "created"
	OpUpdated  ChangeOp = "updated"
	OpDeleted  ChangeOp = "deleted"
	OpReplaced ChangeOp = "replaced"
)

type (
	ChangeOp string

	// Transaction is one spending entry of the persisted collection.
	Transaction struct {
		ID          string    `json:"id"`
		Description string    `json:"description"`
		Amount      Money     `json:"amount"`
		Category    string    `json:"category"`
		Date        Date      `json:"date"`
		CreatedAt   time.Time `json:"createdAt"`
		UpdatedAt   time.Time `json:"updatedAt"`
	}

	// Settings holds the base currency and the exchange rates expressed as
	// target units per one base unit. The base currency itself is implicit.
	Settings struct {
		BaseCurrency string             `json:"baseCurrency"`
		Rates        map[string]float64 `json:"rates"`
	}

	// Change describes a committed mutation of the collection.
	Change struct {
		Op    ChangeOp  `json:"op"`
		ID    string    `json:"id,omitempty"`
		Count int       `json:"count"`
		At    time.Time `json:"at"`
	}
)

var (
	ErrPersistenceDecode = errors.New("persistence decode")
	ErrImportFormat      = errors.New("import format")
	ErrPattern           = errors.New("invalid pattern")
	ErrUnknownCurrency   = errors.New("unknown currency")
	ErrInvalidRate       = errors.New("invalid exchange rate")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidBudget     = errors.New("budget limit must be positive")
	ErrNotFound          = errors.New("transaction not found")
)

// DefaultSettings returns the settings used when none are stored.
func DefaultSettings() Settings {
	return Settings{
		BaseCurrency: "RWF",
		Rates: map[string]float64{
			"USD": 0.00077,
			"EUR": 0.00071,
		},
	}
}

// Clone returns a deep copy so callers can edit rates freely.
func (s Settings) Clone() Settings {
	return Settings{BaseCurrency: s.BaseCurrency, Rates: maps.Clone(s.Rates)}
}

func (s Settings) Validate() error {
	if strings.TrimSpace(s.BaseCurrency) == "" {
		return errors.New("base currency cannot be empty")
	}
	for code, rate := range s.Rates {
		if strings.TrimSpace(code) == "" {
			return errors.New("currency code cannot be empty")
		}
		if rate <= 0 {
			return ErrInvalidRate
		}
	}
	return nil
}

// Currencies lists the base currency followed by every rated currency.
func (s Settings) Currencies() []string {
	out := []string{s.BaseCurrency}
	for _, code := range sortedKeys(s.Rates) {
		if code != s.BaseCurrency {
			out = append(out, code)
		}
	}
	return out
}
