package validate

import "fintrack/internal/core"

// Raw is the unvalidated form of a transaction as typed by the user.
type Raw struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Category    string `json:"category"`
}

// Input is the cleaned result of a successful validation.
type Input struct {
	Description string
	Amount      core.Money
	Date        core.Date
	Category    string
}

// RawPatch carries only the fields a caller wants to change.
type RawPatch struct {
	Description *string `json:"description,omitempty"`
	Amount      *string `json:"amount,omitempty"`
	Date        *string `json:"date,omitempty"`
	Category    *string `json:"category,omitempty"`
}

// Patch is a validated RawPatch; nil fields are left untouched.
type Patch struct {
	Description *string
	Amount      *core.Money
	Date        *core.Date
	Category    *string
}

func (p Patch) IsEmpty() bool {
	return p.Description == nil && p.Amount == nil && p.Date == nil && p.Category == nil
}

// Transaction validates description, duplicate words, amount, date and
// category in that order and stops at the first failure.
func Transaction(raw Raw) (Input, error) {
	desc, err := DescriptionWords(raw.Description)
	if err != nil {
		return Input{}, err
	}
	amount, err := Amount(raw.Amount)
	if err != nil {
		return Input{}, err
	}
	date, err := Date(raw.Date)
	if err != nil {
		return Input{}, err
	}
	category, err := Category(raw.Category)
	if err != nil {
		return Input{}, err
	}
	return Input{Description: desc, Amount: amount, Date: date, Category: category}, nil
}

// PatchFields validates only the supplied fields, in pipeline order.
func PatchFields(raw RawPatch) (Patch, error) {
	var p Patch
	if raw.Description != nil {
		desc, err := DescriptionWords(*raw.Description)
		if err != nil {
			return Patch{}, err
		}
		p.Description = &desc
	}
	if raw.Amount != nil {
		amount, err := Amount(*raw.Amount)
		if err != nil {
			return Patch{}, err
		}
		p.Amount = &amount
	}
	if raw.Date != nil {
		date, err := Date(*raw.Date)
		if err != nil {
			return Patch{}, err
		}
		p.Date = &date
	}
	if raw.Category != nil {
		category, err := Category(*raw.Category)
		if err != nil {
			return Patch{}, err
		}
		p.Category = &category
	}
	return p, nil
}
