package sheets

import (
	"context"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/impexp"
)

// Mirror is the outbound port for the one-way spreadsheet export. Mirror
// replaces the whole tab with the given records and returns a reference to
// the written range.
type Mirror interface {
	Mirror(ctx context.Context, records []core.Transaction) (ref string, err error)
}

// Header is the first row of the mirrored tab.
var Header = []any{"ID", "Date", "Description", "Amount", "Category", "Created At", "Updated At"}

// Rows renders the header and one row per record, in collection order.
func Rows(records []core.Transaction) [][]any {
	rows := make([][]any, 0, len(records)+1)
	rows = append(rows, Header)
	for _, t := range records {
		rows = append(rows, []any{
			t.ID,
			t.Date.String(),
			t.Description,
			t.Amount.Decimal().InexactFloat64(),
			t.Category,
			timestamp(t.CreatedAt),
			timestamp(t.UpdatedAt),
		})
	}
	return rows
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(impexp.TimestampLayout)
}
