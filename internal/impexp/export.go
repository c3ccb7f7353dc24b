// Package impexp moves the transaction collection in and out as CSV and JSON.
package impexp

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"fintrack/internal/core"
)

// TimestampLayout matches JavaScript's Date.prototype.toISOString.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Header is the CSV column order.
var Header = []string{"id", "description", "amount", "category", "date", "createdAt", "updatedAt"}

func quote(v string) string {
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimestampLayout)
}

// CSV renders records with every field quoted. Rows are joined by "\n" with
// no trailing newline.
func CSV(records []core.Transaction) string {
	rows := make([]string, 0, len(records)+1)
	rows = append(rows, strings.Join(Header, ","))
	for _, t := range records {
		fields := []string{
			t.ID,
			t.Description,
			t.Amount.String(),
			t.Category,
			t.Date.String(),
			timestamp(t.CreatedAt),
			timestamp(t.UpdatedAt),
		}
		for i, f := range fields {
			fields[i] = quote(f)
		}
		rows = append(rows, strings.Join(fields, ","))
	}
	return strings.Join(rows, "\n")
}

func WriteCSV(w io.Writer, records []core.Transaction) error {
	if _, err := io.WriteString(w, CSV(records)); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// WriteJSON writes an indented array in the stored record shape.
func WriteJSON(w io.Writer, records []core.Transaction) error {
	if records == nil {
		records = []core.Transaction{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}
