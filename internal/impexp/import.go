package impexp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/PaesslerAG/jsonpath"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/records"
	"fintrack/internal/validate"
)

// ImportError pins an import failure to an element. Index is -1 when the
// document as a whole is unusable.
type ImportError struct {
	Index  int
	Field  string
	Reason string
}

func (e *ImportError) Error() string {
	if e.Index < 0 {
		return "import: " + e.Reason
	}
	if e.Field == "" {
		return fmt.Sprintf("import: element %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("import: element %d: %s %s", e.Index, e.Field, e.Reason)
}

func (e *ImportError) Is(target error) bool { return target == core.ErrImportFormat }

type Mode string

const (
	Replace Mode = "replace"
	Merge   Mode = "merge"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", Replace:
		return Replace, nil
	case Merge:
		return Merge, nil
	default:
		return "", fmt.Errorf("unknown import mode %q", s)
	}
}

type Options struct {
	Mode Mode
	// Path is an optional JSONPath selecting the array inside a wrapping
	// document, e.g. "$.transactions".
	Path string
}

var requiredFields = []string{"id", "description", "amount", "category", "date"}

// Parse decodes and checks a whole payload. Nothing is returned unless every
// element is usable.
func Parse(data []byte, path string) ([]core.Transaction, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ImportError{Index: -1, Reason: "payload is not valid JSON: " + err.Error()}
	}
	if path = strings.TrimSpace(path); path != "" {
		selected, err := jsonpath.Get(path, doc)
		if err != nil {
			return nil, &ImportError{Index: -1, Reason: fmt.Sprintf("path %q: %v", path, err)}
		}
		doc = selected
	}
	items, ok := doc.([]any)
	if !ok {
		return nil, &ImportError{Index: -1, Reason: "payload must be an array of transactions"}
	}

	out := make([]core.Transaction, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, &ImportError{Index: i, Reason: "element is not an object"}
		}
		for _, field := range requiredFields {
			if isBlank(obj[field]) {
				return nil, &ImportError{Index: i, Field: field, Reason: "is missing"}
			}
		}
		raw, err := json.Marshal(obj)
		if err != nil {
			return nil, &ImportError{Index: i, Reason: err.Error()}
		}
		t, ierr := decodeElement(raw)
		if ierr != nil {
			ierr.Index = i
			return nil, ierr
		}
		if _, dup := seen[t.ID]; dup {
			return nil, &ImportError{Index: i, Field: "id", Reason: fmt.Sprintf("%q is duplicated", t.ID)}
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
	}
	return out, nil
}

func isBlank(v any) bool {
	switch v := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	default:
		return false
	}
}

func decodeElement(raw []byte) (core.Transaction, *ImportError) {
	var fields struct {
		ID          any             `json:"id"`
		Description any             `json:"description"`
		Category    any             `json:"category"`
		Amount      core.Money      `json:"amount"`
		Date        json.RawMessage `json:"date"`
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		if errors.Is(err, core.ErrInvalidAmount) {
			return core.Transaction{}, &ImportError{Field: "amount", Reason: "is out of range"}
		}
		return core.Transaction{}, &ImportError{Field: "amount", Reason: "is not a number"}
	}
	for _, f := range []struct {
		name string
		v    any
	}{{"id", fields.ID}, {"description", fields.Description}, {"category", fields.Category}} {
		if _, ok := f.v.(string); !ok {
			return core.Transaction{}, &ImportError{Field: f.name, Reason: "must be a string"}
		}
	}
	if _, err := validate.DescriptionWords(fields.Description.(string)); err != nil {
		return core.Transaction{}, fieldError(err)
	}
	if _, err := validate.Category(fields.Category.(string)); err != nil {
		return core.Transaction{}, fieldError(err)
	}
	if fields.Amount.IsNegative() {
		return core.Transaction{}, &ImportError{Field: "amount", Reason: "must not be negative"}
	}
	var date core.Date
	if err := json.Unmarshal(fields.Date, &date); err != nil {
		return core.Transaction{}, &ImportError{Field: "date", Reason: "is not a YYYY-MM-DD date"}
	}

	var t core.Transaction
	if err := json.Unmarshal(raw, &t); err != nil {
		return core.Transaction{}, &ImportError{Reason: err.Error()}
	}
	return t, nil
}

func fieldError(err error) *ImportError {
	var verr *validate.Error
	if errors.As(err, &verr) {
		return &ImportError{Field: verr.Field, Reason: verr.Message}
	}
	return &ImportError{Reason: err.Error()}
}

type Result struct {
	Mode     Mode `json:"mode"`
	Imported int  `json:"imported"`
	Total    int  `json:"total"`
}

// Importer validates a payload completely before touching the store, then
// writes it in a single cycle.
type Importer struct {
	store *records.Store
}

func NewImporter(store *records.Store) *Importer {
	return &Importer{store: store}
}

func (im *Importer) Import(ctx context.Context, data []byte, opts Options) (Result, error) {
	mode := opts.Mode
	if mode == "" {
		mode = Replace
	}
	incoming, err := Parse(data, opts.Path)
	if err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	for i := range incoming {
		incoming[i] = im.store.Stamp(incoming[i])
	}

	next, err := im.store.Apply(ctx, func(current []core.Transaction) ([]core.Transaction, error) {
		if mode == Replace {
			return incoming, nil
		}
		return merge(current, incoming), nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("import transactions: %w", err)
	}

	slog.InfoContext(ctx, "Transactions imported",
		applog.FieldComponent, applog.ComponentRecords,
		applog.FieldOperation, applog.OpImport,
		"mode", string(mode),
		applog.FieldCount, len(incoming))
	return Result{Mode: mode, Imported: len(incoming), Total: len(next)}, nil
}

// merge overwrites records sharing an id and appends the rest.
func merge(current, incoming []core.Transaction) []core.Transaction {
	out := slices.Clone(current)
	pos := make(map[string]int, len(out))
	for i, t := range out {
		pos[t.ID] = i
	}
	for _, t := range incoming {
		if i, ok := pos[t.ID]; ok {
			out[i] = t
			continue
		}
		pos[t.ID] = len(out)
		out = append(out, t)
	}
	return out
}
