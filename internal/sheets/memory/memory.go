package memory

import (
	"context"
	"fmt"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/sheets"
)

// Store is an in-process Mirror used by tests and local runs without a
// spreadsheet.
type Store struct {
	mu    sync.Mutex
	rows  [][]any
	count int
	err   error
}

var _ sheets.Mirror = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// FailWith makes every following Mirror call return err. nil restores normal behaviour.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Mirror keeps the rendered rows and returns a synthetic range reference.
func (s *Store) Mirror(ctx context.Context, records []core.Transaction) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.rows = sheets.Rows(records)
	s.count++
	return fmt.Sprintf("mem:A1:G%d", len(s.rows)), nil
}

// Rows returns a copy of the last mirrored rows, header included.
func (s *Store) Rows() [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]any, len(s.rows))
	for i, r := range s.rows {
		out[i] = append([]any(nil), r...)
	}
	return out
}

// Count is the number of successful mirrors.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}
