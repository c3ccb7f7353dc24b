// Package records owns the persisted transaction collection. Every mutation
// is one read-modify-write of the whole collection under a single key.
package records

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/kv"
	applog "fintrack/internal/log"
)

const DefaultNamespace = "finance"

// Notifier is told about every committed change.
type Notifier interface {
	Notify(ctx context.Context, change core.Change) error
}

// LoadResult is the outcome of reading the collection. A malformed blob
// yields empty Records and an Err wrapping core.ErrPersistenceDecode.
type LoadResult struct {
	Records []core.Transaction
	Err     error
}

// Patch holds replacement values; nil fields are kept.
type Patch struct {
	Description *string
	Amount      *core.Money
	Date        *core.Date
	Category    *string
}

type Store struct {
	kv        kv.Store
	namespace string
	notifier  Notifier
	now       func() time.Time
	newID     func() string
	mu        sync.Mutex
}

type Option func(*Store)

func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

func NewStore(store kv.Store, namespace string, opts ...Option) *Store {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	s := &Store{
		kv:        store,
		namespace: namespace,
		now:       time.Now,
		newID:     randomID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func randomID() string {
	return "txn_" + uuid.NewString()[:8]
}

// Key is the storage key of the collection, e.g. "finance:transactions".
func (s *Store) Key() string {
	return s.namespace + ":transactions"
}

func (s *Store) Namespace() string {
	return s.namespace
}

func (s *Store) stamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// Load reads the collection. Store I/O failures are returned in Err with
// empty Records, the same as decode failures.
func (s *Store) Load(ctx context.Context) LoadResult {
	res, err := s.read(ctx)
	if err != nil {
		return LoadResult{Records: []core.Transaction{}, Err: err}
	}
	return res
}

// read keeps a recoverable decode failure inside the result and returns
// store I/O failures as err.
func (s *Store) read(ctx context.Context) (LoadResult, error) {
	data, ok, err := s.kv.Get(ctx, s.Key())
	if err != nil {
		return LoadResult{}, fmt.Errorf("read collection: %w", err)
	}
	if !ok {
		return LoadResult{Records: []core.Transaction{}}, nil
	}
	var recs []core.Transaction
	if err := json.Unmarshal(data, &recs); err != nil {
		decodeErr := fmt.Errorf("%w: %s: %v", core.ErrPersistenceDecode, s.Key(), err)
		slog.WarnContext(ctx, "Stored collection is malformed, using empty collection",
			applog.FieldComponent, applog.ComponentRecords,
			applog.FieldKey, s.Key(),
			applog.FieldError, err)
		return LoadResult{Records: []core.Transaction{}, Err: decodeErr}, nil
	}
	if recs == nil {
		recs = []core.Transaction{}
	}
	return LoadResult{Records: recs}, nil
}

func (s *Store) write(ctx context.Context, recs []core.Transaction) error {
	if recs == nil {
		recs = []core.Transaction{}
	}
	data, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("encode collection: %w", err)
	}
	if err := s.kv.Set(ctx, s.Key(), data); err != nil {
		return fmt.Errorf("write collection: %w", err)
	}
	return nil
}

func (s *Store) notify(ctx context.Context, op core.ChangeOp, id string, count int) {
	if s.notifier == nil {
		return
	}
	change := core.Change{Op: op, ID: id, Count: count, At: s.stamp()}
	if err := s.notifier.Notify(ctx, change); err != nil {
		slog.WarnContext(ctx, "Change notification failed",
			applog.FieldComponent, applog.ComponentRecords,
			applog.FieldOperation, string(op),
			applog.FieldTxnID, id,
			applog.FieldError, err)
	}
}

// Save overwrites the whole collection.
func (s *Store) Save(ctx context.Context, recs []core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write(ctx, recs); err != nil {
		return err
	}
	s.notify(ctx, core.OpReplaced, "", len(recs))
	return nil
}

// Add appends t, assigning an id and timestamps when they are missing.
func (s *Store) Add(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.read(ctx)
	if err != nil {
		return core.Transaction{}, err
	}
	recs := res.Records

	if t.ID == "" {
		t.ID = s.uniqueID(recs)
	}
	t = s.Stamp(t)

	recs = append(recs, t)
	if err := s.write(ctx, recs); err != nil {
		return core.Transaction{}, err
	}
	slog.InfoContext(ctx, "Transaction added",
		applog.FieldComponent, applog.ComponentRecords,
		applog.FieldTxnID, t.ID,
		applog.FieldAmount, t.Amount.String(),
		applog.FieldCategory, t.Category)
	s.notify(ctx, core.OpCreated, t.ID, len(recs))
	return t, nil
}

// Stamp fills in missing createdAt and updatedAt with the current time.
func (s *Store) Stamp(t core.Transaction) core.Transaction {
	now := s.stamp()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}
	return t
}

func (s *Store) uniqueID(recs []core.Transaction) string {
	for {
		id := s.newID()
		if !slices.ContainsFunc(recs, func(r core.Transaction) bool { return r.ID == id }) {
			return id
		}
	}
}

// Update merges p into the record with the given id. found is false, and
// nothing is written, when no such record exists.
func (s *Store) Update(ctx context.Context, id string, p Patch) (core.Transaction, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.read(ctx)
	if err != nil {
		return core.Transaction{}, false, err
	}
	recs := res.Records
	i := slices.IndexFunc(recs, func(r core.Transaction) bool { return r.ID == id })
	if i < 0 {
		return core.Transaction{}, false, nil
	}

	t := recs[i]
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	t.UpdatedAt = s.stamp()
	recs[i] = t

	if err := s.write(ctx, recs); err != nil {
		return core.Transaction{}, false, err
	}
	slog.InfoContext(ctx, "Transaction updated",
		applog.FieldComponent, applog.ComponentRecords,
		applog.FieldTxnID, id)
	s.notify(ctx, core.OpUpdated, id, len(recs))
	return t, true, nil
}

// Delete removes the record if present and persists the result either way.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.read(ctx)
	if err != nil {
		return false, err
	}
	recs := res.Records
	before := len(recs)
	recs = slices.DeleteFunc(recs, func(r core.Transaction) bool { return r.ID == id })
	removed := len(recs) < before

	if err := s.write(ctx, recs); err != nil {
		return false, err
	}
	if removed {
		slog.InfoContext(ctx, "Transaction deleted",
			applog.FieldComponent, applog.ComponentRecords,
			applog.FieldTxnID, id)
		s.notify(ctx, core.OpDeleted, id, len(recs))
	}
	return removed, nil
}

// Apply runs fn over the current collection and writes its result, all in
// one cycle. fn must not keep the slice it receives. When fn fails nothing
// is written.
func (s *Store) Apply(ctx context.Context, fn func([]core.Transaction) ([]core.Transaction, error)) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	next, err := fn(res.Records)
	if err != nil {
		return nil, err
	}
	if err := s.write(ctx, next); err != nil {
		return nil, err
	}
	s.notify(ctx, core.OpReplaced, "", len(next))
	return next, nil
}
