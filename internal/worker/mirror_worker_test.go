package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/kv"
	"fintrack/internal/records"
	"fintrack/internal/sheets/memory"
)

func seededStore(t *testing.T, store kv.Store) *records.Store {
	t.Helper()
	recs := records.NewStore(store, records.DefaultNamespace)
	_, err := recs.Add(context.Background(), core.Transaction{
		Description: "Coffee",
		Amount:      core.Money{Cents: 350},
		Category:    "Food",
		Date:        core.NewDate(2024, 3, 1),
	})
	require.NoError(t, err)
	return recs
}

type fakeConsumer struct {
	messages []*amqp.ChangeMessage
	handled  chan error
	err      error
}

func (f *fakeConsumer) ConsumeChanges(ctx context.Context, handler amqp.Handler) error {
	for _, msg := range f.messages {
		f.handled <- handler(ctx, msg)
	}
	if f.err != nil {
		return f.err
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestMirrorWorker_MirrorNow(t *testing.T) {
	recs := seededStore(t, kv.NewMemory())
	mirror := memory.New()
	w := NewMirrorWorker(recs, mirror, time.Minute)

	ref, err := w.MirrorNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "mem:A1:G2", ref)

	rows := mirror.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "Coffee", rows[1][2])

	lastRef, at := w.LastMirror()
	assert.Equal(t, ref, lastRef)
	assert.False(t, at.IsZero())
}

func TestMirrorWorker_SkipsMalformedCollection(t *testing.T) {
	store := kv.NewMemory()
	recs := seededStore(t, store)
	mirror := memory.New()
	w := NewMirrorWorker(recs, mirror, time.Minute)

	_, err := w.MirrorNow(context.Background())
	require.NoError(t, err)

	require.NoError(t, store.Set(context.Background(), recs.Key(), []byte("{not json")))

	_, err = w.MirrorNow(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrPersistenceDecode)
	assert.Len(t, mirror.Rows(), 2, "sheet keeps the last good copy")
	assert.Equal(t, 1, mirror.Count())
}

func TestMirrorWorker_MirrorError(t *testing.T) {
	recs := seededStore(t, kv.NewMemory())
	mirror := memory.New()
	mirror.FailWith(errors.New("quota exceeded"))
	w := NewMirrorWorker(recs, mirror, time.Minute)

	_, err := w.MirrorNow(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")

	ref, _ := w.LastMirror()
	assert.Empty(t, ref)
}

func TestMirrorWorker_HandleChange(t *testing.T) {
	recs := seededStore(t, kv.NewMemory())
	mirror := memory.New()
	w := NewMirrorWorker(recs, mirror, time.Minute)
	ctx := context.Background()

	err := w.HandleChange(ctx, &amqp.ChangeMessage{Namespace: "other", Op: core.OpCreated})
	require.NoError(t, err)
	assert.Equal(t, 0, mirror.Count(), "other namespaces are ignored")

	err = w.HandleChange(ctx, &amqp.ChangeMessage{Namespace: records.DefaultNamespace, Op: core.OpCreated, ID: "txn_1"})
	require.NoError(t, err)
	assert.Equal(t, 1, mirror.Count())

	err = w.HandleChange(ctx, &amqp.ChangeMessage{Op: core.OpReplaced})
	require.NoError(t, err)
	assert.Equal(t, 2, mirror.Count(), "messages without a namespace always mirror")
}

func TestMirrorWorker_RunPeriodic(t *testing.T) {
	recs := seededStore(t, kv.NewMemory())
	mirror := memory.New()
	w := NewMirrorWorker(recs, mirror, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.RunPeriodic(ctx) }()

	assert.Eventually(t, func() bool { return mirror.Count() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("RunPeriodic did not stop")
	}
}

func TestMirrorWorker_Run(t *testing.T) {
	recs := seededStore(t, kv.NewMemory())
	mirror := memory.New()
	w := NewMirrorWorker(recs, mirror, time.Hour)

	consumer := &fakeConsumer{
		messages: []*amqp.ChangeMessage{{Namespace: records.DefaultNamespace, Op: core.OpUpdated}},
		handled:  make(chan error, 1),
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, consumer) }()

	select {
	case err := <-consumer.handled:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("change message was not handled")
	}
	assert.Eventually(t, func() bool { return mirror.Count() >= 2 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestMirrorWorker_RunConsumerFailure(t *testing.T) {
	recs := seededStore(t, kv.NewMemory())
	w := NewMirrorWorker(recs, memory.New(), time.Hour)

	boom := errors.New("start consuming: access refused")
	err := w.Run(context.Background(), &fakeConsumer{err: boom, handled: make(chan error)})

	assert.ErrorIs(t, err, boom)
}

func TestMirrorWorker_RunWithoutConsumer(t *testing.T) {
	recs := seededStore(t, kv.NewMemory())
	mirror := memory.New()
	w := NewMirrorWorker(recs, mirror, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := w.Run(ctx, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, mirror.Count(), "startup mirror runs even without a ticker")
}
