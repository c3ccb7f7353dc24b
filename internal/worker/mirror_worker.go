package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/records"
	"fintrack/internal/sheets"
)

// Source is where the worker reads the collection from.
type Source interface {
	Load(ctx context.Context) records.LoadResult
	Namespace() string
}

// Consumer delivers change messages until ctx is done.
type Consumer interface {
	ConsumeChanges(ctx context.Context, handler amqp.Handler) error
}

// MirrorWorker keeps a spreadsheet tab in step with the stored collection.
// It only ever writes to the sheet.
type MirrorWorker struct {
	source   Source
	mirror   sheets.Mirror
	interval time.Duration

	mu       sync.Mutex
	lastRef  string
	lastSync time.Time
}

func NewMirrorWorker(source Source, mirror sheets.Mirror, interval time.Duration) *MirrorWorker {
	return &MirrorWorker{
		source:   source,
		mirror:   mirror,
		interval: interval,
	}
}

// MirrorNow rewrites the sheet with the current collection. A malformed
// stored collection is not mirrored so the sheet keeps the last good copy.
func (w *MirrorWorker) MirrorNow(ctx context.Context) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	res := w.source.Load(ctx)
	if res.Err != nil {
		if errors.Is(res.Err, core.ErrPersistenceDecode) {
			slog.WarnContext(ctx, "Skipping mirror of malformed collection",
				applog.FieldComponent, applog.ComponentWorker,
				applog.FieldError, res.Err)
		}
		return "", fmt.Errorf("load collection: %w", res.Err)
	}

	start := time.Now()
	ref, err := w.mirror.Mirror(ctx, res.Records)
	if err != nil {
		return "", fmt.Errorf("mirror collection: %w", err)
	}
	w.lastRef = ref
	w.lastSync = time.Now()

	slog.InfoContext(ctx, "Collection mirrored",
		applog.FieldComponent, applog.ComponentWorker,
		applog.FieldOperation, applog.OpMirror,
		applog.FieldCount, len(res.Records),
		applog.FieldDuration, time.Since(start).Milliseconds(),
		"ref", ref)
	return ref, nil
}

// LastMirror reports the range written by the last successful mirror.
func (w *MirrorWorker) LastMirror() (ref string, at time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastRef, w.lastSync
}

// HandleChange mirrors after a change event. Events for another namespace
// are acknowledged without work.
func (w *MirrorWorker) HandleChange(ctx context.Context, msg *amqp.ChangeMessage) error {
	if msg.Namespace != "" && msg.Namespace != w.source.Namespace() {
		slog.DebugContext(ctx, "Ignoring change for other namespace",
			applog.FieldComponent, applog.ComponentWorker,
			"namespace", msg.Namespace)
		return nil
	}

	slog.InfoContext(ctx, "Processing change message",
		applog.FieldComponent, applog.ComponentWorker,
		applog.FieldOperation, string(msg.Op),
		applog.FieldTxnID, msg.ID,
		applog.FieldCount, msg.Count)

	_, err := w.MirrorNow(ctx)
	return err
}

// RunPeriodic mirrors once at startup and then on every tick. Failures are
// logged and retried on the next tick.
func (w *MirrorWorker) RunPeriodic(ctx context.Context) error {
	w.mirrorAndLog(ctx, "startup")

	if w.interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.mirrorAndLog(ctx, "periodic")
		}
	}
}

func (w *MirrorWorker) mirrorAndLog(ctx context.Context, trigger string) {
	if _, err := w.MirrorNow(ctx); err != nil && ctx.Err() == nil {
		slog.ErrorContext(ctx, "Mirror failed",
			applog.FieldComponent, applog.ComponentWorker,
			applog.FieldError, err,
			"trigger", trigger)
	}
}

// Run drives the periodic mirror and, when consumer is not nil, the change
// consumer. It returns nil once ctx is cancelled.
func (w *MirrorWorker) Run(ctx context.Context, consumer Consumer) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return w.RunPeriodic(ctx)
	})

	if consumer != nil {
		g.Go(func() error {
			return consumer.ConsumeChanges(ctx, w.HandleChange)
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
