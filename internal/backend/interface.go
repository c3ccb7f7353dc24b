package backend

import (
	"context"

	"fintrack/internal/amqp"
	"fintrack/internal/kv"
	"fintrack/internal/records"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Pinger is implemented by stores that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// BackendResult is the storage and change-event wiring for one process.
type BackendResult struct {
	Store kv.Store
	// Changes is nil when AMQP is disabled or unreachable at startup.
	Changes *amqp.Client
	Cleanup CleanupFunc
}

// Notifier returns the change notifier for the record store, or nil.
func (r *BackendResult) Notifier() records.Notifier {
	if r.Changes == nil {
		return nil
	}
	return r.Changes
}

// Ready reports whether the store can serve requests.
func (r *BackendResult) Ready(ctx context.Context) error {
	if p, ok := r.Store.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close runs the cleanup function, if any.
func (r *BackendResult) Close() error {
	if r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}
