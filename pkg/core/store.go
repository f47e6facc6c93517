package core

import (
	"context"
)

// Store defines the durable persistence layer for jobs. It is the system
// of record; implementations must be safe for concurrent use from the
// execution pool and the application's own goroutines.
type Store interface {
	// Migrate creates the jobs table.
	Migrate(ctx context.Context) error

	// Create inserts a new job in the scheduled state.
	Create(ctx context.Context, req CreateRequest) (*Job, error)

	// Get returns the job, or ErrNotFound if absent.
	Get(ctx context.Context, jobID string) (*Job, error)

	// Update applies only the supplied fields as a single atomic write,
	// never a read-then-write. Returns ErrNotFound if the row is absent.
	Update(ctx context.Context, jobID string, upd JobUpdate) (*Job, error)

	// ListByStatus returns jobs with the given status, newest first.
	ListByStatus(ctx context.Context, status JobStatus) ([]*Job, error)

	// ListAll returns every job, newest first.
	ListAll(ctx context.Context) ([]*Job, error)

	// Close releases the underlying connection pool.
	Close() error
}
