// Package jobtrack manages the lifecycle of asynchronous background
// jobs: durable state transitions, bounded concurrent execution over a
// fixed worker pool, and cancellation and failure recording. Task bodies
// are opaque; the module records their outcome, it never interprets,
// validates, or retries them.
//
// This is the main package users should import. It re-exports the public
// types from the pkg/ packages for a clean API surface.
//
// Basic usage:
//
//	cfg, _ := config.Load()
//	svc, _ := jobtrack.Open(cfg)
//	defer svc.Close()
//
//	// Recommended: wrap a task so every invocation is recorded.
//	runOCR := svc.Tracked("ocr", func(ctx context.Context) (jobtrack.Payload, error) {
//	    return jobtrack.Payload{"pages": 3}, nil
//	})
//	result, err := runOCR(ctx)
//
//	// Lower-level: explicit concurrent dispatch.
//	job, _ := svc.CreateJob(ctx, "ocr")
//	svc.StartJob(ctx, job.ID)
//	handle, _ := svc.RunJobAsync(ctx, job.ID, task)
//	result, err := handle.Wait(ctx)
//	svc.CompleteJob(ctx, job.ID, result)
package jobtrack

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/propdocs/jobtrack/pkg/config"
	"github.com/propdocs/jobtrack/pkg/coordinator"
	"github.com/propdocs/jobtrack/pkg/core"
	"github.com/propdocs/jobtrack/pkg/security"
	"github.com/propdocs/jobtrack/pkg/service"
	"github.com/propdocs/jobtrack/pkg/storage"
)

// Type aliases re-exported from pkg/ packages.
type (
	// Job is a trackable unit of asynchronous work with a durable record.
	Job = core.Job

	// JobStatus represents the current state of a job.
	JobStatus = core.JobStatus

	// Payload is the structured data stored with a job.
	Payload = core.Payload

	// CreateRequest carries the fields settable at job creation.
	CreateRequest = core.CreateRequest

	// JobUpdate is a partial update; only non-nil fields are applied.
	JobUpdate = core.JobUpdate

	// Store defines the durable persistence layer for jobs.
	Store = core.Store

	// InvalidTransitionError reports a refused status change.
	InvalidTransitionError = core.InvalidTransitionError

	// PersistenceError wraps a backend I/O or constraint failure.
	PersistenceError = core.PersistenceError

	// TaskError wraps a panic recovered from a task body on the pool.
	TaskError = core.TaskError

	// GormStore implements Store using GORM.
	GormStore = storage.GormStore

	// Coordinator dispatches tasks onto the fixed worker pool.
	Coordinator = coordinator.Coordinator

	// Handle is a runtime reference to an in-flight execution.
	Handle = coordinator.Handle

	// Task is an opaque unit of work for the execution pool.
	Task = coordinator.Task

	// Service is the job lifecycle facade.
	Service = service.Service

	// TaskFunc is a unit of work invoked in the caller's own goroutine.
	TaskFunc = service.TaskFunc

	// CreateOption sets optional fields on a new job.
	CreateOption = service.CreateOption

	// Config holds service configuration loaded from the environment.
	Config = config.Config
)

// Status constants
const (
	StatusScheduled  = core.StatusScheduled
	StatusInProgress = core.StatusInProgress
	StatusDone       = core.StatusDone
	StatusFailed     = core.StatusFailed
	StatusCancelled  = core.StatusCancelled
)

// Error variables
var (
	ErrNotFound            = core.ErrNotFound
	ErrDuplicateSubmission = core.ErrDuplicateSubmission
	ErrNotInProgress       = core.ErrNotInProgress
	ErrInvalidJobType      = core.ErrInvalidJobType
	ErrUnknownStatus       = core.ErrUnknownStatus
)

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) *GormStore {
	return storage.NewGormStore(db)
}

// NewService creates a Service over the given store.
func NewService(store Store, opts ...service.Option) *Service {
	return service.New(store, opts...)
}

// Open connects to the configured database, migrates the jobs table, and
// returns a ready Service. The caller owns its lifetime and must Close it.
func Open(cfg *Config) (*Service, error) {
	db, err := cfg.Open()
	if err != nil {
		return nil, err
	}
	store := storage.NewGormStore(db)
	if err := store.Migrate(context.Background()); err != nil {
		return nil, err
	}
	return service.New(store,
		service.WithWorkers(cfg.Workers),
		service.WithDrainTimeout(cfg.DrainTimeout),
	), nil
}

// Service option functions

// WithWorkers sets the fixed size of the execution pool.
func WithWorkers(n int) service.Option {
	return service.WithWorkers(n)
}

// WithDrainTimeout bounds the graceful drain during Close.
func WithDrainTimeout(d time.Duration) service.Option {
	return service.WithDrainTimeout(d)
}

// Job creation option functions

// WithDocument associates the job with an externally-owned document.
func WithDocument(id uuid.UUID) CreateOption {
	return service.WithDocument(id)
}

// WithProperty associates the job with an externally-owned property.
func WithProperty(id uuid.UUID) CreateOption {
	return service.WithProperty(id)
}

// WithInitialData seeds the job's result payload at creation.
func WithInitialData(data Payload) CreateOption {
	return service.WithInitialData(data)
}

// State machine helpers

// CanTransition reports whether a job may move from one status to another.
func CanTransition(from, to JobStatus) bool {
	return core.CanTransition(from, to)
}

// ValidateJobType validates a job type name.
func ValidateJobType(name string) error {
	return security.ValidateJobType(name)
}

// SanitizeErrorMessage truncates and sanitizes error messages for storage.
func SanitizeErrorMessage(msg string) string {
	return security.SanitizeErrorMessage(msg)
}
