// Package service composes the store, state machine, and execution
// coordinator into the job lifecycle facade.
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/propdocs/jobtrack/pkg/coordinator"
	"github.com/propdocs/jobtrack/pkg/core"
	"github.com/propdocs/jobtrack/pkg/security"
)

// Defaults for the execution pool and shutdown drain.
const (
	DefaultWorkers      = 5
	DefaultDrainTimeout = 30 * time.Second
)

// cancelledMessage is recorded when a job is cancelled before its work
// was claimed by a worker.
const cancelledMessage = "job cancelled before execution"

// Service is the job lifecycle facade. Every mutating operation reads
// the current row, validates the transition against the state machine,
// and only then issues a single atomic partial update; a failed check
// never writes. Construct with New and release with Close; Service is
// never a process-wide singleton.
type Service struct {
	store        core.Store
	coord        *coordinator.Coordinator
	logger       *slog.Logger
	drainTimeout time.Duration

	closeOnce sync.Once
	closeErr  error
}

type options struct {
	workers      int
	drainTimeout time.Duration
	logger       *slog.Logger
}

// Option configures a Service.
type Option func(*options)

// WithWorkers sets the fixed size of the execution pool.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithDrainTimeout bounds the graceful drain during Close.
func WithDrainTimeout(d time.Duration) Option {
	return func(o *options) {
		o.drainTimeout = d
	}
}

// WithLogger sets the logger for lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// New creates a Service over the given store.
func New(store core.Store, opts ...Option) *Service {
	o := options{
		workers:      DefaultWorkers,
		drainTimeout: DefaultDrainTimeout,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Service{
		store:        store,
		coord:        coordinator.New(o.workers, coordinator.WithLogger(o.logger)),
		logger:       o.logger,
		drainTimeout: o.drainTimeout,
	}
}

// CreateOption sets optional fields on a new job.
type CreateOption func(*core.CreateRequest)

// WithDocument associates the job with an externally-owned document.
func WithDocument(id uuid.UUID) CreateOption {
	return func(req *core.CreateRequest) {
		req.DocumentID = &id
	}
}

// WithProperty associates the job with an externally-owned property.
func WithProperty(id uuid.UUID) CreateOption {
	return func(req *core.CreateRequest) {
		req.PropertyID = &id
	}
}

// WithInitialData seeds the job's result payload at creation.
func WithInitialData(data core.Payload) CreateOption {
	return func(req *core.CreateRequest) {
		req.InitialData = data
	}
}

// CreateJob inserts a new job in the scheduled state.
func (s *Service) CreateJob(ctx context.Context, jobType string, opts ...CreateOption) (*core.Job, error) {
	if err := security.ValidateJobType(jobType); err != nil {
		return nil, err
	}

	req := core.CreateRequest{Type: jobType}
	for _, opt := range opts {
		opt(&req)
	}

	job, err := s.store.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	s.logger.Info("created job", "job_id", job.ID, "job_type", job.Type)
	return job, nil
}

// transition validates the requested status change against the job's
// current status, then applies upd plus the new status as one atomic
// write. No write happens when the check fails.
func (s *Service) transition(ctx context.Context, jobID string, to core.JobStatus, upd core.JobUpdate) (*core.Job, error) {
	job, err := s.store.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := core.CheckTransition(job.Status, to); err != nil {
		return nil, err
	}
	upd.Status = &to
	return s.store.Update(ctx, jobID, upd)
}

// StartJob marks a scheduled job as in progress and stamps StartedAt.
func (s *Service) StartJob(ctx context.Context, jobID string) error {
	now := time.Now().UTC()
	job, err := s.transition(ctx, jobID, core.StatusInProgress, core.JobUpdate{StartedAt: &now})
	if err != nil {
		return err
	}
	s.logger.Info("started job", "job_id", job.ID, "job_type", job.Type)
	return nil
}

// CompleteJob marks an in-progress job as done, stamping FinishedAt and
// storing the result payload.
func (s *Service) CompleteJob(ctx context.Context, jobID string, result core.Payload) error {
	if result == nil {
		result = core.Payload{}
	}
	now := time.Now().UTC()
	job, err := s.transition(ctx, jobID, core.StatusDone, core.JobUpdate{FinishedAt: &now, Result: result})
	if err != nil {
		return err
	}
	s.logger.Info("completed job", "job_id", job.ID, "job_type", job.Type)
	return nil
}

// FailJob marks a job as failed and records the sanitized error message.
// Permitted from scheduled as well as in_progress: a job whose work never
// started can still fail.
func (s *Service) FailJob(ctx context.Context, jobID string, errMsg string) error {
	msg := security.SanitizeErrorMessage(errMsg)
	now := time.Now().UTC()
	job, err := s.transition(ctx, jobID, core.StatusFailed, core.JobUpdate{FinishedAt: &now, ErrorMessage: &msg})
	if err != nil {
		return err
	}
	s.logger.Warn("failed job", "job_id", job.ID, "job_type", job.Type, "error", msg)
	return nil
}

// CancelJob cooperatively cancels a job's pending execution. It returns
// true only when the work had not yet been claimed by a worker; the job
// is then transitioned to cancelled with a standard message. Once a
// worker has started the work, or it has already finished, the status is
// left untouched and false is returned.
func (s *Service) CancelJob(ctx context.Context, jobID string) (bool, error) {
	if !s.coord.Cancel(jobID) {
		return false, nil
	}

	now := time.Now().UTC()
	msg := cancelledMessage
	if _, err := s.transition(ctx, jobID, core.StatusCancelled, core.JobUpdate{FinishedAt: &now, ErrorMessage: &msg}); err != nil {
		return true, err
	}
	s.logger.Info("cancelled job", "job_id", jobID)
	return true, nil
}

// RunJobAsync submits the job's work to the execution pool and returns
// its handle. The job must already be in progress (call StartJob first).
// The outcome is not recorded automatically: the caller waits on the
// handle and records it with CompleteJob or FailJob.
func (s *Service) RunJobAsync(ctx context.Context, jobID string, task coordinator.Task) (*coordinator.Handle, error) {
	job, err := s.store.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != core.StatusInProgress {
		return nil, core.ErrNotInProgress
	}

	h, err := s.coord.Submit(jobID, task)
	if err != nil {
		return nil, err
	}
	s.logger.Info("dispatched job", "job_id", jobID, "job_type", job.Type)
	return h, nil
}

// IsJobRunning reports whether the job has an active execution handle.
func (s *Service) IsJobRunning(jobID string) bool {
	return s.coord.IsRunning(jobID)
}

// GetJob retrieves a job by ID.
func (s *Service) GetJob(ctx context.Context, jobID string) (*core.Job, error) {
	return s.store.Get(ctx, jobID)
}

// GetJobsByStatus retrieves jobs with the given status, newest first.
func (s *Service) GetJobsByStatus(ctx context.Context, status core.JobStatus) ([]*core.Job, error) {
	if !status.Valid() {
		return nil, core.ErrUnknownStatus
	}
	return s.store.ListByStatus(ctx, status)
}

// GetAllJobs retrieves every job, newest first.
func (s *Service) GetAllJobs(ctx context.Context) ([]*core.Job, error) {
	return s.store.ListAll(ctx)
}

// Close drains in-flight work within the drain timeout, then releases
// the store. Repeated calls are no-ops and return the first result.
func (s *Service) Close() error {
	s.closeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.drainTimeout)
		defer cancel()

		if err := s.coord.Close(ctx); err != nil {
			s.logger.Warn("drain timed out, abandoning in-flight jobs", "error", err)
		}
		s.closeErr = s.store.Close()
		s.logger.Info("job service closed")
	})
	return s.closeErr
}
