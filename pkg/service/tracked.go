package service

import (
	"context"

	"github.com/propdocs/jobtrack/pkg/coordinator"
	"github.com/propdocs/jobtrack/pkg/core"
)

// TaskFunc is a unit of work invoked in the caller's own goroutine.
// It shares the coordinator's task signature so the same function can be
// dispatched to the pool or wrapped with Tracked.
type TaskFunc = coordinator.Task

// Tracked wraps fn with automatic job bookkeeping. Each invocation
// creates a job of the given type, starts it, and runs fn synchronously
// in the caller's goroutine, not on the execution pool. A normal return
// is recorded with CompleteJob and handed back to the caller; an error is
// recorded with FailJob and returned unchanged, never swallowed.
//
// This is the recommended entry point for task authors. Callers that
// need explicit concurrent dispatch use the lower-level
// CreateJob/StartJob/RunJobAsync/CompleteJob sequence instead.
func (s *Service) Tracked(jobType string, fn TaskFunc, opts ...CreateOption) TaskFunc {
	return func(ctx context.Context) (core.Payload, error) {
		job, err := s.CreateJob(ctx, jobType, opts...)
		if err != nil {
			return nil, err
		}
		if err := s.StartJob(ctx, job.ID); err != nil {
			return nil, err
		}

		result, taskErr := fn(ctx)
		if taskErr != nil {
			if failErr := s.FailJob(ctx, job.ID, taskErr.Error()); failErr != nil {
				// Recording must not swallow the task's own error.
				s.logger.Error("recording job failure failed", "job_id", job.ID, "error", failErr)
			}
			return nil, taskErr
		}

		if err := s.CompleteJob(ctx, job.ID, result); err != nil {
			// The task succeeded but the outcome is not durable; the
			// caller must see the persistence error.
			return result, err
		}
		return result, nil
	}
}
