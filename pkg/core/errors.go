package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a job ID does not exist in the store.
	// A job removed by an external cascade delete surfaces as ErrNotFound
	// on its next access, not as corruption.
	ErrNotFound = errors.New("jobtrack: job not found")

	// ErrDuplicateSubmission is returned when a job already has an active
	// execution handle. At most one concurrent execution per job.
	ErrDuplicateSubmission = errors.New("jobtrack: job already has an active execution")

	// ErrNotInProgress is returned when async dispatch is requested for a
	// job that has not been started.
	ErrNotInProgress = errors.New("jobtrack: job must be in progress before async dispatch")

	// ErrCoordinatorClosed is returned for submissions after shutdown.
	ErrCoordinatorClosed = errors.New("jobtrack: coordinator is closed")

	// Validation errors
	ErrInvalidJobType = errors.New("jobtrack: invalid job type (must be alphanumeric, start with letter)")
	ErrJobTypeTooLong = errors.New("jobtrack: job type too long")
	ErrUnknownStatus  = errors.New("jobtrack: unknown job status")
)

// InvalidTransitionError reports a status change not permitted by the
// state machine. The refused write never reaches the store.
type InvalidTransitionError struct {
	From JobStatus
	To   JobStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("jobtrack: invalid transition from %s to %s", e.From, e.To)
}

// PersistenceError wraps a backend I/O or constraint failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("jobtrack: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// TaskError wraps a panic recovered from a task body running on the
// execution pool. Ordinary task errors are never wrapped; they propagate
// unchanged.
type TaskError struct {
	JobID string
	Err   error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("jobtrack: task for job %s: %v", e.JobID, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}
