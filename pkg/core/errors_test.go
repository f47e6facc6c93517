package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistenceError(t *testing.T) {
	backendErr := errors.New("connection refused")
	err := &PersistenceError{Op: "create job", Err: backendErr}

	assert.Contains(t, err.Error(), "create job")
	assert.Contains(t, err.Error(), "connection refused")
	assert.True(t, errors.Is(err, backendErr))
}

func TestTaskError(t *testing.T) {
	cause := errors.New("panic: index out of range")
	err := &TaskError{JobID: "job-1", Err: cause}

	var taskErr *TaskError
	require.True(t, errors.As(err, &taskErr))
	assert.Equal(t, "job-1", taskErr.JobID)
	assert.Equal(t, cause, taskErr.Unwrap())
	assert.Contains(t, err.Error(), "job-1")
}

func TestInvalidTransitionError_Message(t *testing.T) {
	err := &InvalidTransitionError{From: StatusScheduled, To: StatusDone}
	assert.Equal(t, "jobtrack: invalid transition from scheduled to done", err.Error())
}
