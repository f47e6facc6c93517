package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propdocs/jobtrack/pkg/core"
)

func TestTracked_Success(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	task := svc.Tracked("ocr", func(ctx context.Context) (core.Payload, error) {
		return core.Payload{"pages": 3}, nil
	})

	result, err := task(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.Payload{"pages": 3}, result)

	all, err := svc.GetAllJobs(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	job := all[0]
	assert.Equal(t, "ocr", job.Type)
	assert.Equal(t, core.StatusDone, job.Status)
	assert.Equal(t, core.Payload{"pages": float64(3)}, job.Result)
	require.NotNil(t, job.StartedAt)
	require.NotNil(t, job.FinishedAt)
	assert.False(t, job.FinishedAt.Before(*job.StartedAt))
}

func TestTracked_FailureRecordedAndPropagated(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	taskErr := errors.New("bad input")
	task := svc.Tracked("ocr", func(ctx context.Context) (core.Payload, error) {
		return nil, taskErr
	})

	result, err := task(ctx)
	assert.Nil(t, result)
	// The caller sees the task's own error, unchanged.
	assert.Equal(t, taskErr, err)

	failed, err := svc.GetJobsByStatus(ctx, core.StatusFailed)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "bad input", failed[0].ErrorMessage)
	require.NotNil(t, failed[0].FinishedAt)
}

func TestTracked_EachInvocationCreatesAJob(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	task := svc.Tracked("ocr", func(ctx context.Context) (core.Payload, error) {
		return nil, nil
	})

	for i := 0; i < 3; i++ {
		_, err := task(ctx)
		require.NoError(t, err)
	}

	done, err := svc.GetJobsByStatus(ctx, core.StatusDone)
	require.NoError(t, err)
	assert.Len(t, done, 3)
}

func TestTracked_Associations(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	docID := uuid.New()
	task := svc.Tracked("entity-extraction", func(ctx context.Context) (core.Payload, error) {
		return nil, nil
	}, WithDocument(docID))

	_, err := task(ctx)
	require.NoError(t, err)

	all, err := svc.GetAllJobs(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.NotNil(t, all[0].DocumentID)
	assert.Equal(t, docID, *all[0].DocumentID)
}

func TestTracked_CreateFailure(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	task := svc.Tracked("", func(ctx context.Context) (core.Payload, error) {
		t.Error("task must not run when create fails")
		return nil, nil
	})

	_, err := task(ctx)
	assert.ErrorIs(t, err, core.ErrInvalidJobType)

	all, err := svc.GetAllJobs(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
