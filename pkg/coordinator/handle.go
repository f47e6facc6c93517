package coordinator

import (
	"context"
	"sync"

	"github.com/propdocs/jobtrack/pkg/core"
)

type handleState int

const (
	stateQueued handleState = iota
	stateRunning
	stateFinished
	stateCancelled
)

// Handle is a runtime reference to an in-flight execution. It supports
// waiting, polling, and cooperative cancellation. A handle finishes
// exactly once; after that Wait and Done observe the stored outcome.
type Handle struct {
	jobID string
	task  Task
	coord *Coordinator

	mu     sync.Mutex
	state  handleState
	result core.Payload
	err    error
	done   chan struct{}
}

func newHandle(c *Coordinator, jobID string, task Task) *Handle {
	return &Handle{
		jobID: jobID,
		task:  task,
		coord: c,
		done:  make(chan struct{}),
	}
}

// JobID returns the job this handle executes.
func (h *Handle) JobID() string {
	return h.jobID
}

// Wait blocks until the work finishes or ctx is done. It returns the
// task's result and error; a cancelled handle reports context.Canceled.
func (h *Handle) Wait(ctx context.Context) (core.Payload, error) {
	select {
	case <-h.done:
		h.mu.Lock()
		defer h.mu.Unlock()
		return h.result, h.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Done reports whether the work has finished, without blocking.
func (h *Handle) Done() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Cancel cooperatively cancels the work. It returns true only when the
// task had not yet been claimed by a worker; once execution has started,
// or the work has already finished, it returns false and has no effect.
// Cancel never touches the job's durable status.
func (h *Handle) Cancel() bool {
	h.mu.Lock()
	if h.state != stateQueued {
		h.mu.Unlock()
		return false
	}
	h.state = stateCancelled
	h.err = context.Canceled
	close(h.done)
	h.mu.Unlock()

	h.coord.remove(h.jobID)
	return true
}

// tryStart claims the handle for execution. Returns false if it was
// cancelled while still queued.
func (h *Handle) tryStart() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != stateQueued {
		return false
	}
	h.state = stateRunning
	return true
}

// finish records the outcome and releases waiters. The coordinator has
// already removed the handle from its active set at this point.
func (h *Handle) finish(result core.Payload, err error) {
	h.mu.Lock()
	h.state = stateFinished
	h.result = result
	h.err = err
	close(h.done)
	h.mu.Unlock()
}
