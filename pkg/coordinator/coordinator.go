// Package coordinator dispatches opaque task functions onto a fixed-size
// worker pool and tracks in-flight execution handles by job ID.
package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/propdocs/jobtrack/pkg/core"
	"github.com/propdocs/jobtrack/pkg/security"
)

// Task is an opaque unit of work. Arguments are closure-captured by the
// caller; the coordinator never introspects the function.
type Task func(ctx context.Context) (core.Payload, error)

// Coordinator runs tasks on a fixed pool of worker goroutines. Pool size
// is fixed at construction. Submissions beyond capacity queue in FIFO
// order; there is no load-shedding and no backpressure signal. All
// mutation of the active-handle map is synchronized.
type Coordinator struct {
	logger *slog.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	pending []*Handle
	active  map[string]*Handle
	closed  bool

	// baseCtx is handed to running tasks; it is cancelled only when a
	// close drain gives up waiting.
	baseCtx    context.Context
	baseCancel context.CancelFunc

	wg sync.WaitGroup
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger used for task outcomes.
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = l
	}
}

// New creates a coordinator with a fixed pool of worker goroutines. The
// worker count is clamped to [1, security.MaxWorkers].
func New(workers int, opts ...Option) *Coordinator {
	c := &Coordinator{
		active: make(map[string]*Handle),
		logger: slog.Default(),
	}
	c.cond = sync.NewCond(&c.mu)
	c.baseCtx, c.baseCancel = context.WithCancel(context.Background())

	for _, opt := range opts {
		opt(c)
	}

	n := security.ClampWorkers(workers)
	for i := 0; i < n; i++ {
		c.wg.Add(1)
		go c.workLoop()
	}
	return c
}

// Submit queues a task for execution and returns its handle. A job may
// have at most one active execution: a second submission while the first
// is still active fails with core.ErrDuplicateSubmission.
func (c *Coordinator) Submit(jobID string, task Task) (*Handle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, core.ErrCoordinatorClosed
	}
	if _, ok := c.active[jobID]; ok {
		return nil, core.ErrDuplicateSubmission
	}

	h := newHandle(c, jobID, task)
	c.active[jobID] = h
	c.pending = append(c.pending, h)
	c.cond.Signal()
	return h, nil
}

// IsRunning reports whether an active, not-yet-finished handle exists
// for the job.
func (c *Coordinator) IsRunning(jobID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.active[jobID]
	return ok
}

// Cancel cooperatively cancels the job's pending execution. True only if
// the work had not yet been claimed by a worker; false once execution has
// started, the work has finished, or no handle exists. The job's durable
// status is untouched either way.
func (c *Coordinator) Cancel(jobID string) bool {
	c.mu.Lock()
	h, ok := c.active[jobID]
	c.mu.Unlock()
	if !ok {
		return false
	}
	return h.Cancel()
}

// remove drops a handle from the active set.
func (c *Coordinator) remove(jobID string) {
	c.mu.Lock()
	delete(c.active, jobID)
	c.mu.Unlock()
}

func (c *Coordinator) workLoop() {
	defer c.wg.Done()

	for {
		c.mu.Lock()
		for len(c.pending) == 0 && !c.closed {
			c.cond.Wait()
		}
		if len(c.pending) == 0 {
			c.mu.Unlock()
			return
		}
		h := c.pending[0]
		c.pending = c.pending[1:]
		c.mu.Unlock()

		if !h.tryStart() {
			// Cancelled while queued; already finalized.
			continue
		}
		c.run(h)
	}
}

// run executes the task, recovering panics into *core.TaskError. The
// handle leaves the active set before waiters are released, so IsRunning
// is false by the time Wait returns.
func (c *Coordinator) run(h *Handle) {
	var (
		result core.Payload
		err    error
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = &core.TaskError{JobID: h.jobID, Err: fmt.Errorf("panic: %v", r)}
			}
		}()
		result, err = h.task(c.baseCtx)
	}()

	c.remove(h.jobID)
	h.finish(result, err)

	if err != nil {
		c.logger.Debug("task finished with error", "job_id", h.jobID, "error", err)
	}
}

// Close stops intake, cancels still-queued handles, and waits for
// in-flight work until ctx is done. On timeout the task context is
// cancelled and ctx.Err() is returned; workers exit once their current
// task returns. Safe to call repeatedly.
func (c *Coordinator) Close(ctx context.Context) error {
	c.mu.Lock()
	var queued []*Handle
	if !c.closed {
		c.closed = true
		queued = c.pending
		c.pending = nil
		c.cond.Broadcast()
	}
	c.mu.Unlock()

	for _, h := range queued {
		h.Cancel()
	}

	drained := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		c.baseCancel()
		return ctx.Err()
	}
}
