package schedule

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/propdocs/jobtrack/pkg/service"
)

// DefaultPollInterval is how often the runner checks for due entries.
const DefaultPollInterval = time.Second

type entry struct {
	jobType string
	sched   Schedule
	task    service.TaskFunc
}

// Runner fires tracked jobs on their schedules. Each firing runs the
// entry's function through the service's Tracked combinator, so every
// firing is recorded as a fresh job. The runner is additive tooling over
// the lifecycle core; nothing in the core depends on it.
type Runner struct {
	svc          *service.Service
	logger       *slog.Logger
	pollInterval time.Duration

	mu      sync.RWMutex
	entries map[string]*entry
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithPollInterval sets how often due entries are checked.
func WithPollInterval(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.pollInterval = d
	}
}

// WithLogger sets the logger for firing outcomes.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = l
	}
}

// NewRunner creates a runner over the given service.
func NewRunner(svc *service.Service, opts ...RunnerOption) *Runner {
	r := &Runner{
		svc:          svc,
		logger:       slog.Default(),
		pollInterval: DefaultPollInterval,
		entries:      make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add registers a recurring tracked job. Re-registering a job type
// replaces its schedule and task.
func (r *Runner) Add(jobType string, sched Schedule, task service.TaskFunc, opts ...service.CreateOption) {
	tracked := r.svc.Tracked(jobType, task, opts...)
	r.mu.Lock()
	r.entries[jobType] = &entry{jobType: jobType, sched: sched, task: tracked}
	r.mu.Unlock()
}

// Start fires due entries until ctx is cancelled, then waits for
// in-flight firings to return. Blocks; run it in its own goroutine.
func (r *Runner) Start(ctx context.Context) error {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	var g errgroup.Group
	lastRun := make(map[string]time.Time)

	for {
		select {
		case <-ctx.Done():
			if err := g.Wait(); err != nil {
				r.logger.Error("recurring job group error", "error", err)
			}
			return ctx.Err()
		case <-ticker.C:
			now := time.Now()

			r.mu.RLock()
			var due []*entry
			for jobType, e := range r.entries {
				next := e.sched.Next(lastRun[jobType])
				if !next.After(now) {
					due = append(due, e)
					lastRun[jobType] = now
				}
			}
			r.mu.RUnlock()

			for _, e := range due {
				e := e
				g.Go(func() error {
					if _, err := e.task(ctx); err != nil {
						r.logger.Error("recurring job failed", "job_type", e.jobType, "error", err)
					}
					return nil
				})
			}
		}
	}
}
