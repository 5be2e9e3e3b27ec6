package tasks

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/edgegate/internal/logger"
)

// DefaultTimeout bounds how long a background task may run.
const DefaultTimeout = 5 * time.Second

// Runner executes best-effort work decoupled from the response path,
// such as cache write-through after a durable-store lookup. Failures
// are logged and dropped; nothing a task does can affect the response
// that scheduled it.
type Runner struct {
	logger  logger.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewRunner creates a runner whose tasks are canceled after timeout.
func NewRunner(log logger.Logger, timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Runner{logger: log, timeout: timeout}
}

// Go schedules fn on its own goroutine with a fresh, deadline-bound
// context. The caller never waits on it and never sees its error.
func (r *Runner) Go(name string, fn func(ctx context.Context) error) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Errorf("background task %s panicked: %v", name, rec)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			r.logger.Debug("background task failed",
				logger.String("task", name),
				logger.Error(err))
		}
	}()
}

// Wait blocks until all currently scheduled tasks finish. Called on
// shutdown so in-flight cache writes are not cut off mid-flight, and by
// tests to observe task effects.
func (r *Runner) Wait() {
	r.wg.Wait()
}
