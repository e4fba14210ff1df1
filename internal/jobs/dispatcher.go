package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/Snoop111/creative-ai-studio-demo/internal/infra"
)

// Dispatcher runs execution strategies in the background, one goroutine per
// job, with an at-most-once guard per job id. Strategies run on the base
// context so they outlive the HTTP request that created the job.
type Dispatcher struct {
	baseCtx context.Context
	logger  infra.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
	wg       sync.WaitGroup
}

func NewDispatcher(baseCtx context.Context, logger infra.Logger) *Dispatcher {
	return &Dispatcher{
		baseCtx:  baseCtx,
		logger:   logger,
		inflight: make(map[string]struct{}),
	}
}

// Dispatch launches run for the job unless one is already in flight.
func (d *Dispatcher) Dispatch(jobID string, run func(ctx context.Context)) bool {
	d.mu.Lock()
	if _, dup := d.inflight[jobID]; dup {
		d.mu.Unlock()
		d.logger.Warn().Str("job_id", jobID).Msg("dispatch suppressed, job already in flight")
		return false
	}
	d.inflight[jobID] = struct{}{}
	d.mu.Unlock()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			d.mu.Lock()
			delete(d.inflight, jobID)
			d.mu.Unlock()
		}()
		run(d.baseCtx)
	}()
	return true
}

// InFlight reports the number of running strategies.
func (d *Dispatcher) InFlight() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.inflight)
}

// Shutdown waits for running strategies to finish, up to the given timeout.
func (d *Dispatcher) Shutdown(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		d.logger.Warn().Int("in_flight", d.InFlight()).Msg("shutdown timed out with strategies still running")
		return false
	}
}
