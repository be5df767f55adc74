package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"slidecast/internal/logging"
	"slidecast/internal/queue"
	"slidecast/internal/services"
)

// queueLockName is the advisory lock file guarding queue runs across
// processes that share a data directory.
const queueLockName = "queue.lock"

// Summary reports the outcome of one queue run.
type Summary struct {
	Dispatched int
	Completed  int
	Failed     int
	Skipped    int
}

// ProcessQueue drains all pending jobs with a bounded worker pool, oldest
// first. Only one queue run may be active per data directory; a second
// concurrent run fails immediately instead of doubling up on jobs.
func (o *Orchestrator) ProcessQueue(ctx context.Context, workers int) (Summary, error) {
	if workers <= 0 {
		workers = o.cfg.Workflow.Workers
	}
	if workers <= 0 {
		workers = 1
	}

	lock := flock.New(filepath.Join(o.cfg.Paths.DataDir, queueLockName))
	locked, err := lock.TryLock()
	if err != nil {
		return Summary{}, fmt.Errorf("acquire queue lock: %w", err)
	}
	if !locked {
		return Summary{}, services.Wrap(services.ErrInvalidState, "queue", "acquire queue lock",
			"another queue run is already active for this data directory", nil)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	pending, err := o.store.Pending(ctx)
	if err != nil {
		return Summary{}, err
	}
	if len(pending) == 0 {
		return Summary{}, nil
	}

	o.logger.Info("processing queue",
		logging.Int("pending", len(pending)),
		logging.Int("workers", workers),
	)

	var (
		mu      sync.Mutex
		summary Summary
		wg      sync.WaitGroup
	)
	sem := make(chan struct{}, workers)

	for _, job := range pending {
		if ctx.Err() != nil {
			break
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(jobID string) {
			defer wg.Done()
			defer func() { <-sem }()

			err := o.ProcessOne(ctx, jobID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// Claimed by someone else or gone; not this run's failure.
				summary.Skipped++
				return
			}
			summary.Dispatched++
			final, lookupErr := o.store.GetByJobID(ctx, jobID)
			if lookupErr != nil || final == nil {
				return
			}
			switch final.Status {
			case queue.StatusCompleted:
				summary.Completed++
			case queue.StatusFailed:
				summary.Failed++
			}
		}(job.JobID)
	}
	wg.Wait()

	o.logger.Info("queue run finished",
		logging.Int("dispatched", summary.Dispatched),
		logging.Int("completed", summary.Completed),
		logging.Int("failed", summary.Failed),
		logging.Int("skipped", summary.Skipped),
	)
	return summary, ctx.Err()
}
