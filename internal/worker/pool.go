// Package worker provides the bounded worker pools used for per-ticker fetches.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
)

// Task processes item i. Results are written by the task into caller-owned,
// index-addressed storage so completion order never affects output order.
type Task func(ctx context.Context, i int)

// Pool runs tasks with a fixed upper bound on concurrency.
type Pool struct {
	numWorkers int
	logger     arbor.ILogger
}

// NewPool creates a pool. numWorkers < 1 is treated as 1 (sequential).
func NewPool(numWorkers int, logger arbor.ILogger) *Pool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &Pool{
		numWorkers: numWorkers,
		logger:     logger,
	}
}

// Run executes task for every index in [0, n) and waits for all of them.
// Tasks not yet started when ctx is cancelled are skipped; running tasks finish.
// It returns the number of tasks that ran.
func (p *Pool) Run(ctx context.Context, n int, task Task) int {
	if n <= 0 {
		return 0
	}

	if p.numWorkers == 1 || n == 1 {
		ran := 0
		for i := 0; i < n; i++ {
			if ctx.Err() != nil {
				break
			}
			task(ctx, i)
			ran++
		}
		return ran
	}

	workers := p.numWorkers
	if workers > n {
		workers = n
	}

	jobs := make(chan int)
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ran int
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for i := range jobs {
				task(ctx, i)
				mu.Lock()
				ran++
				mu.Unlock()
			}
			if p.logger != nil {
				p.logger.Trace().Int("worker_id", workerID).Msg("Worker finished")
			}
		}(w)
	}

dispatch:
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	return ran
}

// BatchOptions controls RunBatches.
type BatchOptions struct {
	// Size is the number of items per batch.
	Size int
	// Concurrency bounds parallel tasks inside a batch.
	Concurrency int
	// Pause is slept between consecutive batches.
	Pause time.Duration
}

// RunBatches splits [0, n) into consecutive batches, runs each batch on a bounded
// pool and sleeps Pause between batches, even when a batch finishes quickly.
// It returns the number of tasks that ran.
func RunBatches(ctx context.Context, n int, opts BatchOptions, logger arbor.ILogger, task Task) int {
	size := opts.Size
	if size < 1 {
		size = 1
	}
	pool := NewPool(opts.Concurrency, logger)

	ran := 0
	batch := 0
	for start := 0; start < n; start += size {
		if ctx.Err() != nil {
			break
		}
		if start > 0 && opts.Pause > 0 {
			select {
			case <-ctx.Done():
				return ran
			case <-time.After(opts.Pause):
			}
		}

		end := start + size
		if end > n {
			end = n
		}
		offset := start
		ran += pool.Run(ctx, end-start, func(ctx context.Context, i int) {
			task(ctx, offset+i)
		})

		batch++
		if logger != nil {
			logger.Debug().
				Int("batch", batch).
				Int("done", end).
				Int("total", n).
				Msg("Batch complete")
		}
	}
	return ran
}
