package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// poolStats counts the jobs a pool run processed.
type poolStats struct {
	Workers   int
	Processed int64
	Failed    int64
}

// runPool calls fn for every index in [0, jobs) on workers goroutines.
//
// fn writes its output into a slot owned by its index, so no result
// channel is needed and output order matches input order. The first error
// cancels the remaining jobs and is returned; so is ctx.Err() when the
// caller cancels.
func runPool(ctx context.Context, workers, jobs int, logger *slog.Logger, fn func(ctx context.Context, i int) error) (poolStats, error) {
	stats := poolStats{Workers: workers}
	if jobs == 0 {
		return stats, ctx.Err()
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	queue := make(chan int, workers*2)
	var (
		wg        sync.WaitGroup
		processed atomic.Int64
		failed    atomic.Int64
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := range queue {
				if ctx.Err() != nil {
					continue
				}
				if err := fn(ctx, i); err != nil {
					failed.Add(1)
					logger.Debug("job failed", "worker_id", id, "job", i, "error", err)
					cancel(err)
					continue
				}
				processed.Add(1)
			}
		}(w)
	}

submit:
	for i := 0; i < jobs; i++ {
		select {
		case <-ctx.Done():
			break submit
		case queue <- i:
		}
	}
	close(queue)
	wg.Wait()

	stats.Processed = processed.Load()
	stats.Failed = failed.Load()
	return stats, context.Cause(ctx)
}
