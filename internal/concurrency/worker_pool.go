// Package concurrency provides a small fan-out helper used for per-line
// catalog and promotion checks.
package concurrency

import (
	"context"
	"sync"
)

type WorkerFn func(ctx context.Context, index int)

// ForEach runs fn for every index in [0, tasks) across at most workers
// goroutines and waits for all of them. fn must write results only to its
// own index.
func ForEach(ctx context.Context, workers, tasks int, fn WorkerFn) {
	if tasks == 0 {
		return
	}
	if workers > tasks {
		workers = tasks
	}
	if workers < 1 {
		workers = 1
	}

	indices := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indices {
				fn(ctx, idx)
			}
		}()
	}

	for i := 0; i < tasks; i++ {
		select {
		case indices <- i:
		case <-ctx.Done():
			close(indices)
			wg.Wait()
			return
		}
	}
	close(indices)
	wg.Wait()
}
