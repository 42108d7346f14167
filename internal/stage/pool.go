package stage

import (
	"context"
	"sync"
)

// ForEach fans items out over a bounded worker pool. It stops dispatching
// when the context is cancelled or a worker returns an error, waits for
// in-flight work, and returns the first error observed. Per-item conditions
// that should not stop the batch must be handled inside fn.
func ForEach[T any](ctx context.Context, workers int, items []T, fn func(context.Context, T) error) error {
	if len(items) == 0 {
		return ctx.Err()
	}
	if workers <= 0 {
		workers = 1
	}
	if workers > len(items) {
		workers = len(items)
	}

	work := make(chan T)
	errOnce := sync.Once{}
	var firstErr error
	poolCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for item := range work {
				if poolCtx.Err() != nil {
					return
				}
				if err := fn(poolCtx, item); err != nil {
					errOnce.Do(func() {
						firstErr = err
						cancel()
					})
					return
				}
			}
		}()
	}

dispatch:
	for _, item := range items {
		select {
		case <-poolCtx.Done():
			break dispatch
		case work <- item:
		}
	}
	close(work)
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}
