// Package concurrent bounds the parallelism of batch operations such
// as indexing the files of an ingested repository.
package concurrent

import (
	"context"
	"sync"
)

const defaultWorkers = 8

// ForEach runs fn on every item with at most workers goroutines in
// flight. Item failures are collected per index; a cancelled context
// stops scheduling and is returned as the overall error.
func ForEach[T any](ctx context.Context, items []T, workers int, fn func(ctx context.Context, item T) error) []error {
	if len(items) == 0 {
		return nil
	}
	if workers <= 0 {
		workers = defaultWorkers
	}

	errs := make([]error, len(items))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i := range items {
		if err := ctx.Err(); err != nil {
			errs[i] = err
			continue
		}
		select {
		case <-ctx.Done():
			errs[i] = ctx.Err()
			continue
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()
			errs[idx] = fn(ctx, items[idx])
		}(i)
	}
	wg.Wait()
	return errs
}
