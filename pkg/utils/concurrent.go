package utils

import (
	"context"
	"sync"
)

// defaultConcurrency bounds fan-out when callers pass a non-positive limit.
const defaultConcurrency = 8

// GatherWithResults runs the functions concurrently under a shared
// semaphore and returns their results and errors slot-for-slot, preserving
// input order. Panics in a branch are recovered and surface as a
// PanicError in that branch's error slot; a cancelled context fails the
// branches still waiting on the semaphore without disturbing the ones
// already running.
func GatherWithResults[T any](ctx context.Context, maxConcurrency int, functions ...func() (T, error)) ([]T, []error) {
	if len(functions) == 0 {
		return nil, nil
	}
	if maxConcurrency <= 0 {
		maxConcurrency = defaultConcurrency
	}

	semaphore := make(chan struct{}, maxConcurrency)
	results := make([]T, len(functions))
	errs := make([]error, len(functions))
	var wg sync.WaitGroup

	for i, fn := range functions {
		wg.Add(1)
		go func(index int, function func() (T, error)) {
			defer wg.Done()
			defer RecoverWithCallback(func(err error) {
				errs[index] = err
			})

			select {
			case semaphore <- struct{}{}:
				defer func() { <-semaphore }()
			case <-ctx.Done():
				errs[index] = ctx.Err()
				return
			}

			results[index], errs[index] = function()
		}(i, fn)
	}

	wg.Wait()
	return results, errs
}
