// Package assemble fetches an upload session's chunks and concatenates them
// into the final object payload.
//
// Chunk downloads run concurrently under a semaphore, but every chunk lands
// in its index's slot before concatenation, so the output is always the
// byte-exact ordered join of chunk 0..n-1 regardless of completion order.
package assemble

import (
	"context"
	"sync"

	"github.com/fenice-io/upload/store"
)

// DefaultConcurrency bounds parallel chunk downloads when no explicit limit
// is configured.
const DefaultConcurrency = 5

// Fetch downloads totalChunks chunks by key and returns their ordered
// concatenation. The keyFn maps a chunk index to its storage key.
//
// The first download failure cancels the remaining fetches and is returned
// unchanged; partial results are discarded.
func Fetch(ctx context.Context, objStore store.ObjectStore, keyFn func(int) string, totalChunks, concurrency int) ([]byte, error) {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	parts := make([][]byte, totalChunks)
	sem := make(chan struct{}, concurrency)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for i := 0; i < totalChunks; i++ {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			mu.Lock()
			defer mu.Unlock()
			if firstErr != nil {
				return nil, firstErr
			}
			return nil, ctx.Err()
		}

		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			defer func() { <-sem }()

			data, err := objStore.Download(ctx, keyFn(index))
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				cancel()
				return
			}
			parts[index] = data
		}(i)
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var size int
	for _, part := range parts {
		size += len(part)
	}

	assembled := make([]byte, 0, size)
	for _, part := range parts {
		assembled = append(assembled, part...)
	}
	return assembled, nil
}
