package dynamo

import (
	"fmt"
	"runtime"
	"sync"
)

// ParallelFor splits [0, n) into contiguous chunks of at least minChunk
// items and runs fn on each chunk in its own goroutine. It returns once
// every chunk is done. A panic in any chunk is re-raised in the caller.
func ParallelFor(n, minChunk int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	minChunk = max(minChunk, 1)
	workers := min(runtime.GOMAXPROCS(0), n/minChunk)
	if workers <= 1 {
		fn(0, n)
		return
	}

	chunk := (n + workers - 1) / workers

	var (
		wg    sync.WaitGroup
		once  sync.Once
		fault any
	)
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					once.Do(func() { fault = r })
				}
			}()
			fn(start, end)
		}()
	}
	wg.Wait()

	if fault != nil {
		panic(fmt.Sprintf("parallel chunk: %v", fault))
	}
}
