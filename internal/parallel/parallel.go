// Package parallel provides the worker fan-out used by the CPU backend.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	return WithWorkers(runtime.NumCPU())
}

// WithWorkers returns a Config using n workers. n <= 1 disables fan-out.
func WithWorkers(n int) Config {
	return Config{
		Enabled:      n > 1,
		NumWorkers:   max(n, 1),
		MinChunkSize: 1,
	}
}

// For executes f(i) for i in [0, n) with optional parallelism.
// Falls back to sequential execution if parallelism is disabled or n is too small.
func For(n int, f func(i int), cfg Config) {
	ForRange(n, func(start, end int) {
		for i := start; i < end; i++ {
			f(i)
		}
	}, cfg)
}

// ForRange splits [0, n) into contiguous chunks and runs f(start, end) on each.
// It returns once every chunk has finished.
func ForRange(n int, f func(start, end int), cfg Config) {
	if n <= 0 {
		return
	}
	minChunk := max(cfg.MinChunkSize, 1)
	if !cfg.Enabled || cfg.NumWorkers <= 1 || n < 2*minChunk {
		f(0, n)
		return
	}

	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, minChunk)

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			f(s, e)
		}(start, end)
	}
	wg.Wait()
}
