// Package parallel splits row loops of the CPU kernels across goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls how a loop is split.
type Config struct {
	Enabled      bool // Split at all
	NumWorkers   int  // Upper bound on goroutines per loop
	MinChunkSize int  // Rows per goroutine below which splitting is not worth it
}

// DefaultConfig uses one worker per CPU and chunks of at least 32 rows.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 32,
	}
}

// Sequential returns a config that keeps every loop on the calling goroutine.
func Sequential() Config {
	return Config{NumWorkers: 1, MinChunkSize: 1}
}

// chunk returns the rows per goroutine for n rows, or n when the loop
// should not be split.
func (c Config) chunk(n int) int {
	if !c.Enabled || c.NumWorkers < 2 || n < 2*max(c.MinChunkSize, 1) {
		return n
	}
	return max((n+c.NumWorkers-1)/c.NumWorkers, c.MinChunkSize)
}

// Chunks calls body(lo, hi) over disjoint ranges covering [0, n) and
// returns once every call has finished. body must only write state owned
// by its range.
func Chunks(n int, cfg Config, body func(lo, hi int)) {
	if n <= 0 {
		return
	}
	size := cfg.chunk(n)
	if size >= n {
		body(0, n)
		return
	}

	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += size {
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			body(lo, hi)
		}(lo, min(lo+size, n))
	}
	wg.Wait()
}
