package compute

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// DefaultMinChunk is the smallest number of particles handed to one worker.
const DefaultMinChunk = 256

type CPUBackend struct {
	workers  int
	minChunk int
}

func NewCPUBackend() *CPUBackend {
	return NewCPUBackendWorkers(runtime.NumCPU(), DefaultMinChunk)
}

// NewCPUBackendWorkers returns a backend limited to workers goroutines that
// never splits below minChunk particles per goroutine.
func NewCPUBackendWorkers(workers, minChunk int) *CPUBackend {
	if workers < 1 {
		workers = 1
	}
	if minChunk < 1 {
		minChunk = 1
	}
	return &CPUBackend{workers: workers, minChunk: minChunk}
}

func (c *CPUBackend) Name() string    { return fmt.Sprintf("cpu (%d workers)", c.workers) }
func (c *CPUBackend) Available() bool { return c.workers > 1 }
func (c *CPUBackend) Cleanup()        {}

func (c *CPUBackend) Workers() int { return c.workers }

func (c *CPUBackend) ParallelFor(n int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}

	workers := c.workers
	if n/c.minChunk < workers {
		workers = n / c.minChunk
	}
	if workers <= 1 {
		fn(0, n)
		return
	}

	chunkSize := (n + workers - 1) / workers

	var g errgroup.Group
	g.SetLimit(workers)
	for lo := 0; lo < n; lo += chunkSize {
		hi := min(lo+chunkSize, n)
		g.Go(func() error {
			fn(lo, hi)
			return nil
		})
	}
	_ = g.Wait()
}

// SerialBackend runs every loop on the calling goroutine.
type SerialBackend struct{}

func NewSerialBackend() *SerialBackend {
	return &SerialBackend{}
}

func (s *SerialBackend) Name() string    { return "serial" }
func (s *SerialBackend) Available() bool { return true }
func (s *SerialBackend) Cleanup()        {}

func (s *SerialBackend) ParallelFor(n int, fn func(lo, hi int)) {
	if n > 0 {
		fn(0, n)
	}
}
