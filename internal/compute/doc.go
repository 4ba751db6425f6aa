// Package compute provides the execution backends for particle loops.
//
//   - CPU: splits the loop into chunks run on an errgroup of goroutines
//   - Serial: runs the loop on the caller's goroutine
//
// # Usage
//
// The tracking driver hands every particle push to a backend:
//
//	backend := compute.GetBackend()
//	backend.ParallelFor(len(particles), func(lo, hi int) {
//		for i := lo; i < hi; i++ {
//			push(&particles[i])
//		}
//	})
//
// Chunks never overlap, so a loop body may write to its own index range
// without locking.
package compute
