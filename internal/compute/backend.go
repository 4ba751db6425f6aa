package compute

// Backend runs the per-particle loops of an element push. Particle maps are
// independent across particles, so a backend may split [0, n) into chunks
// and run them concurrently; ParallelFor returns only after every chunk is
// done.
type Backend interface {
	Name() string
	Available() bool
	ParallelFor(n int, fn func(lo, hi int))
	Cleanup()
}

var activeBackend Backend

func init() {
	activeBackend = AutoSelectBackend()
}

func SetBackend(b Backend) {
	if activeBackend != nil {
		activeBackend.Cleanup()
	}
	activeBackend = b
}

func GetBackend() Backend {
	return activeBackend
}

// AutoSelectBackend returns the multi-core CPU backend, or the serial one
// on a single-core machine.
func AutoSelectBackend() Backend {
	cpu := NewCPUBackend()
	if cpu.Available() {
		return cpu
	}
	return NewSerialBackend()
}

// ByName returns the backend called name ("cpu" or "serial"), or nil.
func ByName(name string) Backend {
	switch name {
	case "", "auto":
		return AutoSelectBackend()
	case "cpu":
		return NewCPUBackend()
	case "serial":
		return NewSerialBackend()
	}
	return nil
}
