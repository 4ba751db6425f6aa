package elements

import (
	"sync"

	"github.com/san-kum/beamsim/internal/beam"
)

// Recorder receives beam snapshots from a BeamMonitor.
type Recorder interface {
	Record(name string, step int, ref beam.RefPart, particles []beam.Particle) error
	Flush() error
}

// BeamMonitor is a thin marker that records the beam each time it is
// passed. The same monitor may appear several times in a lattice; every
// pass is recorded under its step number.
type BeamMonitor struct {
	Thin
	Label string
	Sink  Recorder

	mu     sync.Mutex
	passes int
	err    error
}

func NewBeamMonitor(label string, sink Recorder) *BeamMonitor {
	return &BeamMonitor{Label: label, Sink: sink}
}

func (m *BeamMonitor) Name() string {
	if m.Label == "" {
		return KindBeamMonitor.String()
	}
	return m.Label
}

func (*BeamMonitor) Kind() Kind { return KindBeamMonitor }
func (*BeamMonitor) sealed()    {}

func (*BeamMonitor) Traits() Traits {
	return Traits{Slices: 1, NeedsFinalize: true}
}

// PushParticle is the identity; recording happens once per pass in
// Observe.
func (*BeamMonitor) PushParticle(*beam.Particle, *beam.RefPart) {}

// Observe records the container. The first recording error is kept and
// returned by Finalize; later passes are still attempted.
func (m *BeamMonitor) Observe(c beam.Container, step int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.passes++
	if m.Sink == nil {
		return
	}
	if err := m.Sink.Record(m.Name(), step, *c.RefParticle(), c.Slice()); err != nil && m.err == nil {
		m.err = err
	}
}

// Passes returns how many times the beam went through the monitor.
func (m *BeamMonitor) Passes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.passes
}

// Finalize flushes the sink.
func (m *BeamMonitor) Finalize() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Sink != nil {
		if err := m.Sink.Flush(); err != nil && m.err == nil {
			m.err = err
		}
	}
	return m.err
}
