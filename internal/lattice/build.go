package lattice

import (
	"fmt"

	"github.com/san-kum/beamsim/internal/config"
	"github.com/san-kum/beamsim/internal/elements"
)

// SinkFunc returns the recorder for the monitor with the given name. It may
// return nil to count passes without recording.
type SinkFunc func(name string) elements.Recorder

// Build constructs the elements of cfgs in order. BeamMonitor entries with
// the same name share a single monitor, so a monitor placed at both ends of
// a period records every pass into one sink.
func (r *Registry) Build(cfgs []config.ElementConfig, sink SinkFunc) ([]elements.Element, error) {
	monitors := make(map[string]*elements.BeamMonitor)
	out := make([]elements.Element, 0, len(cfgs))

	for i, c := range cfgs {
		if c.Type == elements.KindBeamMonitor.String() {
			if m, ok := monitors[c.Name]; ok {
				out = append(out, m)
				continue
			}
		}

		el, err := r.New(c)
		if err != nil {
			return nil, fmt.Errorf("lattice[%d] %s: %w", i, c.Type, err)
		}
		if m, ok := el.(*elements.BeamMonitor); ok {
			if sink != nil {
				m.Sink = sink(m.Name())
			}
			monitors[c.Name] = m
		}
		out = append(out, el)
	}
	return out, nil
}

// Length returns the total length of els [m].
func Length(els []elements.Element) float64 {
	var s float64
	for _, el := range els {
		s += el.Traits().Length
	}
	return s
}

// Monitors returns the distinct monitors of els in order of first
// appearance.
func Monitors(els []elements.Element) []*elements.BeamMonitor {
	var out []*elements.BeamMonitor
	seen := make(map[*elements.BeamMonitor]bool)
	for _, el := range els {
		if m, ok := el.(*elements.BeamMonitor); ok && !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}
