// Package metrics reduces a moment history to figures of merit.
package metrics

import (
	"github.com/san-kum/beamsim/internal/diagnostics"
)

// Metric accumulates one figure of merit over successive snapshots.
type Metric interface {
	Name() string
	Observe(r diagnostics.Reduced)
	Value() float64
	Reset()
}

// Defaults returns fresh instances of every metric in this package.
func Defaults() []Metric {
	return []Metric{
		NewEmittanceGrowth(PlaneX),
		NewEmittanceGrowth(PlaneY),
		NewMaxBeta(PlaneX),
		NewMaxBeta(PlaneY),
		NewTransmission(),
		NewEnergyGain(),
	}
}

// Evaluate resets ms, feeds them history and returns their values by name.
func Evaluate(history []diagnostics.Reduced, ms ...Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		m.Reset()
		for _, r := range history {
			m.Observe(r)
		}
		out[m.Name()] = m.Value()
	}
	return out
}

// Plane selects the transverse or longitudinal moments of a snapshot.
type Plane int

const (
	PlaneX Plane = iota
	PlaneY
	PlaneT
)

func (p Plane) String() string {
	return [...]string{"x", "y", "t"}[p]
}

func (p Plane) of(r diagnostics.Reduced) diagnostics.Plane {
	switch p {
	case PlaneY:
		return r.Y
	case PlaneT:
		return r.T
	}
	return r.X
}
