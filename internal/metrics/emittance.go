package metrics

import (
	"math"

	"github.com/san-kum/beamsim/internal/diagnostics"
)

// EmittanceGrowth is the largest emittance seen relative to the first
// snapshot. It is 1 for a beam whose emittance never grows and 0 before
// any observation or when the initial emittance is zero.
type EmittanceGrowth struct {
	name    string
	plane   Plane
	initial float64
	peak    float64
	samples int
}

func NewEmittanceGrowth(p Plane) *EmittanceGrowth {
	return &EmittanceGrowth{name: "emittance_growth_" + p.String(), plane: p}
}

func (e *EmittanceGrowth) Name() string { return e.name }

func (e *EmittanceGrowth) Observe(r diagnostics.Reduced) {
	eps := e.plane.of(r).Emittance
	if e.samples == 0 {
		e.initial = eps
	}
	e.peak = math.Max(e.peak, eps)
	e.samples++
}

func (e *EmittanceGrowth) Value() float64 {
	if e.samples == 0 || e.initial == 0 {
		return 0
	}
	return e.peak / e.initial
}

func (e *EmittanceGrowth) Reset() {
	e.initial = 0
	e.peak = 0
	e.samples = 0
}

type MaxBeta struct {
	name  string
	plane Plane
	max   float64
}

func NewMaxBeta(p Plane) *MaxBeta {
	return &MaxBeta{name: "max_beta_" + p.String(), plane: p}
}

func (m *MaxBeta) Name() string { return m.name }

func (m *MaxBeta) Observe(r diagnostics.Reduced) {
	m.max = math.Max(m.max, m.plane.of(r).Beta)
}

func (m *MaxBeta) Value() float64 { return m.max }

func (m *MaxBeta) Reset() { m.max = 0 }
