package analysis

import (
	"slices"

	"github.com/san-kum/beamsim/internal/beam"
	"github.com/san-kum/beamsim/internal/diagnostics"
	"github.com/san-kum/beamsim/internal/elements"
)

// Point is one crossing of the section.
type Point struct {
	Period int
	Q, P   float64
}

// Section records (q, p) of selected particles each time the beam leaves
// the last element of the lattice.
type Section struct {
	QIdx, PIdx int

	last   int
	ids    map[uint64]bool
	points map[uint64][]Point
}

// NewSection follows the particles with the given IDs, or every particle
// when none are given, through a lattice of latticeLen elements.
func NewSection(latticeLen, qIdx, pIdx int, ids ...uint64) *Section {
	s := &Section{
		QIdx:   qIdx,
		PIdx:   pIdx,
		last:   latticeLen - 1,
		points: make(map[uint64][]Point),
	}
	if len(ids) > 0 {
		s.ids = make(map[uint64]bool, len(ids))
		for _, id := range ids {
			s.ids[id] = true
		}
	}
	return s
}

// OnElement makes a Section a sim.Observer.
func (s *Section) OnElement(period, index int, _ elements.Element, c beam.Container) {
	if index != s.last {
		return
	}
	ps := c.Slice()
	for i := range ps {
		if s.ids != nil && !s.ids[ps[i].ID] {
			continue
		}
		v := ps[i].Vector()
		s.points[ps[i].ID] = append(s.points[ps[i].ID], Point{Period: period, Q: v[s.QIdx], P: v[s.PIdx]})
	}
}

// IDs returns the followed particles that crossed the section at least
// once, in ascending order.
func (s *Section) IDs() []uint64 {
	ids := make([]uint64, 0, len(s.points))
	for id := range s.points {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Orbit returns the crossings of one particle in period order.
func (s *Section) Orbit(id uint64) []Point {
	return s.points[id]
}

// ASCII draws every crossing of every particle on one portrait.
func (s *Section) ASCII(width, height int) string {
	var ps []beam.Particle
	for _, id := range s.IDs() {
		for _, pt := range s.points[id] {
			var v [6]float64
			v[s.QIdx], v[s.PIdx] = pt.Q, pt.P
			var p beam.Particle
			p.SetVector(v)
			ps = append(ps, p)
		}
	}
	if len(ps) == 0 {
		return "no crossings recorded"
	}
	return diagnostics.Portrait(ps, s.QIdx, s.PIdx, width, height)
}
