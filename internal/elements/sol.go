package elements

import (
	"math"

	"github.com/san-kum/beamsim/internal/beam"
)

// Sol is a linear hard-edge solenoid. Ks is the field strength, in 1/m
// (B/Brho) for UnitMADX or Tesla for UnitMaryLie.
type Sol struct {
	Thick
	Ks   float64
	Unit Unit
}

func NewSol(ds, ks float64, unit Unit, nslice int) (*Sol, error) {
	t, err := newThick(KindSol, ds, nslice)
	if err != nil {
		return nil, err
	}
	if err := checkFinite(KindSol, param{"ks", ks}); err != nil {
		return nil, err
	}
	if err := checkUnit(KindSol, unit); err != nil {
		return nil, err
	}
	return &Sol{Thick: t, Ks: ks, Unit: unit}, nil
}

func (*Sol) Name() string { return KindSol.String() }
func (*Sol) Kind() Kind   { return KindSol }
func (*Sol) sealed()      {}

func (s *Sol) PushParticle(p *beam.Particle, ref *beam.RefPart) {
	ds := s.SliceDs()
	bg := ref.BetaGamma()
	p.T += ds / (bg * bg) * p.Pt

	alpha := normalized(s.Ks, s.Unit, ref) / 2
	if alpha == 0 {
		p.X += ds * p.Px
		p.Y += ds * p.Py
		return
	}

	theta := alpha * ds
	cs, sn := math.Cos(theta), math.Sin(theta)
	cc, ss, sc := cs*cs, sn*sn, sn*cs

	x, px, y, py := p.X, p.Px, p.Y, p.Py
	p.X = cc*x + sc/alpha*px + sc*y + ss/alpha*py
	p.Px = -alpha*sc*x + cc*px - alpha*ss*y + sc*py
	p.Y = -sc*x - ss/alpha*px + cc*y + sc/alpha*py
	p.Py = alpha*ss*x - sc*px - alpha*sc*y + cc*py
}
