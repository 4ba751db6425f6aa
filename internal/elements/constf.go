package elements

import (
	"math"

	"github.com/san-kum/beamsim/internal/beam"
)

// ConstF is a linear channel with constant focusing in all three planes.
// Kx, Ky, Kt are the focusing wavenumbers [1/m]; zero means no focusing in
// that plane.
type ConstF struct {
	Thick
	Kx, Ky, Kt float64
}

func NewConstF(ds, kx, ky, kt float64, nslice int) (*ConstF, error) {
	t, err := newThick(KindConstF, ds, nslice)
	if err != nil {
		return nil, err
	}
	if err := checkFinite(KindConstF, param{"kx", kx}, param{"ky", ky}, param{"kt", kt}); err != nil {
		return nil, err
	}
	return &ConstF{Thick: t, Kx: kx, Ky: ky, Kt: kt}, nil
}

func (*ConstF) Name() string { return KindConstF.String() }
func (*ConstF) Kind() Kind   { return KindConstF }
func (*ConstF) sealed()      {}

func (f *ConstF) PushParticle(p *beam.Particle, ref *beam.RefPart) {
	ds := f.SliceDs()
	bg := ref.BetaGamma()
	bg2 := bg * bg

	x, px := p.X, p.Px
	p.X = math.Cos(f.Kx*ds)*x + sinOver(f.Kx, ds)*px
	p.Px = -f.Kx*math.Sin(f.Kx*ds)*x + math.Cos(f.Kx*ds)*px

	y, py := p.Y, p.Py
	p.Y = math.Cos(f.Ky*ds)*y + sinOver(f.Ky, ds)*py
	p.Py = -f.Ky*math.Sin(f.Ky*ds)*y + math.Cos(f.Ky*ds)*py

	t, pt := p.T, p.Pt
	p.T = math.Cos(f.Kt*ds)*t + sinOver(f.Kt, ds)/bg2*pt
	p.Pt = -f.Kt*bg2*math.Sin(f.Kt*ds)*t + math.Cos(f.Kt*ds)*pt
}
