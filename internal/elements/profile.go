package elements

import (
	"fmt"
	"math"
)

// FieldProfile is an on-axis field shape over an element of length L,
// given as a Fourier series in u = z - L/2:
//
//	f(u) = Cos[0]/2 + sum_n Cos[n] cos(2 pi n u / L) + Sin[n] sin(2 pi n u / L)
//
// Sin[0] is ignored. The field is zero outside [0, L].
type FieldProfile struct {
	Cos []float64 `yaml:"cos" toml:"cos" json:"cos"`
	Sin []float64 `yaml:"sin" toml:"sin" json:"sin"`
}

// BellProfile is 0.5 + 0.5 cos(2 pi u / L): one at the center and zero
// with zero slope at both ends.
func BellProfile() FieldProfile {
	return FieldProfile{Cos: []float64{1, 0.5}}
}

// FlatProfile is f = 1 everywhere inside the element, the hard-edge limit.
func FlatProfile() FieldProfile {
	return FieldProfile{Cos: []float64{2}}
}

func (f FieldProfile) validate(kind Kind) error {
	if len(f.Cos) == 0 {
		return fmt.Errorf("%w: %s profile needs at least one cosine coefficient", ErrInvalidParameter, kind)
	}
	for i, c := range f.Cos {
		if err := checkFinite(kind, param{fmt.Sprintf("cos[%d]", i), c}); err != nil {
			return err
		}
	}
	for i, s := range f.Sin {
		if err := checkFinite(kind, param{fmt.Sprintf("sin[%d]", i), s}); err != nil {
			return err
		}
	}
	return nil
}

// Eval returns the profile value and its z derivative at z in an element
// of length length.
func (f FieldProfile) Eval(z, length float64) (v, dv float64) {
	if z < 0 || z > length || len(f.Cos) == 0 {
		return 0, 0
	}
	u := z - length/2
	w := 2 * math.Pi / length

	v = f.Cos[0] / 2
	n := max(len(f.Cos), len(f.Sin))
	for j := 1; j < n; j++ {
		a, b := f.coef(j)
		s, c := math.Sincos(float64(j) * w * u)
		v += a*c + b*s
		dv += float64(j) * w * (b*c - a*s)
	}
	return v, dv
}

func (f FieldProfile) coef(j int) (a, b float64) {
	if j < len(f.Cos) {
		a = f.Cos[j]
	}
	if j < len(f.Sin) {
		b = f.Sin[j]
	}
	return a, b
}
