package beam

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Phase-space indices of a LinearMap.
const (
	IX = iota
	IPx
	IY
	IPy
	IT
	IPt
)

// LinearMap is a 6x6 transfer matrix acting on (x, px, y, py, t, pt).
type LinearMap [6][6]float64

// Identity returns the identity map.
func Identity() LinearMap {
	var m LinearMap
	m.SetIdentity()
	return m
}

// SetIdentity resets m to the identity map in place.
func (m *LinearMap) SetIdentity() {
	for i := range m {
		for j := range m[i] {
			m[i][j] = 0
		}
		m[i][i] = 1
	}
}

// Apply transforms the particle coordinates by m.
func (m *LinearMap) Apply(p *Particle) {
	v := p.Vector()
	var out [6]float64
	for i := 0; i < 6; i++ {
		row := &m[i]
		out[i] = row[0]*v[0] + row[1]*v[1] + row[2]*v[2] +
			row[3]*v[3] + row[4]*v[4] + row[5]*v[5]
	}
	p.SetVector(out)
}

// Mul returns the product a*b, the map that applies b first and then a.
func Mul(a, b LinearMap) LinearMap {
	var out LinearMap
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			var sum float64
			for k := 0; k < 6; k++ {
				sum += a[i][k] * b[k][j]
			}
			out[i][j] = sum
		}
	}
	return out
}

// The row helpers below left-multiply m by an elementary step, so a chain of
// calls composes the steps in the order they are made.

// AddRow adds f times row src to row dst.
func (m *LinearMap) AddRow(dst, src int, f float64) {
	if f == 0 {
		return
	}
	for j := 0; j < 6; j++ {
		m[dst][j] += f * m[src][j]
	}
}

// ScaleRow multiplies row i by f.
func (m *LinearMap) ScaleRow(i int, f float64) {
	for j := 0; j < 6; j++ {
		m[i][j] *= f
	}
}

// RotateRows mixes rows i and j by the angle whose cosine and sine are c and s:
// row i becomes c*i + s*j and row j becomes -s*i + c*j.
func (m *LinearMap) RotateRows(i, j int, c, s float64) {
	for k := 0; k < 6; k++ {
		a, b := m[i][k], m[j][k]
		m[i][k] = c*a + s*b
		m[j][k] = -s*a + c*b
	}
}

// Dense copies m into a gonum matrix.
func (m *LinearMap) Dense() *mat.Dense {
	data := make([]float64, 0, 36)
	for i := range m {
		data = append(data, m[i][:]...)
	}
	return mat.NewDense(6, 6, data)
}

// Det returns the determinant of m.
func (m *LinearMap) Det() float64 {
	return mat.Det(m.Dense())
}

// symplecticForm is J for (x, px, y, py, t, pt) ordering.
func symplecticForm() *mat.Dense {
	j := mat.NewDense(6, 6, nil)
	for k := 0; k < 6; k += 2 {
		j.Set(k, k+1, 1)
		j.Set(k+1, k, -1)
	}
	return j
}

// SymplecticError returns max |M^T J M - J| over all entries.
func (m *LinearMap) SymplecticError() float64 {
	d := m.Dense()
	j := symplecticForm()

	var jm, mtjm mat.Dense
	jm.Mul(j, d)
	mtjm.Mul(d.T(), &jm)
	mtjm.Sub(&mtjm, j)

	maxErr := 0.0
	r, c := mtjm.Dims()
	for i := 0; i < r; i++ {
		for k := 0; k < c; k++ {
			maxErr = math.Max(maxErr, math.Abs(mtjm.At(i, k)))
		}
	}
	return maxErr
}

// Symplectic reports whether m preserves the symplectic form within tol.
func (m *LinearMap) Symplectic(tol float64) bool {
	return m.SymplecticError() <= tol
}
