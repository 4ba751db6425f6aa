package integrators

// Field evaluates the derivative of x with respect to s into dx.
type Field func(s float64, x, dx []float64)

// RK4 is a classical fourth-order Runge-Kutta stepper. It is not
// symplectic and serves as a numerical reference for the closed-form maps.
type RK4 struct {
	k1, k2, k3, k4 []float64
	scratch        []float64
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make([]float64, n)
		r.k2 = make([]float64, n)
		r.k3 = make([]float64, n)
		r.k4 = make([]float64, n)
		r.scratch = make([]float64, n)
	}
}

// Step advances x in place from s to s+ds.
func (r *RK4) Step(f Field, x []float64, s, ds float64) {
	n := len(x)
	r.ensureScratch(n)

	f(s, x, r.k1)

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + ds*0.5*r.k1[i]
	}
	f(s+ds*0.5, r.scratch, r.k2)

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + ds*0.5*r.k2[i]
	}
	f(s+ds*0.5, r.scratch, r.k3)

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + ds*r.k3[i]
	}
	f(s+ds, r.scratch, r.k4)

	ds6 := ds / 6.0
	for i := 0; i < n; i++ {
		x[i] += ds6 * (r.k1[i] + 2*r.k2[i] + 2*r.k3[i] + r.k4[i])
	}
}

// Integrate advances x in place from s0 to s1 in n equal steps.
func (r *RK4) Integrate(f Field, x []float64, s0, s1 float64, n int) {
	ds := (s1 - s0) / float64(n)
	for i := 0; i < n; i++ {
		r.Step(f, x, s0+float64(i)*ds, ds)
	}
}
