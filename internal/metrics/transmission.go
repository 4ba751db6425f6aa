package metrics

import "github.com/san-kum/beamsim/internal/diagnostics"

// Transmission is the fraction of the initial particles still in the
// beam at the last snapshot.
type Transmission struct {
	initial, current int
	samples          int
}

func NewTransmission() *Transmission { return &Transmission{} }

func (*Transmission) Name() string { return "transmission" }

func (t *Transmission) Observe(r diagnostics.Reduced) {
	if t.samples == 0 {
		t.initial = r.N
	}
	t.current = r.N
	t.samples++
}

func (t *Transmission) Value() float64 {
	if t.initial == 0 {
		return 0
	}
	return float64(t.current) / float64(t.initial)
}

func (t *Transmission) Reset() {
	t.initial, t.current, t.samples = 0, 0, 0
}

// EnergyGain is the change in reference gamma from the first snapshot to
// the last.
type EnergyGain struct {
	first, last float64
	samples     int
}

func NewEnergyGain() *EnergyGain { return &EnergyGain{} }

func (*EnergyGain) Name() string { return "gamma_gain" }

func (e *EnergyGain) Observe(r diagnostics.Reduced) {
	if e.samples == 0 {
		e.first = r.Gamma
	}
	e.last = r.Gamma
	e.samples++
}

func (e *EnergyGain) Value() float64 { return e.last - e.first }

func (e *EnergyGain) Reset() {
	e.first, e.last, e.samples = 0, 0, 0
}
