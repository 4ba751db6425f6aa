package sim

import (
	"errors"
	"fmt"

	"github.com/san-kum/beamsim/internal/beam"
	"github.com/san-kum/beamsim/internal/diagnostics"
	"github.com/san-kum/beamsim/internal/elements"
)

var ErrInvalidConfig = errors.New("sim: invalid tracking configuration")

// TrackingError wraps an error with the lattice position where it
// occurred.
type TrackingError struct {
	Period  int
	Element int
	Name    string
	S       float64
	Wrapped error
}

func (e *TrackingError) Error() string {
	return fmt.Sprintf("period %d, element %d (%s) at s=%.6g m: %v", e.Period, e.Element, e.Name, e.S, e.Wrapped)
}

func (e *TrackingError) Unwrap() error {
	return e.Wrapped
}

// SpaceCharge is applied after every slice of a thick element with the
// slice length. The solver itself lives outside this module.
type SpaceCharge interface {
	Kick(c beam.Container, ds float64)
}

// Observer is notified after every element.
type Observer interface {
	OnElement(period, index int, el elements.Element, c beam.Container)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(period, index int, el elements.Element, c beam.Container)

func (f ObserverFunc) OnElement(period, index int, el elements.Element, c beam.Container) {
	f(period, index, el, c)
}

type Config struct {
	Periods int
	// SliceDiagnostics also records the beam between the slices of thick
	// elements.
	SliceDiagnostics bool
}

// Centroids holds the beam centroid at the end of every period.
type Centroids struct {
	X []float64 `json:"x"`
	Y []float64 `json:"y"`
	T []float64 `json:"t"`
}

type Result struct {
	History   []diagnostics.Reduced `json:"history"`
	Centroids Centroids             `json:"centroids"`
	Periods   int                   `json:"periods"`
	Steps     int                   `json:"steps"`
	Lost      int                   `json:"lost"`
}

// Final returns the last recorded beam state.
func (r *Result) Final() diagnostics.Reduced {
	if len(r.History) == 0 {
		return diagnostics.Reduced{}
	}
	return r.History[len(r.History)-1]
}
