package diagnostics

import (
	"errors"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/floats"
)

var ErrShortSeries = errors.New("diagnostics: need at least 8 turns for a tune estimate")

// PowerSpectrum returns the magnitude of the one-sided spectrum of data
// after removing its mean and applying a Hann window.
func PowerSpectrum(data []float64) []float64 {
	x := make([]float64, len(data))
	copy(x, data)
	mean := floats.Sum(x) / float64(len(x))
	floats.AddConst(-mean, x)
	window.Apply(x, window.Hann)

	spec := fft.FFTReal(x)
	ps := make([]float64, len(spec)/2+1)
	for i := range ps {
		ps[i] = cmplx.Abs(spec[i])
	}
	return ps
}

// Tune estimates the fractional tune in [0, 0.5] from turn-by-turn
// centroid data. The peak bin is refined by parabolic interpolation.
func Tune(centroids []float64) (float64, error) {
	n := len(centroids)
	if n < 8 {
		return 0, ErrShortSeries
	}

	ps := PowerSpectrum(centroids)
	k := floats.MaxIdx(ps[1:]) + 1

	delta := 0.0
	if k > 0 && k < len(ps)-1 {
		a, b, c := ps[k-1], ps[k], ps[k+1]
		if d := a - 2*b + c; d != 0 {
			delta = 0.5 * (a - c) / d
		}
	}
	return (float64(k) + delta) / float64(n), nil
}
