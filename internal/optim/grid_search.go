// Package optim scans lattice parameters for the best figure of merit.
package optim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/beamsim/internal/config"
	"github.com/san-kum/beamsim/internal/experiment"
)

var (
	ErrEmptyGrid      = errors.New("optim: empty search grid")
	ErrNoValidPoint   = errors.New("optim: no point produced the metric")
	ErrElementOutside = errors.New("optim: element index out of range")
)

// Param scans one parameter, named by its file key, of one lattice entry.
type Param struct {
	Element int
	Key     string
	Values  []float64
}

func (p Param) String() string {
	return fmt.Sprintf("lattice[%d].%s", p.Element, p.Key)
}

// Point is one evaluated grid point. Err is set when setup or tracking
// failed there.
type Point struct {
	Values  []float64
	Metrics map[string]float64
	Err     error
}

type GridSearch struct {
	params  []Param
	workers int
}

// NewGridSearch scans the product of every parameter's values, running at
// most workers experiments at once.
func NewGridSearch(workers int, params ...Param) *GridSearch {
	return &GridSearch{params: params, workers: max(workers, 1)}
}

// Points returns every combination of values. The last parameter varies
// fastest.
func (g *GridSearch) Points() [][]float64 {
	if len(g.params) == 0 {
		return nil
	}
	points := [][]float64{{}}
	for _, p := range g.params {
		next := make([][]float64, 0, len(points)*len(p.Values))
		for _, pt := range points {
			for _, v := range p.Values {
				next = append(next, append(append([]float64(nil), pt...), v))
			}
		}
		points = next
	}
	return points
}

func (g *GridSearch) apply(cfg *config.Config, values []float64) error {
	for i, p := range g.params {
		if p.Element < 0 || p.Element >= len(cfg.Lattice) {
			return fmt.Errorf("%w: %s", ErrElementOutside, p)
		}
		field, err := cfg.Lattice[p.Element].Param(p.Key)
		if err != nil {
			return err
		}
		*field = values[i]
	}
	return nil
}

// Evaluate tracks base at every grid point. Failures at single points are
// kept in the points; a bad parameter or a canceled ctx aborts the scan.
func (g *GridSearch) Evaluate(ctx context.Context, base *config.Config) ([]Point, error) {
	values := g.Points()
	if len(values) == 0 {
		return nil, ErrEmptyGrid
	}
	if err := g.apply(base.Clone(), values[0]); err != nil {
		return nil, err
	}

	points := make([]Point, len(values))
	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(g.workers)
	for i, v := range values {
		grp.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			points[i] = g.evaluate(ctx, base, v)
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return points, err
	}
	return points, nil
}

func (g *GridSearch) evaluate(ctx context.Context, base *config.Config, values []float64) Point {
	pt := Point{Values: values}
	cfg := base.Clone()
	if err := g.apply(cfg, values); err != nil {
		pt.Err = err
		return pt
	}

	exp := experiment.New(cfg)
	if err := exp.Setup(nil, slog.New(slog.DiscardHandler)); err != nil {
		pt.Err = err
		return pt
	}
	result, err := exp.Run(ctx)
	if err != nil {
		pt.Err = err
		return pt
	}
	pt.Metrics = experiment.Metrics(result)
	return pt
}

// Search evaluates the grid and returns the point with the smallest
// metric along with every evaluated point.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, metric string) (Point, []Point, error) {
	points, err := g.Evaluate(ctx, base)
	if err != nil {
		return Point{}, points, err
	}

	best, bestVal := -1, math.Inf(1)
	var errs []error
	for i, pt := range points {
		if pt.Err != nil {
			errs = append(errs, pt.Err)
			continue
		}
		v, ok := pt.Metrics[metric]
		if !ok || math.IsNaN(v) {
			continue
		}
		if best < 0 || v < bestVal {
			best, bestVal = i, v
		}
	}
	if best < 0 {
		if len(errs) > 0 {
			return Point{}, points, fmt.Errorf("%w %q: %w", ErrNoValidPoint, metric, errors.Join(errs...))
		}
		return Point{}, points, fmt.Errorf("%w %q", ErrNoValidPoint, metric)
	}
	return points[best], points, nil
}
