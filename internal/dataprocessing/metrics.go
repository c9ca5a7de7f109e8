package dataprocessing

import (
	"sort"

	"gonum.org/v1/gonum/integrate"

	"mechprop/pkg/contracts/domain"
)

// ComputeMetrics derives peak, yield point and area from a trimmed table.
func ComputeMetrics(t *Table, xCol, yCol string) (domain.CurveMetrics, error) {
	s, err := t.Series(xCol, yCol)
	if err != nil {
		return domain.CurveMetrics{}, err
	}
	if len(s.X) == 0 {
		return domain.CurveMetrics{}, ErrEmptySeries
	}

	peak := argMax(s.Y)
	yield := argMin(s.X)

	return domain.CurveMetrics{
		PeakValue:      s.Y[peak],
		PeakX:          s.X[peak],
		AreaUnderCurve: AreaUnderCurve(s.X, s.Y),
		YieldPoint:     domain.Point2D{X: s.X[yield], Y: s.Y[yield]},
	}, nil
}

// AreaUnderCurve integrates y over x with the trapezoid rule after
// collapsing repeated x values to the mean of their y values. The result
// is signed; fewer than two distinct x values give zero.
func AreaUnderCurve(x, y []float64) float64 {
	type group struct {
		sum float64
		n   int
	}
	groups := make(map[float64]*group, len(x))
	keys := make([]float64, 0, len(x))
	for i, xv := range x {
		g, ok := groups[xv]
		if !ok {
			g = &group{}
			groups[xv] = g
			keys = append(keys, xv)
		}
		g.sum += y[i]
		g.n++
	}
	if len(keys) < 2 {
		return 0
	}

	sort.Float64s(keys)
	means := make([]float64, len(keys))
	for i, k := range keys {
		g := groups[k]
		means[i] = g.sum / float64(g.n)
	}
	return integrate.Trapezoidal(keys, means)
}
