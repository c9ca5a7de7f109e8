package dataprocessing

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"mechprop/pkg/contracts/domain"
)

// Segment is a closed x interval [Low, High].
type Segment struct {
	Low  float64
	High float64
}

// StiffnessOptions controls the stiffness search.
type StiffnessOptions struct {
	// WindowLow and WindowHigh bound the candidate points exclusively.
	WindowLow  float64
	WindowHigh float64

	// Segments are fitted independently; a point on a shared bound
	// belongs to both neighbours.
	Segments []Segment

	// InlierTolerance is the strict vertical distance for inliers.
	InlierTolerance float64

	// Extension is the fraction of the anchor span added on each side
	// of the drawn line.
	Extension float64
}

// DefaultStiffnessOptions returns the standard window of four segments
// over (0.01, 0.1).
func DefaultStiffnessOptions() StiffnessOptions {
	return StiffnessOptions{
		WindowLow:  0.01,
		WindowHigh: 0.1,
		Segments: []Segment{
			{Low: 0.01, High: 0.0325},
			{Low: 0.0325, High: 0.055},
			{Low: 0.055, High: 0.0775},
			{Low: 0.0775, High: 0.1},
		},
		InlierTolerance: 0.05,
		Extension:       0.5,
	}
}

// EstimateStiffness finds the steepest linear region of the curve.
//
// Each segment of the window is fitted by least squares and the largest
// slope kept. A line of that slope is then passed through every candidate
// point in turn; the placement that keeps the most points within the
// tolerance wins, earliest first on ties. The outermost inliers become the
// anchors. ErrNoStiffnessFound is returned when no segment can be fitted.
func EstimateStiffness(x, y []float64, opts StiffnessOptions) (domain.StiffnessResult, error) {
	if len(x) != len(y) {
		return domain.StiffnessResult{}, fmt.Errorf("series length mismatch: %d x values, %d y values", len(x), len(y))
	}

	pts := make([]domain.Point2D, 0, len(x))
	for i := range x {
		if x[i] > opts.WindowLow && x[i] < opts.WindowHigh {
			pts = append(pts, domain.Point2D{X: x[i], Y: y[i]})
		}
	}
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].X < pts[j].X })

	slope, ok := maxSegmentSlope(pts, opts.Segments)
	if !ok {
		return domain.StiffnessResult{}, ErrNoStiffnessFound
	}

	inliers := bestInliers(pts, slope, opts.InlierTolerance)
	if len(inliers) == 0 {
		return domain.StiffnessResult{}, ErrNoStiffnessFound
	}
	one, two := inliers[0], inliers[0]
	for _, p := range inliers[1:] {
		if p.X < one.X {
			one = p
		}
		if p.X > two.X {
			two = p
		}
	}

	span := two.X - one.X
	return domain.StiffnessResult{
		MaxSlope:     slope,
		AnchorOne:    one,
		AnchorTwo:    two,
		ExtendedLine: domain.LineThrough(slope, one, one.X-opts.Extension*span, two.X+opts.Extension*span),
		InlierCount:  len(inliers),
	}, nil
}

// maxSegmentSlope fits each segment holding at least two points and
// returns the largest slope. A segment whose points share one x value has
// no finite fit and counts as flat.
func maxSegmentSlope(pts []domain.Point2D, segments []Segment) (float64, bool) {
	best := math.Inf(-1)
	found := false
	for _, seg := range segments {
		var xs, ys []float64
		for _, p := range pts {
			if p.X >= seg.Low && p.X <= seg.High {
				xs = append(xs, p.X)
				ys = append(ys, p.Y)
			}
		}
		if len(xs) < 2 {
			continue
		}

		_, beta := stat.LinearRegression(xs, ys, nil, false)
		if math.IsNaN(beta) || math.IsInf(beta, 0) {
			beta = 0
		}
		if beta > best {
			best = beta
			found = true
		}
	}
	return best, found
}

// bestInliers returns the largest set of points lying within tol of a
// line of the given slope through one of the points.
func bestInliers(pts []domain.Point2D, slope, tol float64) []domain.Point2D {
	var best []domain.Point2D
	for _, anchor := range pts {
		offset := anchor.Y - slope*anchor.X
		var inliers []domain.Point2D
		for _, p := range pts {
			if math.Abs(p.Y-(slope*p.X+offset)) < tol {
				inliers = append(inliers, p)
			}
		}
		if len(inliers) > len(best) {
			best = inliers
		}
	}
	return best
}
