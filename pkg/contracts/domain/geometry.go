package domain

import "math"

// Point2D is a point in displacement/load space.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LineSegment is a straight segment between two points.
type LineSegment struct {
	Start Point2D `json:"start"`
	End   Point2D `json:"end"`
}

// LineThrough returns the segment of the line with the given slope that
// passes through p, evaluated at x1 and x2.
func LineThrough(slope float64, p Point2D, x1, x2 float64) LineSegment {
	offset := p.Y - slope*p.X
	return LineSegment{
		Start: Point2D{X: x1, Y: slope*x1 + offset},
		End:   Point2D{X: x2, Y: slope*x2 + offset},
	}
}

// Slope returns the slope between two points, or +Inf when they share an
// x coordinate.
func Slope(a, b Point2D) float64 {
	if a.X == b.X {
		return math.Inf(1)
	}
	return (b.Y - a.Y) / (b.X - a.X)
}
