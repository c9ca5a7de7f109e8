package session

import (
	"math"

	"mechprop/pkg/contracts/domain"
)

// NearestSample returns the sample whose x is closest to cursorX, the
// earliest one on ties. ok is false for an empty series.
func NearestSample(s domain.Series, cursorX float64) (p domain.Point2D, ok bool) {
	best := -1
	bestDist := math.Inf(1)
	for i, x := range s.X {
		if d := math.Abs(x - cursorX); d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return domain.Point2D{}, false
	}
	return domain.Point2D{X: s.X[best], Y: s.Y[best]}, true
}

// Snap moves the named point to the sample nearest cursorX.
func (s *State) Snap(which Point, series domain.Series, cursorX float64) (domain.Point2D, error) {
	p, ok := NearestSample(series, cursorX)
	if !ok {
		return domain.Point2D{}, ErrEmptySeries
	}
	if err := s.Set(which, p); err != nil {
		return domain.Point2D{}, err
	}
	return p, nil
}
