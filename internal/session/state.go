// Package session holds the user-adjustable overlay on top of a computed
// analysis: two custom slope points and a yield point, with reset back to
// the computed values.
package session

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"mechprop/pkg/contracts/domain"
)

var (
	// ErrDegenerateSlope is returned when the custom points share an x
	// coordinate. The stored slope is +Inf in that case.
	ErrDegenerateSlope = errors.New("custom points share an x coordinate")

	// ErrNoSlopePoints is returned when a slope is requested before both
	// custom points exist, which happens when no stiffness was found.
	ErrNoSlopePoints = errors.New("custom slope points are not set")

	ErrUnknownPoint = errors.New("unknown point")
	ErrEmptySeries  = errors.New("series has no samples")
)

// Point names an editable point.
type Point string

const (
	PointOne   Point = "one"
	PointTwo   Point = "two"
	PointYield Point = "yield"
)

type values struct {
	status domain.SessionStatus
	one    *domain.Point2D
	two    *domain.Point2D
	slope  *float64
	yield  domain.Point2D
}

func (v values) clone() values {
	out := v
	if v.one != nil {
		p := *v.one
		out.one = &p
	}
	if v.two != nil {
		p := *v.two
		out.two = &p
	}
	if v.slope != nil {
		s := *v.slope
		out.slope = &s
	}
	return out
}

// State is safe for concurrent use.
type State struct {
	mu         sync.RWMutex
	seed       values
	current    values
	calculated *float64
}

// New seeds a session from computed results. The custom slope starts at
// the fitted slope, not the chord between the anchors. A nil stiffness
// leaves the slope points and slope absent.
func New(stiffness *domain.StiffnessResult, metrics domain.CurveMetrics) *State {
	seed := values{
		status: domain.SessionComputed,
		yield:  metrics.YieldPoint,
	}

	var calculated *float64
	if stiffness != nil {
		one, two := stiffness.AnchorOne, stiffness.AnchorTwo
		slope, maxSlope := stiffness.MaxSlope, stiffness.MaxSlope
		seed.one, seed.two, seed.slope = &one, &two, &slope
		calculated = &maxSlope
	}

	return &State{
		seed:       seed,
		current:    seed.clone(),
		calculated: calculated,
	}
}

// SetCustomPoint moves one of the slope points and recomputes the custom
// slope. Any coordinate is accepted. Points sharing an x coordinate are not
// an error here; the stored slope is +Inf and SessionState.Degenerate
// reports it.
func (s *State) SetCustomPoint(which Point, p domain.Point2D) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch which {
	case PointOne:
		s.current.one = &p
	case PointTwo:
		s.current.two = &p
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPoint, which)
	}
	s.current.status = domain.SessionEdited
	_, _ = s.recomputeLocked()
	return nil
}

// SetYieldPoint moves the yield point.
func (s *State) SetYieldPoint(p domain.Point2D) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current.yield = p
	s.current.status = domain.SessionEdited
}

// Set moves any editable point by name.
func (s *State) Set(which Point, p domain.Point2D) error {
	if which == PointYield {
		s.SetYieldPoint(p)
		return nil
	}
	return s.SetCustomPoint(which, p)
}

// RecomputeCustomSlope returns (y2-y1)/(x2-x1) for the custom points and
// stores it. Equal x values store +Inf and return ErrDegenerateSlope along
// with the value.
func (s *State) RecomputeCustomSlope() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.recomputeLocked()
}

func (s *State) recomputeLocked() (float64, error) {
	if s.current.one == nil || s.current.two == nil {
		return 0, ErrNoSlopePoints
	}

	slope := domain.Slope(*s.current.one, *s.current.two)
	s.current.slope = &slope
	if math.IsInf(slope, 0) {
		return slope, ErrDegenerateSlope
	}
	return slope, nil
}

// Reset discards every edit.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = s.seed.clone()
}

// Snapshot returns a copy of the current values.
func (s *State) Snapshot() domain.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v := s.current.clone()
	state := domain.SessionState{
		Status:         v.status,
		CustomPointOne: v.one,
		CustomPointTwo: v.two,
		CustomSlope:    v.slope,
		YieldPoint:     v.yield,
	}
	if s.calculated != nil {
		c := *s.calculated
		state.CalculatedSlope = &c
	}
	return state
}
