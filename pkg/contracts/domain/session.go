package domain

import (
	"encoding/json"
	"math"
)

// SessionStatus is the lifecycle state of an interactive session.
type SessionStatus string

const (
	SessionComputed SessionStatus = "computed"
	SessionEdited   SessionStatus = "edited"
)

// SessionState is a read-only snapshot of the user-adjustable values.
// Slope fields are nil when the dataset has no stiffness result.
type SessionState struct {
	Status          SessionStatus `json:"status"`
	CustomPointOne  *Point2D      `json:"custom_point_one,omitempty"`
	CustomPointTwo  *Point2D      `json:"custom_point_two,omitempty"`
	CustomSlope     *float64      `json:"-"`
	CalculatedSlope *float64      `json:"-"`
	YieldPoint      Point2D       `json:"yield_point"`
}

// Degenerate reports whether the custom slope is infinite or undefined.
func (s SessionState) Degenerate() bool {
	return s.CustomSlope != nil && (math.IsInf(*s.CustomSlope, 0) || math.IsNaN(*s.CustomSlope))
}

// MarshalJSON encodes non-finite slopes as null with a degenerate flag,
// since JSON has no representation for them.
func (s SessionState) MarshalJSON() ([]byte, error) {
	type alias SessionState
	return json.Marshal(struct {
		alias
		CustomSlope     *float64 `json:"custom_slope"`
		CalculatedSlope *float64 `json:"calculated_slope"`
		Degenerate      bool     `json:"slope_degenerate"`
	}{
		alias:           alias(s),
		CustomSlope:     finiteOrNil(s.CustomSlope),
		CalculatedSlope: finiteOrNil(s.CalculatedSlope),
		Degenerate:      s.Degenerate(),
	})
}

func finiteOrNil(v *float64) *float64 {
	if v == nil || math.IsInf(*v, 0) || math.IsNaN(*v) {
		return nil
	}
	out := *v
	return &out
}
