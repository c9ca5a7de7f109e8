package dataprocessing

import "errors"

var (
	// ErrNoStiffnessFound is returned when no window segment has enough
	// points to fit a line.
	ErrNoStiffnessFound = errors.New("no stiffness region found")

	ErrUnknownColumn = errors.New("unknown column")
	ErrEmptySeries   = errors.New("empty series")
)
