package dataprocessing

import (
	"gonum.org/v1/gonum/floats"
)

// OriginTolerance is the largest starting displacement left unshifted.
const OriginTolerance = 0.005

// Normalize flips the sign of the x and y columns and, when the first x
// exceeds OriginTolerance, shifts x so the curve starts at zero.
//
// Applying it twice does not return the input: the shift is not undone.
func Normalize(t *Table, xCol, yCol string) (*Table, error) {
	x, err := t.Column(xCol)
	if err != nil {
		return nil, err
	}
	y, err := t.Column(yCol)
	if err != nil {
		return nil, err
	}

	floats.Scale(-1, x)
	floats.Scale(-1, y)
	if len(x) > 0 && x[0] > OriginTolerance {
		floats.AddConst(-x[0], x)
	}

	out, err := t.WithColumn(xCol, x)
	if err != nil {
		return nil, err
	}
	return out.WithColumn(yCol, y)
}
