package dataprocessing

// DefaultTrimThreshold is the load below which a post-peak sample ends the curve.
const DefaultTrimThreshold = 5.0

// Trim cuts the post-failure tail. It finds the first maximum of yCol and
// keeps rows up to, but not including, the first later row whose value
// drops below threshold. A table that never drops is returned as is.
func Trim(t *Table, yCol string, threshold float64) (*Table, error) {
	y, err := t.Column(yCol)
	if err != nil {
		return nil, err
	}
	if len(y) == 0 {
		return t, nil
	}

	peak := argMax(y)
	for i := peak + 1; i < len(y); i++ {
		if y[i] < threshold {
			return t.Head(i), nil
		}
	}
	return t, nil
}

// argMax returns the index of the first maximum. Ties must resolve to the
// earliest sample, so the scan is explicit.
func argMax(v []float64) int {
	idx := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[idx] {
			idx = i
		}
	}
	return idx
}

// argMin returns the index of the first minimum.
func argMin(v []float64) int {
	idx := 0
	for i := 1; i < len(v); i++ {
		if v[i] < v[idx] {
			idx = i
		}
	}
	return idx
}
