package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mechprop/pkg/contracts/domain"
)

func TestAreaUnderCurve(t *testing.T) {
	tests := []struct {
		name string
		x, y []float64
		want float64
	}{
		{name: "triangle", x: []float64{0, 1, 2}, y: []float64{0, 1, 0}, want: 1},
		{name: "unsorted input", x: []float64{2, 0, 1}, y: []float64{0, 0, 1}, want: 1},
		{name: "repeated x averaged", x: []float64{0, 1, 1, 2}, y: []float64{0, 1, 3, 0}, want: 2},
		{name: "signed", x: []float64{0, 1, 2}, y: []float64{0, -1, 0}, want: -1},
		{name: "single distinct x", x: []float64{1, 1, 1}, y: []float64{4, 5, 6}, want: 0},
		{name: "empty", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, AreaUnderCurve(tt.x, tt.y), 1e-9)
		})
	}
}

func TestComputeMetrics(t *testing.T) {
	table := tableFromXY(
		[]float64{0.02, 0.01, 0.03, 0.01, 0.04},
		[]float64{1, 2, 9, 5, 9},
	)

	m, err := ComputeMetrics(table, domain.ColumnDisplay1, domain.ColumnLoad1)
	require.NoError(t, err)

	assert.Equal(t, 9.0, m.PeakValue)
	assert.Equal(t, 0.03, m.PeakX, "first maximum wins")
	assert.Equal(t, domain.Point2D{X: 0.01, Y: 2}, m.YieldPoint, "first minimum x wins")
	assert.InDelta(t, AreaUnderCurve(
		[]float64{0.02, 0.01, 0.03, 0.01, 0.04},
		[]float64{1, 2, 9, 5, 9},
	), m.AreaUnderCurve, 1e-12)
}

func TestComputeMetrics_Errors(t *testing.T) {
	_, err := ComputeMetrics(NewTable(nil), domain.ColumnDisplay1, domain.ColumnLoad1)
	assert.ErrorIs(t, err, ErrEmptySeries)

	_, err = ComputeMetrics(tableFromXY([]float64{1}, []float64{1}), "Strain", domain.ColumnLoad1)
	assert.ErrorIs(t, err, ErrUnknownColumn)
}
