package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mechprop/pkg/contracts/domain"
)

func TestTrim(t *testing.T) {
	tests := []struct {
		name    string
		y       []float64
		wantLen int
	}{
		{name: "drops tail after first low sample", y: []float64{1, 2, 10, 3, 4, 2, 1}, wantLen: 3},
		{name: "never drops", y: []float64{1, 6, 10, 8, 5}, wantLen: 5},
		{name: "threshold is strict", y: []float64{10, 5, 4.999}, wantLen: 2},
		{name: "first maximum used", y: []float64{10, 3, 10, 8}, wantLen: 1},
		{name: "peak at end", y: []float64{1, 2, 3}, wantLen: 3},
		{name: "single row", y: []float64{3}, wantLen: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := make([]float64, len(tt.y))
			out, err := Trim(tableFromXY(x, tt.y), domain.ColumnLoad1, DefaultTrimThreshold)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLen, out.Len())
		})
	}
}
