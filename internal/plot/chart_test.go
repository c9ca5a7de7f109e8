package plot

import (
	"bytes"
	"image/png"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mechprop/pkg/contracts/domain"
)

func figure() Figure {
	one := domain.Point2D{X: 0.0125, Y: 1.25}
	two := domain.Point2D{X: 0.1, Y: 10}
	slope := 100.0
	return Figure{
		Title: "specimen",
		Series: domain.Series{
			XColumn: domain.ColumnDisplay1,
			YColumn: domain.ColumnLoad1,
			X:       []float64{0, 0.025, 0.05, 0.075, 0.1, 0.12},
			Y:       []float64{0, 2.5, 5, 7.5, 10, 12},
		},
		Stiffness: &domain.StiffnessResult{
			MaxSlope:  100,
			AnchorOne: one,
			AnchorTwo: two,
			ExtendedLine: domain.LineSegment{
				Start: domain.Point2D{X: -0.03125, Y: -3.125},
				End:   domain.Point2D{X: 0.14375, Y: 14.375},
			},
		},
		Metrics: domain.CurveMetrics{PeakValue: 12, PeakX: 0.12},
		Session: &domain.SessionState{
			CustomPointOne: &one,
			CustomPointTwo: &two,
			CustomSlope:    &slope,
		},
		Width:  400,
		Height: 300,
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Figure)
	}{
		{name: "full figure"},
		{name: "no stiffness", mutate: func(f *Figure) { f.Stiffness = nil }},
		{name: "no session", mutate: func(f *Figure) { f.Session = nil }},
		{name: "vertical custom slope", mutate: func(f *Figure) {
			inf := math.Inf(1)
			f.Session.CustomSlope = &inf
		}},
		{name: "single sample", mutate: func(f *Figure) {
			f.Series.X, f.Series.Y = []float64{0}, []float64{0}
			f.Stiffness, f.Session = nil, nil
			f.Metrics = domain.CurveMetrics{}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := figure()
			if tt.mutate != nil {
				tt.mutate(&f)
			}
			var buf bytes.Buffer
			require.NoError(t, Render(&buf, f))

			img, err := png.Decode(&buf)
			require.NoError(t, err)
			assert.Equal(t, 400, img.Bounds().Dx())
			assert.Equal(t, 300, img.Bounds().Dy())
		})
	}
}

func TestRender_Errors(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, Render(&buf, Figure{}), ErrNoSamples)

	f := figure()
	f.Series.Y = f.Series.Y[:2]
	assert.ErrorContains(t, Render(&buf, f), "length mismatch")
}

func TestCustomLine(t *testing.T) {
	f := figure()
	seg, ok := customLine(f.Session, span{min: 0, max: 0.2})
	require.True(t, ok)
	assert.InDelta(t, 0, seg.Start.Y, 1e-12)
	assert.InDelta(t, 20, seg.End.Y, 1e-12)

	f.Session.CustomSlope = nil
	_, ok = customLine(f.Session, span{min: 0, max: 1})
	assert.False(t, ok)
}

func TestSpanPadded(t *testing.T) {
	r := bounds([]float64{2, 2, math.NaN()}).padded()
	assert.Equal(t, 1.0, r.Min)
	assert.Equal(t, 3.0, r.Max)

	r = bounds(nil).padded()
	assert.InDelta(t, -0.05, r.Min, 1e-12)
	assert.InDelta(t, 1.05, r.Max, 1e-12)
}
