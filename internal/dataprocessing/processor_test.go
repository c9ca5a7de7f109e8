package dataprocessing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mechprop/internal/shared/testutil"
	"mechprop/pkg/contracts/domain"
)

func TestProcessor_ProcessFile(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	xs, ys := testutil.LinearRegionCurve(100)
	path := testutil.WriteLog(t, t.TempDir(), "specimen.csv", testutil.LogLines(testutil.CurveRows(xs, ys), ","))

	p := NewProcessor(DefaultOptions(), logger)
	analysis, err := p.ProcessFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, len(xs), analysis.Raw.Len())
	// The tail drops to 3 then 1; the first value under 5 ends the curve.
	assert.Equal(t, len(xs)-2, analysis.Trimmed.Len())

	require.NotNil(t, analysis.Stiffness)
	assert.InDelta(t, 100, analysis.Stiffness.MaxSlope, 1e-6)

	assert.InDelta(t, 14.0, analysis.Metrics.PeakValue, 1e-9)
	assert.InDelta(t, 0.14, analysis.Metrics.PeakX, 1e-9)
	assert.Equal(t, domain.Point2D{X: 0, Y: 0}, analysis.Metrics.YieldPoint)
	assert.Greater(t, analysis.Metrics.AreaUnderCurve, 0.0)

	s := analysis.Series()
	assert.Equal(t, domain.ColumnDisplay1, s.XColumn)
	assert.Len(t, s.Y, analysis.Trimmed.Len())

	assert.True(t, logs.ContainsMessage("analysis complete"))
	assert.True(t, logs.ContainsAttr("component", "processor"))
}

func TestProcessor_NoStiffnessIsNotAnError(t *testing.T) {
	// All displacement beyond the stiffness window.
	xs := []float64{0.2, 0.3, 0.4, 0.5}
	ys := []float64{10, 20, 30, 2}
	raw, err := ParseLines(testutil.LogLines(testutil.CurveRows(xs, ys), ","))
	require.NoError(t, err)

	analysis, err := NewProcessor(DefaultOptions(), nil).Process(context.Background(), raw)
	require.NoError(t, err)

	assert.Nil(t, analysis.Stiffness)
	assert.Equal(t, 30.0, analysis.Metrics.PeakValue)
	// Shifted so the curve starts at zero.
	assert.Equal(t, 0.0, analysis.Metrics.YieldPoint.X)
}

func TestProcessor_CustomColumns(t *testing.T) {
	xs, ys := testutil.LinearRegionCurve(100)
	rows := testutil.CurveRows(xs, ys)
	for i := range rows {
		rows[i][4] = rows[i][3] * 2
	}
	raw, err := ParseLines(testutil.LogLines(rows, ","))
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.YColumn = domain.ColumnLoad2
	analysis, err := NewProcessor(opts, nil).Process(context.Background(), raw)
	require.NoError(t, err)

	require.NotNil(t, analysis.Stiffness)
	assert.InDelta(t, 200, analysis.Stiffness.MaxSlope, 1e-6)
	assert.InDelta(t, 28.0, analysis.Metrics.PeakValue, 1e-9)
}

func TestProcessor_Errors(t *testing.T) {
	raw := tableFromXY([]float64{-0.01}, []float64{-1})

	opts := DefaultOptions()
	opts.XColumn = "Strain"
	_, err := NewProcessor(opts, nil).Process(context.Background(), raw)
	assert.ErrorIs(t, err, ErrUnknownColumn)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewProcessor(DefaultOptions(), nil).Process(ctx, raw)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTable(t *testing.T) {
	table := tableFromXY([]float64{1, 2, 3}, []float64{4, 5, 6})

	head := table.Head(2)
	assert.Equal(t, 2, head.Len())
	assert.Equal(t, 3, table.Head(10).Len())

	_, err := table.WithColumn(domain.ColumnLoad1, []float64{1})
	assert.Error(t, err)

	replaced, err := table.WithColumn(domain.ColumnLoad1, []float64{7, 8, 9})
	require.NoError(t, err)
	assert.Equal(t, 7.0, replaced.Row(0).Load1)
	assert.Equal(t, 4.0, table.Row(0).Load1)

	assert.True(t, ValidColumn(domain.ColumnScanTime))
	assert.False(t, ValidColumn("Strain"))
}
