package testutil

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Preamble is the five header lines an instrument writes before samples.
var Preamble = []string{
	"Test Name: compression",
	"Operator: lab",
	"Units: mm, kN",
	"Sample Rate: 10 Hz",
	"Index,Elapsed Time,Scan Time,Display 1,Load 1,Load 2",
}

// CurveRows converts a normalized displacement/load curve into raw rows
// the way the instrument records them: both channels negated.
func CurveRows(xs, ys []float64) [][5]float64 {
	rows := make([][5]float64, len(xs))
	for i := range xs {
		t := float64(i) * 0.1
		rows[i] = [5]float64{t, t, 0 - xs[i], 0 - ys[i], 0}
	}
	return rows
}

// LogLines renders rows behind the preamble, prefixed by a sample index.
func LogLines(rows [][5]float64, delim string) []string {
	lines := append([]string(nil), Preamble...)
	for i, row := range rows {
		fields := []string{strconv.Itoa(i)}
		for _, v := range row {
			fields = append(fields, strconv.FormatFloat(v, 'g', -1, 64))
		}
		lines = append(lines, strings.Join(fields, delim))
	}
	return lines
}

// WriteLog writes lines to dir/name and returns the path.
func WriteLog(t *testing.T, dir, name string, lines []string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

// LinearRegionCurve returns a curve rising with the given slope through
// the stiffness window, then bending over to a peak and unloading below
// the trim threshold.
func LinearRegionCurve(slope float64) (xs, ys []float64) {
	for x := 0.0; x <= 0.1+1e-9; x += 0.0025 {
		xs = append(xs, round(x))
		ys = append(ys, slope*round(x))
	}
	top := ys[len(ys)-1]
	for i := 1; i <= 8; i++ {
		xs = append(xs, round(0.1+float64(i)*0.005))
		ys = append(ys, top+float64(i)*0.5)
	}
	for _, y := range []float64{top - 1, top / 2, 3, 1} {
		xs = append(xs, round(xs[len(xs)-1]+0.005))
		ys = append(ys, y)
	}
	return xs, ys
}

// NoisyStiffnessCurve returns a short curve whose fitted stiffness (98)
// differs from the chord between its outermost inliers (0.02,2) and
// (0.04,4). It peaks outside the window and then unloads.
func NoisyStiffnessCurve() (xs, ys []float64) {
	xs = []float64{0, 0.02, 0.025, 0.03, 0.035, 0.04, 0.15, 0.2}
	ys = []float64{0, 2.00, 2.52, 2.98, 3.53, 4.00, 20, 1}
	return xs, ys
}

func round(v float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 6, 64), 64)
	return r
}
