package plot

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"mechprop/pkg/contracts/domain"
)

const (
	DefaultWidth  = 1024
	DefaultHeight = 640
)

var ErrNoSamples = errors.New("plot: no samples")

// Figure is the data drawn on one chart. Stiffness and Session are optional.
type Figure struct {
	Title     string
	Series    domain.Series
	Stiffness *domain.StiffnessResult
	Metrics   domain.CurveMetrics
	Session   *domain.SessionState
	Width     int
	Height    int
}

func pointStyle(col drawing.Color, size float64) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    size,
		DotColor:    col,
	}
}

func lineStyle(col drawing.Color, dashed bool) chart.Style {
	st := chart.Style{StrokeColor: col, StrokeWidth: 2}
	if dashed {
		st.StrokeDashArray = []float64{6, 4}
	}
	return st
}

// markers builds a dot series. go-chart needs two values to compute a
// range, so a lone marker is drawn twice.
func markers(name string, col drawing.Color, pts ...domain.Point2D) chart.ContinuousSeries {
	xs := make([]float64, 0, len(pts)+1)
	ys := make([]float64, 0, len(pts)+1)
	for _, p := range pts {
		xs = append(xs, p.X)
		ys = append(ys, p.Y)
	}
	if len(pts) == 1 {
		xs = append(xs, pts[0].X)
		ys = append(ys, pts[0].Y)
	}
	return chart.ContinuousSeries{Name: name, XValues: xs, YValues: ys, Style: pointStyle(col, 6)}
}

// Render draws the figure as PNG into w.
func Render(w io.Writer, f Figure) error {
	s := f.Series
	if len(s.X) == 0 {
		return ErrNoSamples
	}
	if len(s.X) != len(s.Y) {
		return fmt.Errorf("plot: series length mismatch: %d x values, %d y values", len(s.X), len(s.Y))
	}

	sampleX, sampleY := s.X, s.Y
	if len(s.X) == 1 {
		sampleX = []float64{s.X[0], s.X[0]}
		sampleY = []float64{s.Y[0], s.Y[0]}
	}
	series := []chart.Series{
		chart.ContinuousSeries{Name: "samples", XValues: sampleX, YValues: sampleY, Style: pointStyle(chart.ColorBlue, 2)},
	}

	xr, yr := bounds(s.X), bounds(s.Y)

	if st := f.Stiffness; st != nil {
		line := st.ExtendedLine
		series = append(series,
			chart.ContinuousSeries{
				Name:    fmt.Sprintf("stiffness %.4g", st.MaxSlope),
				XValues: []float64{line.Start.X, line.End.X},
				YValues: []float64{line.Start.Y, line.End.Y},
				Style:   lineStyle(chart.ColorRed, false),
			},
			markers("anchors", chart.ColorRed, st.AnchorOne, st.AnchorTwo),
		)
	}

	if ss := f.Session; ss != nil {
		if seg, ok := customLine(ss, xr); ok {
			series = append(series, chart.ContinuousSeries{
				Name:    "custom slope",
				XValues: []float64{seg.Start.X, seg.End.X},
				YValues: []float64{seg.Start.Y, seg.End.Y},
				Style:   lineStyle(chart.ColorOrange, true),
			})
		}
		if ss.CustomPointOne != nil && ss.CustomPointTwo != nil {
			series = append(series, markers("custom points", chart.ColorOrange, *ss.CustomPointOne, *ss.CustomPointTwo))
		}
		series = append(series, markers("yield", chart.ColorGreen, ss.YieldPoint))
	} else {
		series = append(series, markers("yield", chart.ColorGreen, f.Metrics.YieldPoint))
	}

	series = append(series, markers("peak", chart.ColorBlack, domain.Point2D{X: f.Metrics.PeakX, Y: f.Metrics.PeakValue}))

	width, height := f.Width, f.Height
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	for _, sr := range series[1:] {
		cs := sr.(chart.ContinuousSeries)
		xr = xr.extend(cs.XValues...)
		yr = yr.extend(cs.YValues...)
	}

	ch := chart.Chart{
		Title:      f.Title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Name: s.XColumn, Range: xr.padded()},
		YAxis:      chart.YAxis{Name: s.YColumn, Range: yr.padded()},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("plot: render: %w", err)
	}
	return nil
}

// customLine spans the user's slope across the sample range through
// custom point one. Vertical and missing slopes are not drawn.
func customLine(ss *domain.SessionState, xr span) (domain.LineSegment, bool) {
	if ss.CustomPointOne == nil || ss.CustomSlope == nil {
		return domain.LineSegment{}, false
	}
	m := *ss.CustomSlope
	if math.IsInf(m, 0) || math.IsNaN(m) {
		return domain.LineSegment{}, false
	}
	return domain.LineThrough(m, *ss.CustomPointOne, xr.min, xr.max), true
}

type span struct{ min, max float64 }

func bounds(vs []float64) span {
	r := span{min: math.Inf(1), max: math.Inf(-1)}.extend(vs...)
	if math.IsInf(r.min, 1) {
		return span{min: 0, max: 1}
	}
	return r
}

func (r span) extend(vs ...float64) span {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		r.min = math.Min(r.min, v)
		r.max = math.Max(r.max, v)
	}
	return r
}

func (r span) padded() *chart.ContinuousRange {
	pad := (r.max - r.min) * 0.05
	if pad == 0 {
		pad = math.Max(math.Abs(r.max)*0.05, 1)
	}
	return &chart.ContinuousRange{Min: r.min - pad, Max: r.max + pad}
}
