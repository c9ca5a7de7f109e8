package domain

import "time"

// Instrument log column names, in file order.
const (
	ColumnElapsedTime = "Elapsed Time"
	ColumnScanTime    = "Scan Time"
	ColumnDisplay1    = "Display 1"
	ColumnLoad1       = "Load 1"
	ColumnLoad2       = "Load 2"
)

// Columns lists every column a parsed log carries.
var Columns = []string{
	ColumnElapsedTime,
	ColumnScanTime,
	ColumnDisplay1,
	ColumnLoad1,
	ColumnLoad2,
}

// RawRecord is one sample row of an instrument log.
type RawRecord struct {
	ElapsedTime float64 `json:"elapsed_time"`
	ScanTime    float64 `json:"scan_time"`
	Display1    float64 `json:"display_1"`
	Load1       float64 `json:"load_1"`
	Load2       float64 `json:"load_2"`
}

// StiffnessResult describes the steepest linear region of a curve.
// AnchorOne.X is never greater than AnchorTwo.X.
type StiffnessResult struct {
	MaxSlope     float64     `json:"max_slope"`
	AnchorOne    Point2D     `json:"anchor_one"`
	AnchorTwo    Point2D     `json:"anchor_two"`
	ExtendedLine LineSegment `json:"extended_line"`
	InlierCount  int         `json:"inlier_count"`
}

// CurveMetrics holds the scalar properties of a trimmed curve.
type CurveMetrics struct {
	PeakValue      float64 `json:"peak_value"`
	PeakX          float64 `json:"peak_x"`
	AreaUnderCurve float64 `json:"area_under_curve"`
	YieldPoint     Point2D `json:"yield_point"`
}

// AnalysisSummary is the renderer-facing view of a loaded dataset.
type AnalysisSummary struct {
	ID         string           `json:"id"`
	FileName   string           `json:"file_name"`
	SourcePath string           `json:"source_path"`
	XColumn    string           `json:"x_column"`
	YColumn    string           `json:"y_column"`
	RawRows    int              `json:"raw_rows"`
	Rows       int              `json:"rows"`
	Stiffness  *StiffnessResult `json:"stiffness,omitempty"`
	Metrics    CurveMetrics     `json:"metrics"`
	LoadedAt   time.Time        `json:"loaded_at"`
}

// Series is a pair of aligned columns.
type Series struct {
	XColumn string    `json:"x_column"`
	YColumn string    `json:"y_column"`
	X       []float64 `json:"x"`
	Y       []float64 `json:"y"`
}
