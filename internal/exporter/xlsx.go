package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"mechprop/pkg/contracts/domain"
)

const (
	CurveSheet   = "Curve"
	ResultsSheet = "Results"
)

// Report is everything a workbook shows about one analysed specimen.
type Report struct {
	Series    domain.Series
	Stiffness *domain.StiffnessResult
	Metrics   domain.CurveMetrics
	Row       domain.ExportRow
}

// WorkbookExporter writes analysis reports as xlsx workbooks.
type WorkbookExporter struct {
	logger *slog.Logger
}

// NewWorkbookExporter creates a workbook exporter
func NewWorkbookExporter(logger *slog.Logger) *WorkbookExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookExporter{logger: logger.With(slog.String("component", "workbook_exporter"))}
}

// Write renders the report into w.
func (e *WorkbookExporter) Write(w io.Writer, r Report) error {
	f, err := e.build(r)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// SaveAs writes the report to path, creating parent directories.
func (e *WorkbookExporter) SaveAs(path string, r Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := e.build(r)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	e.logger.Info("workbook saved",
		slog.String("path", path),
		slog.Int("samples", len(r.Series.X)))
	return nil
}

func (e *WorkbookExporter) build(r Report) (*excelize.File, error) {
	if len(r.Series.X) != len(r.Series.Y) {
		return nil, fmt.Errorf("series length mismatch: %d x values, %d y values", len(r.Series.X), len(r.Series.Y))
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", CurveSheet); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeCurveSheet(f, r.Series); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write curve sheet: %w", err)
	}
	if _, err := f.NewSheet(ResultsSheet); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeResultsSheet(f, r); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write results sheet: %w", err)
	}
	return f, nil
}

func writeCurveSheet(f *excelize.File, s domain.Series) error {
	sw, err := f.NewStreamWriter(CurveSheet)
	if err != nil {
		return err
	}

	if err := sw.SetRow("A1", []interface{}{s.XColumn, s.YColumn}); err != nil {
		return err
	}
	for i := range s.X {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, []interface{}{cellValue(s.X[i]), cellValue(s.Y[i])}); err != nil {
			return err
		}
	}
	return sw.Flush()
}

func writeResultsSheet(f *excelize.File, r Report) error {
	rows := [][]interface{}{
		{"property", "value"},
	}
	values := []interface{}{
		r.Row.FileName,
		cellValue(r.Row.CustomSlope),
		cellValue(r.Row.AreaUnderCurve),
		cellValue(r.Row.YieldDisplacement),
		cellValue(r.Row.YieldStrength),
		cellValue(r.Row.PeakValue),
	}
	for i, h := range domain.PropertyHeaders {
		rows = append(rows, []interface{}{h, values[i]})
	}

	rows = append(rows, []interface{}{"peak displacement", cellValue(r.Metrics.PeakX)})
	if st := r.Stiffness; st != nil {
		rows = append(rows,
			[]interface{}{"calculated slope", cellValue(st.MaxSlope)},
			[]interface{}{"anchor one x", st.AnchorOne.X},
			[]interface{}{"anchor one y", st.AnchorOne.Y},
			[]interface{}{"anchor two x", st.AnchorTwo.X},
			[]interface{}{"anchor two y", st.AnchorTwo.Y},
			[]interface{}{"inliers", st.InlierCount},
		)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(ResultsSheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(ResultsSheet, "A", "A", 22)
}
