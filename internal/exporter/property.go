package exporter

import (
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	apperrors "mechprop/internal/errors"
	"mechprop/pkg/contracts/domain"
)

// PropertyTable appends rows to the mechanical property table. It reads
// the whole table, adds the row and rewrites the file; callers serialize
// concurrent appends to the same file.
type PropertyTable struct {
	logger *slog.Logger
}

// NewPropertyTable creates a property table writer
func NewPropertyTable(logger *slog.Logger) *PropertyTable {
	if logger == nil {
		logger = slog.Default()
	}
	return &PropertyTable{
		logger: logger.With(slog.String("component", "property_table")),
	}
}

// Append adds row to the table at path, creating it when missing, and
// returns the number of data rows afterwards. Existing rows are written
// back unchanged.
func (p *PropertyTable) Append(path string, row domain.ExportRow) (int, error) {
	existing, err := p.Read(path)
	if err != nil {
		return 0, err
	}

	records := append(existing, FormatRow(row))
	if err := replaceCSV(path, domain.PropertyHeaders, records); err != nil {
		return 0, apperrors.NewExportError("failed to write property table", err).
			WithContext("path", path)
	}

	p.logger.Info("property row appended",
		slog.String("path", path),
		slog.String("file_name", row.FileName),
		slog.Int("rows", len(records)))
	return len(records), nil
}

// Read returns the data rows of the table, without the header. A missing
// file is an empty table.
func (p *PropertyTable) Read(path string) ([][]string, error) {
	records, err := ReadCSV(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewExportError("failed to read property table", err).
			WithContext("path", path)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[1:], nil
}

// FormatRow renders an export row in header order.
func FormatRow(row domain.ExportRow) []string {
	return []string{
		row.FileName,
		FormatFloat(row.CustomSlope),
		FormatFloat(row.AreaUnderCurve),
		FormatFloat(row.YieldDisplacement),
		FormatFloat(row.YieldStrength),
		FormatFloat(row.PeakValue),
	}
}

// ParseRow is the inverse of FormatRow.
func ParseRow(record []string) (domain.ExportRow, error) {
	if len(record) < len(domain.PropertyHeaders) {
		return domain.ExportRow{}, apperrors.NewAppValidationError("property row is too short")
	}
	vals := make([]float64, 5)
	for i := range vals {
		v, err := parseFloat(record[i+1])
		if err != nil {
			return domain.ExportRow{}, apperrors.NewAppError(apperrors.ErrTypeValidation,
				"invalid "+domain.PropertyHeaders[i+1], err)
		}
		vals[i] = v
	}
	return domain.ExportRow{
		FileName:          record[0],
		CustomSlope:       vals[0],
		AreaUnderCurve:    vals[1],
		YieldDisplacement: vals[2],
		YieldStrength:     vals[3],
		PeakValue:         vals[4],
	}, nil
}

// SpecimenName is the export name of an input log: its base name up to
// the first dot.
func SpecimenName(inputPath string) string {
	base := filepath.Base(inputPath)
	if i := strings.Index(base, "."); i >= 0 {
		return base[:i]
	}
	return base
}
