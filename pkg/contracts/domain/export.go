package domain

import "encoding/json"

// PropertyHeaders is the header row of the mechanical property table.
var PropertyHeaders = []string{
	"file name",
	"slope",
	"area",
	"yield displacement",
	"yield strength",
	"max strength",
}

// ExportRow is one appended line of the mechanical property table.
type ExportRow struct {
	FileName          string  `json:"file_name"`
	CustomSlope       float64 `json:"custom_slope"`
	AreaUnderCurve    float64 `json:"area_under_curve"`
	YieldDisplacement float64 `json:"yield_displacement"`
	YieldStrength     float64 `json:"yield_strength"`
	PeakValue         float64 `json:"peak_value"`
}

// ArtifactResult lists the report files written for a dataset.
type ArtifactResult struct {
	Workbook string `json:"workbook"`
	Chart    string `json:"chart"`
}

// ExportResult reports where a row was written.
type ExportResult struct {
	Path string    `json:"path"`
	Rows int       `json:"rows"`
	Row  ExportRow `json:"row"`
}

// MarshalJSON writes a non-finite slope as null.
func (r ExportRow) MarshalJSON() ([]byte, error) {
	type alias ExportRow
	return json.Marshal(struct {
		alias
		CustomSlope *float64 `json:"custom_slope"`
	}{
		alias:       alias(r),
		CustomSlope: finiteOrNil(&r.CustomSlope),
	})
}
