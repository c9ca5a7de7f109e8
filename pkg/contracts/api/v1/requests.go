// Package api contains the request and response contracts of the renderer API.
package api

import (
	"mechprop/pkg/contracts/domain"
)

// LoadAnalysisRequest loads an instrument log into the active session.
type LoadAnalysisRequest struct {
	Path    string `json:"path" validate:"required,logpath"`
	XColumn string `json:"x_column,omitempty" validate:"omitempty,column"`
	YColumn string `json:"y_column,omitempty" validate:"omitempty,column"`
}

// TableRequest selects a column pair of the trimmed table.
type TableRequest struct {
	X string `query:"x" validate:"required,column"`
	Y string `query:"y" validate:"required,column"`
}

// PointRequest moves an editable point.
type PointRequest struct {
	X *float64 `json:"x" validate:"required"`
	Y *float64 `json:"y" validate:"required"`
}

// Point returns the requested point. Callers validate first.
func (p PointRequest) Point() domain.Point2D {
	return domain.Point2D{X: *p.X, Y: *p.Y}
}

// SnapRequest moves an editable point to the sample nearest the cursor.
type SnapRequest struct {
	Target  string   `json:"target" validate:"required,oneof=one two yield"`
	CursorX *float64 `json:"cursor_x" validate:"required"`
}

// ExportRequest appends the current session to the property table.
// An empty Directory writes next to the source file.
type ExportRequest struct {
	Directory string `json:"directory,omitempty" validate:"omitempty,logpath"`
}

// ArtifactsRequest saves the workbook and chart of the active dataset.
// An empty Directory uses the server's exports directory.
type ArtifactsRequest struct {
	Directory string `json:"directory,omitempty" validate:"omitempty,logpath"`
}

// AnalysisResponse wraps a loaded dataset together with its session.
type AnalysisResponse struct {
	Analysis domain.AnalysisSummary `json:"analysis"`
	Session  domain.SessionState    `json:"session"`
}
