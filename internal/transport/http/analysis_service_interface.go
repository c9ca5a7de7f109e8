package http

import (
	"context"
	"io"

	api "mechprop/pkg/contracts/api/v1"
	"mechprop/pkg/contracts/domain"
)

// AnalysisServiceInterface defines the operations the renderer API exposes
type AnalysisServiceInterface interface {
	Load(ctx context.Context, req api.LoadAnalysisRequest) (api.AnalysisResponse, error)
	Summary(ctx context.Context) (api.AnalysisResponse, error)
	Table(ctx context.Context, x, y string) (domain.Series, error)
	Stiffness(ctx context.Context) (domain.StiffnessResult, error)
	Metrics(ctx context.Context) (domain.CurveMetrics, error)
	Plot(ctx context.Context, w io.Writer) error
	Workbook(ctx context.Context, w io.Writer) error
	SaveArtifacts(ctx context.Context, dir string) (domain.ArtifactResult, error)

	Session(ctx context.Context) (domain.SessionState, error)
	SetPoint(ctx context.Context, target string, p domain.Point2D) (domain.SessionState, error)
	Snap(ctx context.Context, target string, cursorX float64) (domain.SessionState, error)
	Reset(ctx context.Context) (domain.SessionState, error)

	Export(ctx context.Context, dir string) (domain.ExportResult, error)
}
