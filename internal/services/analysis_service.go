package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"mechprop/internal/config"
	"mechprop/internal/dataprocessing"
	apperrors "mechprop/internal/errors"
	"mechprop/internal/exporter"
	"mechprop/internal/infrastructure"
	"mechprop/internal/plot"
	"mechprop/internal/session"
	"mechprop/internal/validation"
	api "mechprop/pkg/contracts/api/v1"
	"mechprop/pkg/contracts/domain"
	"mechprop/pkg/contracts/events"
)

// Broadcaster pushes messages to connected renderers.
type Broadcaster interface {
	Broadcast(msg events.WebSocketMessage)
}

type noopBroadcaster struct{}

func (noopBroadcaster) Broadcast(events.WebSocketMessage) {}

// dataset is one loaded log together with its session. It is replaced
// whole on every successful load and never mutated except through the
// session, which carries its own lock.
type dataset struct {
	id       string
	path     string
	analysis *dataprocessing.Analysis
	session  *session.State
	loadedAt time.Time
}

// AnalysisService owns the active dataset.
type AnalysisService struct {
	opts        dataprocessing.Options
	properties  *exporter.PropertyTable
	workbooks   *exporter.WorkbookExporter
	files       *validation.FileValidator
	metrics     *infrastructure.AnalysisMetrics
	broadcaster Broadcaster
	logger      *slog.Logger

	mu      sync.RWMutex
	current *dataset

	// exportMu serializes read-modify-write cycles on property tables.
	exportMu    sync.Mutex
	exportDir   string
	artifactDir string
}

// NewAnalysisService creates the service. metrics and broadcaster may be nil.
func NewAnalysisService(opts dataprocessing.Options, metrics *infrastructure.AnalysisMetrics, broadcaster Broadcaster, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	if broadcaster == nil {
		broadcaster = noopBroadcaster{}
	}
	return &AnalysisService{
		opts:        opts,
		properties:  exporter.NewPropertyTable(logger),
		workbooks:   exporter.NewWorkbookExporter(logger),
		files:       validation.NewFileValidator(logger),
		metrics:     metrics,
		broadcaster: broadcaster,
		logger:      logger.With(slog.String("service", "analysis")),
	}
}

// SetExportDir sets the directory used when Export is called without one.
// Empty means next to the source log.
func (s *AnalysisService) SetExportDir(dir string) {
	s.exportMu.Lock()
	s.exportDir = dir
	s.exportMu.Unlock()
}

// SetArtifactDir sets the directory SaveArtifacts uses by default.
func (s *AnalysisService) SetArtifactDir(dir string) {
	s.exportMu.Lock()
	s.artifactDir = dir
	s.exportMu.Unlock()
}

// OptionsFromConfig maps the analysis section of the configuration onto
// pipeline options.
func OptionsFromConfig(cfg config.AnalysisConfig) dataprocessing.Options {
	opts := dataprocessing.DefaultOptions()
	if cfg.XColumn != "" {
		opts.XColumn = cfg.XColumn
	}
	if cfg.YColumn != "" {
		opts.YColumn = cfg.YColumn
	}
	if cfg.TrimThreshold > 0 {
		opts.TrimThreshold = cfg.TrimThreshold
	}
	if cfg.InlierTolerance > 0 {
		opts.Stiffness.InlierTolerance = cfg.InlierTolerance
	}
	return opts
}

// Load parses and analyses the log at req.Path and makes it the active
// dataset. On failure the previous dataset stays active.
func (s *AnalysisService) Load(ctx context.Context, req api.LoadAnalysisRequest) (api.AnalysisResponse, error) {
	opts := s.opts
	if req.XColumn != "" {
		opts.XColumn = req.XColumn
	}
	if req.YColumn != "" {
		opts.YColumn = req.YColumn
	}

	start := time.Now()
	err := s.files.ValidateLogFile(req.Path)
	var analysis *dataprocessing.Analysis
	if err == nil {
		analysis, err = dataprocessing.NewProcessor(opts, s.logger).ProcessFile(ctx, req.Path)
	}
	if err != nil {
		err = classifyLoadError(err)
		errType, _ := apperrors.TypeOf(err)
		if errType == "" {
			errType = "CANCELLED"
		}
		s.metrics.RecordLoad(ctx, time.Since(start), false, string(errType))
		s.logger.WarnContext(ctx, "load failed",
			slog.String("path", req.Path),
			slog.String("error", err.Error()))
		return api.AnalysisResponse{}, err
	}
	s.metrics.RecordLoad(ctx, time.Since(start), analysis.Stiffness != nil, "")

	ds := &dataset{
		id:       uuid.New().String(),
		path:     req.Path,
		analysis: analysis,
		session:  session.New(analysis.Stiffness, analysis.Metrics),
		loadedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.current = ds
	s.mu.Unlock()

	resp := api.AnalysisResponse{Analysis: ds.summary(), Session: ds.session.Snapshot()}
	s.logger.InfoContext(ctx, "analysis loaded",
		slog.String("analysis_id", ds.id),
		slog.String("path", req.Path),
		slog.Int("rows", analysis.Trimmed.Len()),
		slog.Bool("stiffness_found", analysis.Stiffness != nil))
	s.broadcaster.Broadcast(events.NewMessage(events.MessageTypeAnalysisLoaded, resp))
	return resp, nil
}

func classifyLoadError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if _, ok := apperrors.TypeOf(err); ok {
		return err
	}
	if errors.Is(err, dataprocessing.ErrUnknownColumn) {
		return apperrors.NewAppError(apperrors.ErrTypeValidation, "unknown column", err)
	}
	if errors.Is(err, validation.ErrFileTooLarge) || errors.Is(err, validation.ErrNotAFile) {
		return apperrors.NewAppError(apperrors.ErrTypeValidation, "log file rejected", err)
	}
	return apperrors.NewParsingError("failed to analyse log", err)
}

func (s *AnalysisService) active() (*dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil, apperrors.NewAppError(apperrors.ErrTypeNotFound, "no analysis loaded", ErrNoAnalysisLoaded)
	}
	return s.current, nil
}

func (d *dataset) summary() domain.AnalysisSummary {
	a := d.analysis
	return domain.AnalysisSummary{
		ID:         d.id,
		FileName:   exporter.SpecimenName(d.path),
		SourcePath: d.path,
		XColumn:    a.XColumn,
		YColumn:    a.YColumn,
		RawRows:    a.Raw.Len(),
		Rows:       a.Trimmed.Len(),
		Stiffness:  a.Stiffness,
		Metrics:    a.Metrics,
		LoadedAt:   d.loadedAt,
	}
}

// Summary describes the active dataset.
func (s *AnalysisService) Summary(ctx context.Context) (api.AnalysisResponse, error) {
	ds, err := s.active()
	if err != nil {
		return api.AnalysisResponse{}, err
	}
	return api.AnalysisResponse{Analysis: ds.summary(), Session: ds.session.Snapshot()}, nil
}

// Table returns any column pair of the trimmed table.
func (s *AnalysisService) Table(ctx context.Context, x, y string) (domain.Series, error) {
	ds, err := s.active()
	if err != nil {
		return domain.Series{}, err
	}
	series, err := ds.analysis.Trimmed.Series(x, y)
	if err != nil {
		return domain.Series{}, apperrors.NewAppError(apperrors.ErrTypeValidation, "invalid column pair", err)
	}
	return series, nil
}

// Stiffness returns the computed stiffness, or a NO_STIFFNESS error when
// the curve has no fittable region.
func (s *AnalysisService) Stiffness(ctx context.Context) (domain.StiffnessResult, error) {
	ds, err := s.active()
	if err != nil {
		return domain.StiffnessResult{}, err
	}
	if ds.analysis.Stiffness == nil {
		return domain.StiffnessResult{}, apperrors.NewNoStiffnessError("curve has no stiffness region", dataprocessing.ErrNoStiffnessFound).
			WithContext("analysis_id", ds.id)
	}
	return *ds.analysis.Stiffness, nil
}

// Metrics returns peak, area and computed yield of the active curve.
func (s *AnalysisService) Metrics(ctx context.Context) (domain.CurveMetrics, error) {
	ds, err := s.active()
	if err != nil {
		return domain.CurveMetrics{}, err
	}
	return ds.analysis.Metrics, nil
}

// Plot renders the active curve with the current session as PNG.
func (s *AnalysisService) Plot(ctx context.Context, w io.Writer) error {
	ds, err := s.active()
	if err != nil {
		return err
	}
	return ds.plot(w)
}

func (d *dataset) plot(w io.Writer) error {
	snap := d.session.Snapshot()
	return plot.Render(w, plot.Figure{
		Title:     exporter.SpecimenName(d.path),
		Series:    d.analysis.Series(),
		Stiffness: d.analysis.Stiffness,
		Metrics:   d.analysis.Metrics,
		Session:   &snap,
	})
}

// Workbook writes an xlsx report of the active dataset.
func (s *AnalysisService) Workbook(ctx context.Context, w io.Writer) error {
	ds, err := s.active()
	if err != nil {
		return err
	}
	return s.workbooks.Write(w, ds.report())
}

// SaveWorkbook writes the xlsx report of the active dataset to path.
func (s *AnalysisService) SaveWorkbook(ctx context.Context, path string) error {
	ds, err := s.active()
	if err != nil {
		return err
	}
	return s.saveWorkbook(ds, path)
}

// SaveChart writes the PNG chart of the active dataset to path.
func (s *AnalysisService) SaveChart(ctx context.Context, path string) error {
	ds, err := s.active()
	if err != nil {
		return err
	}
	return s.saveChart(ds, path)
}

// SaveArtifacts writes <specimen>.xlsx and <specimen>.png into dir, or
// into the artifact directory when dir is empty.
func (s *AnalysisService) SaveArtifacts(ctx context.Context, dir string) (domain.ArtifactResult, error) {
	ds, err := s.active()
	if err != nil {
		return domain.ArtifactResult{}, err
	}
	if dir == "" {
		s.exportMu.Lock()
		dir = s.artifactDir
		s.exportMu.Unlock()
	}
	if dir == "" {
		return domain.ArtifactResult{}, apperrors.NewAppError(apperrors.ErrTypeValidation,
			"no artifact directory", nil)
	}

	name := exporter.SpecimenName(ds.path)
	result := domain.ArtifactResult{
		Workbook: filepath.Join(dir, name+".xlsx"),
		Chart:    filepath.Join(dir, name+".png"),
	}

	var g errgroup.Group
	g.Go(func() error { return s.saveWorkbook(ds, result.Workbook) })
	g.Go(func() error { return s.saveChart(ds, result.Chart) })
	if err := g.Wait(); err != nil {
		return domain.ArtifactResult{}, err
	}

	s.logger.InfoContext(ctx, "artifacts saved",
		slog.String("analysis_id", ds.id),
		slog.String("workbook", result.Workbook),
		slog.String("chart", result.Chart))
	return result, nil
}

func (s *AnalysisService) saveWorkbook(ds *dataset, path string) error {
	if err := s.checkOutput(path, ".xlsx"); err != nil {
		return err
	}
	if err := s.workbooks.SaveAs(path, ds.report()); err != nil {
		return apperrors.NewExportError("failed to save workbook", err).WithContext("path", path)
	}
	return nil
}

func (s *AnalysisService) saveChart(ds *dataset, path string) error {
	if err := s.checkOutput(path, ".png"); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return apperrors.NewExportError("failed to create chart", err).WithContext("path", path)
	}
	if err := ds.plot(f); err != nil {
		f.Close()
		return apperrors.NewExportError("failed to render chart", err).WithContext("path", path)
	}
	if err := f.Close(); err != nil {
		return apperrors.NewExportError("failed to save chart", err).WithContext("path", path)
	}
	return nil
}

func (s *AnalysisService) checkOutput(path, ext string) error {
	err := s.files.ValidateOutputFile(path, ext)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, validation.ErrBadExtension):
		return apperrors.NewAppError(apperrors.ErrTypeValidation, "output path rejected", err)
	default:
		return apperrors.NewExportError("output directory unavailable", err).WithContext("path", path)
	}
}

// report carries the export row only when a slope exists; the workbook
// otherwise shows a NaN slope.
func (d *dataset) report() exporter.Report {
	snap := d.session.Snapshot()
	row, err := exportRow(d, snap)
	if err != nil {
		row.CustomSlope = math.NaN()
	}
	return exporter.Report{
		Series:    d.analysis.Series(),
		Stiffness: d.analysis.Stiffness,
		Metrics:   d.analysis.Metrics,
		Row:       row,
	}
}

// Session returns the current session values.
func (s *AnalysisService) Session(ctx context.Context) (domain.SessionState, error) {
	ds, err := s.active()
	if err != nil {
		return domain.SessionState{}, err
	}
	return ds.session.Snapshot(), nil
}

// SetPoint moves a slope point or the yield point. Two slope points with
// the same x are accepted; the snapshot then reports a degenerate slope.
func (s *AnalysisService) SetPoint(ctx context.Context, target string, p domain.Point2D) (domain.SessionState, error) {
	ds, err := s.active()
	if err != nil {
		return domain.SessionState{}, err
	}
	which, err := parseTarget(target)
	if err != nil {
		return domain.SessionState{}, err
	}
	if err := ds.session.Set(which, p); err != nil {
		return domain.SessionState{}, apperrors.NewAppError(apperrors.ErrTypeValidation, "invalid point", err)
	}
	return s.sessionChanged(ctx, ds, string(which)), nil
}

// Snap moves the target point to the sample nearest cursorX.
func (s *AnalysisService) Snap(ctx context.Context, target string, cursorX float64) (domain.SessionState, error) {
	ds, err := s.active()
	if err != nil {
		return domain.SessionState{}, err
	}
	which, err := parseTarget(target)
	if err != nil {
		return domain.SessionState{}, err
	}
	if _, err := ds.session.Snap(which, ds.analysis.Series(), cursorX); err != nil {
		return domain.SessionState{}, apperrors.NewAppError(apperrors.ErrTypeValidation, "cannot snap", err)
	}
	return s.sessionChanged(ctx, ds, "snap_"+string(which)), nil
}

// Reset discards every session edit.
func (s *AnalysisService) Reset(ctx context.Context) (domain.SessionState, error) {
	ds, err := s.active()
	if err != nil {
		return domain.SessionState{}, err
	}
	ds.session.Reset()
	return s.sessionChanged(ctx, ds, "reset"), nil
}

func (s *AnalysisService) sessionChanged(ctx context.Context, ds *dataset, kind string) domain.SessionState {
	snap := ds.session.Snapshot()
	s.metrics.RecordSessionEdit(ctx, kind)
	s.logger.DebugContext(ctx, "session updated",
		slog.String("analysis_id", ds.id),
		slog.String("kind", kind),
		slog.String("status", string(snap.Status)),
		slog.Bool("slope_degenerate", snap.Degenerate()))
	s.broadcaster.Broadcast(events.NewMessage(events.MessageTypeSessionUpdated, snap))
	return snap
}

func parseTarget(target string) (session.Point, error) {
	switch p := session.Point(target); p {
	case session.PointOne, session.PointTwo, session.PointYield:
		return p, nil
	}
	return "", apperrors.NewAppError(apperrors.ErrTypeValidation,
		fmt.Sprintf("unknown target %q", target), ErrUnknownTarget)
}

// Export appends the current session as a row to the property table in
// dir, or next to the source log when dir is empty.
func (s *AnalysisService) Export(ctx context.Context, dir string) (domain.ExportResult, error) {
	ctx, span := otel.Tracer("mechprop/services").Start(ctx, "Export")
	defer span.End()

	ds, err := s.active()
	if err != nil {
		return domain.ExportResult{}, err
	}
	row, err := exportRow(ds, ds.session.Snapshot())
	if err != nil {
		s.metrics.RecordExport(ctx, err)
		infrastructure.RecordError(ctx, err)
		return domain.ExportResult{}, err
	}

	s.exportMu.Lock()
	if dir == "" {
		dir = s.exportDir
	}
	path := config.PropertyTablePath(ds.path, dir)
	span.SetAttributes(attribute.String("export.path", path))
	rows, err := s.properties.Append(path, row)
	s.exportMu.Unlock()

	s.metrics.RecordExport(ctx, err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return domain.ExportResult{}, err
	}

	result := domain.ExportResult{Path: path, Rows: rows, Row: row}
	s.logger.InfoContext(ctx, "export completed",
		slog.String("analysis_id", ds.id),
		slog.String("path", path),
		slog.Int("rows", rows))
	s.broadcaster.Broadcast(events.NewMessage(events.MessageTypeExportCompleted, result))
	return result, nil
}

func exportRow(ds *dataset, snap domain.SessionState) (domain.ExportRow, error) {
	m := ds.analysis.Metrics
	row := domain.ExportRow{
		FileName:          exporter.SpecimenName(ds.path),
		AreaUnderCurve:    m.AreaUnderCurve,
		YieldDisplacement: snap.YieldPoint.X,
		YieldStrength:     snap.YieldPoint.Y,
		PeakValue:         m.PeakValue,
	}
	if snap.CustomSlope == nil {
		return row, apperrors.NewNoStiffnessError("no slope to export", ErrNoCustomSlope)
	}
	row.CustomSlope = *snap.CustomSlope
	return row, nil
}
