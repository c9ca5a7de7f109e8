package dataprocessing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"mechprop/pkg/contracts/domain"
)

// Options selects the analysed columns and the numeric parameters.
type Options struct {
	XColumn       string
	YColumn       string
	TrimThreshold float64
	Stiffness     StiffnessOptions
}

// DefaultOptions analyses Display 1 against Load 1.
func DefaultOptions() Options {
	return Options{
		XColumn:       domain.ColumnDisplay1,
		YColumn:       domain.ColumnLoad1,
		TrimThreshold: DefaultTrimThreshold,
		Stiffness:     DefaultStiffnessOptions(),
	}
}

// Analysis is the full output of one pipeline run.
type Analysis struct {
	Raw     *Table
	Trimmed *Table
	XColumn string
	YColumn string

	// Stiffness is nil when the curve has no fittable region.
	Stiffness *domain.StiffnessResult
	Metrics   domain.CurveMetrics
}

// Series returns the analysed column pair of the trimmed table.
func (a *Analysis) Series() domain.Series {
	s, _ := a.Trimmed.Series(a.XColumn, a.YColumn)
	return s
}

// Processor runs parse, normalize, trim, stiffness and metrics in order.
type Processor struct {
	opts   Options
	logger *slog.Logger
}

// NewProcessor creates a processor. A nil logger uses slog.Default.
func NewProcessor(opts Options, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		opts:   opts,
		logger: logger.With(slog.String("component", "processor")),
	}
}

// Options returns the processor's options.
func (p *Processor) Options() Options { return p.opts }

// ProcessFile parses and analyses the log at path.
func (p *Processor) ProcessFile(ctx context.Context, path string) (*Analysis, error) {
	ctx, span := otel.Tracer("mechprop/dataprocessing").Start(ctx, "ProcessFile")
	defer span.End()
	span.SetAttributes(attribute.String("file.path", path))

	raw, err := ParseFile(path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse failed")
		return nil, err
	}
	p.logger.DebugContext(ctx, "log parsed",
		slog.String("path", path),
		slog.Int("rows", raw.Len()))

	analysis, err := p.Process(ctx, raw)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "analysis failed")
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("rows.trimmed", analysis.Trimmed.Len()),
		attribute.Bool("stiffness.found", analysis.Stiffness != nil),
	)
	return analysis, nil
}

// Process analyses an already parsed table. A missing stiffness region is
// not an error; the result simply carries no stiffness.
func (p *Processor) Process(ctx context.Context, raw *Table) (*Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	normalized, err := Normalize(raw, p.opts.XColumn, p.opts.YColumn)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	trimmed, err := Trim(normalized, p.opts.YColumn, p.opts.TrimThreshold)
	if err != nil {
		return nil, fmt.Errorf("trim: %w", err)
	}

	series, err := trimmed.Series(p.opts.XColumn, p.opts.YColumn)
	if err != nil {
		return nil, err
	}

	analysis := &Analysis{
		Raw:     raw,
		Trimmed: trimmed,
		XColumn: p.opts.XColumn,
		YColumn: p.opts.YColumn,
	}

	stiffness, err := EstimateStiffness(series.X, series.Y, p.opts.Stiffness)
	switch {
	case err == nil:
		analysis.Stiffness = &stiffness
	case errors.Is(err, ErrNoStiffnessFound):
		p.logger.InfoContext(ctx, "no stiffness region", slog.Int("rows", trimmed.Len()))
	default:
		return nil, fmt.Errorf("stiffness: %w", err)
	}

	analysis.Metrics, err = ComputeMetrics(trimmed, p.opts.XColumn, p.opts.YColumn)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	p.logger.InfoContext(ctx, "analysis complete",
		slog.Int("raw_rows", raw.Len()),
		slog.Int("rows", trimmed.Len()),
		slog.Float64("peak", analysis.Metrics.PeakValue),
		slog.Float64("area", analysis.Metrics.AreaUnderCurve),
		slog.Bool("stiffness_found", analysis.Stiffness != nil))

	return analysis, nil
}
