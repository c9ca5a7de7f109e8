// Command analyzer runs the property pipeline on one instrument log and
// prints the results.
//
//	analyzer -in LOG [-x COL] [-y COL] [-export] [-dir DIR] [-xlsx FILE] [-png FILE]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/sync/errgroup"

	"mechprop/internal/config"
	apperrors "mechprop/internal/errors"
	"mechprop/internal/exporter"
	"mechprop/internal/infrastructure"
	"mechprop/internal/services"
	"mechprop/pkg/contracts"
	api "mechprop/pkg/contracts/api/v1"
	"mechprop/pkg/contracts/domain"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

type options struct {
	configFile string
	input      string
	xColumn    string
	yColumn    string
	export     bool
	exportDir  string
	xlsxPath   string
	pngPath    string
	version    bool
}

var errVersion = errors.New("version requested")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("analyzer", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configFile, "config", "", "config file (defaults to config.yaml or configs/config.yaml)")
	fs.StringVar(&opts.input, "in", "", "instrument log to analyse")
	fs.StringVar(&opts.xColumn, "x", "", "x column (default from config)")
	fs.StringVar(&opts.yColumn, "y", "", "y column (default from config)")
	fs.BoolVar(&opts.export, "export", false, "append a row to the property table")
	fs.StringVar(&opts.exportDir, "dir", "", "property table directory (default next to the log)")
	fs.StringVar(&opts.xlsxPath, "xlsx", "", "write an xlsx report to this file")
	fs.StringVar(&opts.pngPath, "png", "", "write a PNG chart to this file")
	fs.BoolVar(&opts.version, "version", false, "print the version and exit")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: analyzer -in LOG [flags]")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.version {
		fmt.Fprintln(stderr, contracts.GetFullVersionString())
		return opts, errVersion
	}
	switch {
	case opts.input == "" && fs.NArg() == 1:
		opts.input = fs.Arg(0)
	case fs.NArg() > 0:
		opts.input = ""
	}
	if opts.input == "" {
		fs.Usage()
		return opts, errors.New("exactly one log file is required")
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) || errors.Is(err, errVersion) {
			return exitOK
		}
		return exitUsage
	}

	cfg, err := loadConfig(opts.configFile)
	if err != nil {
		fmt.Fprintf(stderr, "config: %s\n", describe(err))
		return exitFailure
	}
	logger := infrastructure.WithComponent(infrastructure.NewLoggerWithWriter(stderr, cfg.Logging), "analyzer")
	ctx = infrastructure.EnsureTraceID(ctx)

	svc := services.NewAnalysisService(services.OptionsFromConfig(cfg.Analysis), nil, nil, logger)
	svc.SetExportDir(cfg.Analysis.ExportDir)

	if err := analyze(ctx, svc, opts, stdout); err != nil {
		infrastructure.WithError(logger, err).ErrorContext(ctx, "analysis failed",
			slog.String("path", opts.input))
		fmt.Fprintf(stderr, "%s: %s\n", opts.input, describe(err))
		return exitFailure
	}
	return exitOK
}

func loadConfig(configFile string) (*config.Config, error) {
	if configFile != "" {
		return config.LoadFrom(configFile)
	}
	return config.Load()
}

func analyze(ctx context.Context, svc *services.AnalysisService, opts options, stdout io.Writer) error {
	resp, err := svc.Load(ctx, api.LoadAnalysisRequest{
		Path:    opts.input,
		XColumn: opts.xColumn,
		YColumn: opts.yColumn,
	})
	if err != nil {
		return err
	}

	var result *domain.ExportResult
	if opts.export {
		r, err := svc.Export(ctx, opts.exportDir)
		if err != nil {
			return err
		}
		result = &r
	}

	if err := writeArtifacts(ctx, svc, opts.xlsxPath, opts.pngPath); err != nil {
		return err
	}

	renderSummary(stdout, resp, result, opts)
	return nil
}

// writeArtifacts writes the requested workbook and chart side by side.
func writeArtifacts(ctx context.Context, svc *services.AnalysisService, xlsxPath, pngPath string) error {
	g, gctx := errgroup.WithContext(ctx)
	if xlsxPath != "" {
		g.Go(func() error { return svc.SaveWorkbook(gctx, xlsxPath) })
	}
	if pngPath != "" {
		g.Go(func() error { return svc.SaveChart(gctx, pngPath) })
	}
	return g.Wait()
}

func renderSummary(w io.Writer, resp api.AnalysisResponse, result *domain.ExportResult, opts options) {
	a := resp.Analysis
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Property", a.FileName})
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	table.Append([]string{"Columns", a.XColumn + " / " + a.YColumn})
	table.Append([]string{"Rows", fmt.Sprintf("%d of %d", a.Rows, a.RawRows)})
	if st := a.Stiffness; st != nil {
		table.Append([]string{"Max slope", num(st.MaxSlope)})
		table.Append([]string{"Anchors", point(st.AnchorOne) + " " + point(st.AnchorTwo)})
		table.Append([]string{"Inliers", strconv.Itoa(st.InlierCount)})
	} else {
		table.Append([]string{"Max slope", "none found"})
	}
	table.Append([]string{"Peak", num(a.Metrics.PeakValue) + " at " + num(a.Metrics.PeakX)})
	table.Append([]string{"Area", num(a.Metrics.AreaUnderCurve)})
	table.Append([]string{"Yield point", point(resp.Session.YieldPoint)})
	if slope := resp.Session.CustomSlope; slope != nil {
		table.Append([]string{"Custom slope", num(*slope)})
	} else {
		table.Append([]string{"Custom slope", "unset"})
	}

	if result != nil {
		table.Append([]string{"Exported", fmt.Sprintf("%s (%d rows)", result.Path, result.Rows)})
	}
	for _, path := range []string{opts.xlsxPath, opts.pngPath} {
		if path != "" {
			table.Append([]string{"Wrote", path})
		}
	}
	table.Render()
}

func num(f float64) string {
	return exporter.FormatFloat(f)
}

func point(p domain.Point2D) string {
	return "(" + num(p.X) + ", " + num(p.Y) + ")"
}

func describe(err error) string {
	if t, ok := apperrors.TypeOf(err); ok {
		return fmt.Sprintf("%s: %v", t, err)
	}
	return err.Error()
}
