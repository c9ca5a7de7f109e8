package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apperrors "mechprop/internal/errors"
	"mechprop/internal/middleware"
	api "mechprop/pkg/contracts/api/v1"
)

const (
	contentTypePNG  = "image/png"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// AnalysisHandler serves the renderer API
type AnalysisHandler struct {
	service      AnalysisServiceInterface
	validator    *middleware.ValidationMiddleware
	query        *middleware.QueryParamValidator
	errorHandler *apperrors.ErrorHandler
	logger       *slog.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(service AnalysisServiceInterface, validator *middleware.ValidationMiddleware, errorHandler *apperrors.ErrorHandler, logger *slog.Logger) *AnalysisHandler {
	if service == nil {
		panic("service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisHandler{
		service:      service,
		validator:    validator,
		query:        middleware.NewQueryParamValidator(errorHandler),
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("handler", "analysis")),
	}
}

// Routes returns the analysis, session and export routes
func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/analysis", func(r chi.Router) {
		r.Post("/", h.Load)
		r.Get("/", h.Summary)
		r.Get("/table", h.Table)
		r.Get("/stiffness", h.Stiffness)
		r.Get("/metrics", h.Metrics)
		r.Get("/plot.png", h.Plot)
		r.Get("/workbook.xlsx", h.Workbook)
		r.Post("/artifacts", h.SaveArtifacts)
	})

	r.Route("/session", func(r chi.Router) {
		r.Get("/", h.Session)
		r.Put("/points/{which}", h.SetPoint)
		r.Put("/yield", h.SetYield)
		r.Post("/snap", h.Snap)
		r.Post("/reset", h.Reset)
	})

	r.Post("/export", h.Export)
	return r
}

// Load handles POST /api/analysis
func (h *AnalysisHandler) Load(w http.ResponseWriter, r *http.Request) {
	var req api.LoadAnalysisRequest
	if err := h.validator.Decode(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	resp, err := h.service.Load(r.Context(), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "analysis loaded",
		slog.String("request_id", middleware.GetRequestID(r.Context())),
		slog.String("analysis_id", resp.Analysis.ID),
		slog.String("path", req.Path))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, resp)
}

// Summary handles GET /api/analysis
func (h *AnalysisHandler) Summary(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Summary(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, resp)
}

// Table handles GET /api/analysis/table?x=&y=
func (h *AnalysisHandler) Table(w http.ResponseWriter, r *http.Request) {
	req := api.TableRequest{
		X: r.URL.Query().Get("x"),
		Y: r.URL.Query().Get("y"),
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	series, err := h.service.Table(r.Context(), req.X, req.Y)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, series)
}

// Stiffness handles GET /api/analysis/stiffness
func (h *AnalysisHandler) Stiffness(w http.ResponseWriter, r *http.Request) {
	st, err := h.service.Stiffness(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, st)
}

// Metrics handles GET /api/analysis/metrics
func (h *AnalysisHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	m, err := h.service.Metrics(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, m)
}

// Plot handles GET /api/analysis/plot.png
func (h *AnalysisHandler) Plot(w http.ResponseWriter, r *http.Request) {
	h.serveArtifact(w, r, "curve.png", contentTypePNG, h.service.Plot)
}

// Workbook handles GET /api/analysis/workbook.xlsx
func (h *AnalysisHandler) Workbook(w http.ResponseWriter, r *http.Request) {
	h.serveArtifact(w, r, "analysis.xlsx", contentTypeXLSX, h.service.Workbook)
}

// SaveArtifacts handles POST /api/analysis/artifacts
func (h *AnalysisHandler) SaveArtifacts(w http.ResponseWriter, r *http.Request) {
	var req api.ArtifactsRequest
	if err := h.validator.Decode(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := h.service.SaveArtifacts(r.Context(), req.Directory)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, result)
}

// serveArtifact buffers the whole artifact so that a failure still turns
// into a problem response.
func (h *AnalysisHandler) serveArtifact(w http.ResponseWriter, r *http.Request, name, contentType string, write func(context.Context, io.Writer) error) {
	disposition, ok := h.query.ValidateEnum(w, r, "disposition", []string{"inline", "attachment"}, "inline")
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := write(r.Context(), &buf); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, name))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "artifact write failed",
			slog.String("name", name),
			slog.String("error", err.Error()))
	}
}

// Session handles GET /api/session
func (h *AnalysisHandler) Session(w http.ResponseWriter, r *http.Request) {
	st, err := h.service.Session(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, st)
}

// SetPoint handles PUT /api/session/points/{which}
func (h *AnalysisHandler) SetPoint(w http.ResponseWriter, r *http.Request) {
	which := chi.URLParam(r, "which")
	if which != "one" && which != "two" {
		h.errorHandler.HandleError(w, r, apperrors.ErrValidation("which", "which must be one of: one, two"))
		return
	}
	h.setPoint(w, r, which)
}

// SetYield handles PUT /api/session/yield
func (h *AnalysisHandler) SetYield(w http.ResponseWriter, r *http.Request) {
	h.setPoint(w, r, "yield")
}

func (h *AnalysisHandler) setPoint(w http.ResponseWriter, r *http.Request, target string) {
	var req api.PointRequest
	if err := h.validator.Decode(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	st, err := h.service.SetPoint(r.Context(), target, req.Point())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, st)
}

// Snap handles POST /api/session/snap
func (h *AnalysisHandler) Snap(w http.ResponseWriter, r *http.Request) {
	var req api.SnapRequest
	if err := h.validator.Decode(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	st, err := h.service.Snap(r.Context(), req.Target, *req.CursorX)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, st)
}

// Reset handles POST /api/session/reset
func (h *AnalysisHandler) Reset(w http.ResponseWriter, r *http.Request) {
	st, err := h.service.Reset(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, st)
}

// Export handles POST /api/export
func (h *AnalysisHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req api.ExportRequest
	if err := h.validator.Decode(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := h.service.Export(r.Context(), req.Directory)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "row exported",
		slog.String("request_id", middleware.GetRequestID(r.Context())),
		slog.String("path", result.Path),
		slog.Int("rows", result.Rows))
	render.JSON(w, r, result)
}
