package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "mechprop/internal/errors"
	"mechprop/internal/middleware"
	"mechprop/internal/services"
	"mechprop/internal/shared/testutil"
	api "mechprop/pkg/contracts/api/v1"
	"mechprop/pkg/contracts/domain"
)

// MockAnalysisService is a mock implementation of AnalysisServiceInterface
type MockAnalysisService struct {
	mock.Mock
}

func (m *MockAnalysisService) Load(ctx context.Context, req api.LoadAnalysisRequest) (api.AnalysisResponse, error) {
	args := m.Called(req)
	return args.Get(0).(api.AnalysisResponse), args.Error(1)
}

func (m *MockAnalysisService) Summary(ctx context.Context) (api.AnalysisResponse, error) {
	args := m.Called()
	return args.Get(0).(api.AnalysisResponse), args.Error(1)
}

func (m *MockAnalysisService) Table(ctx context.Context, x, y string) (domain.Series, error) {
	args := m.Called(x, y)
	return args.Get(0).(domain.Series), args.Error(1)
}

func (m *MockAnalysisService) Stiffness(ctx context.Context) (domain.StiffnessResult, error) {
	args := m.Called()
	return args.Get(0).(domain.StiffnessResult), args.Error(1)
}

func (m *MockAnalysisService) Metrics(ctx context.Context) (domain.CurveMetrics, error) {
	args := m.Called()
	return args.Get(0).(domain.CurveMetrics), args.Error(1)
}

func (m *MockAnalysisService) Plot(ctx context.Context, w io.Writer) error {
	return m.Called(w).Error(0)
}

func (m *MockAnalysisService) Workbook(ctx context.Context, w io.Writer) error {
	return m.Called(w).Error(0)
}

func (m *MockAnalysisService) SaveArtifacts(ctx context.Context, dir string) (domain.ArtifactResult, error) {
	args := m.Called(dir)
	return args.Get(0).(domain.ArtifactResult), args.Error(1)
}

func (m *MockAnalysisService) Session(ctx context.Context) (domain.SessionState, error) {
	args := m.Called()
	return args.Get(0).(domain.SessionState), args.Error(1)
}

func (m *MockAnalysisService) SetPoint(ctx context.Context, target string, p domain.Point2D) (domain.SessionState, error) {
	args := m.Called(target, p)
	return args.Get(0).(domain.SessionState), args.Error(1)
}

func (m *MockAnalysisService) Snap(ctx context.Context, target string, cursorX float64) (domain.SessionState, error) {
	args := m.Called(target, cursorX)
	return args.Get(0).(domain.SessionState), args.Error(1)
}

func (m *MockAnalysisService) Reset(ctx context.Context) (domain.SessionState, error) {
	args := m.Called()
	return args.Get(0).(domain.SessionState), args.Error(1)
}

func (m *MockAnalysisService) Export(ctx context.Context, dir string) (domain.ExportResult, error) {
	args := m.Called(dir)
	return args.Get(0).(domain.ExportResult), args.Error(1)
}

func newTestRouter(t *testing.T, svc AnalysisServiceInterface) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	errorHandler := apperrors.NewErrorHandler(logger, false)
	validator := middleware.NewValidationMiddleware(logger, errorHandler)

	r := chi.NewRouter()
	r.Mount("/api", NewAnalysisHandler(svc, validator, errorHandler, logger).Routes())
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func problem(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestAnalysisHandler_Load(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setup      func(m *MockAnalysisService)
		wantStatus int
		wantCode   string
	}{
		{
			name: "loads log",
			body: `{"path":"/lab/specimen.csv"}`,
			setup: func(m *MockAnalysisService) {
				m.On("Load", api.LoadAnalysisRequest{Path: "/lab/specimen.csv"}).
					Return(api.AnalysisResponse{Analysis: domain.AnalysisSummary{ID: "a1", FileName: "specimen"}}, nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing path",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name:       "unknown column",
			body:       `{"path":"/lab/a.csv","y_column":"Load 9"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name:       "malformed json",
			body:       `{"path":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "parse failure",
			body: `{"path":"/lab/broken.csv"}`,
			setup: func(m *MockAnalysisService) {
				m.On("Load", mock.Anything).
					Return(api.AnalysisResponse{}, apperrors.NewParsingError("failed to parse line 7", nil))
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "PARSING",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockAnalysisService{}
			if tt.setup != nil {
				tt.setup(svc)
			}

			rec := do(t, newTestRouter(t, svc), http.MethodPost, "/api/analysis", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, problem(t, rec)["error_code"])
			}
			svc.AssertExpectations(t)
			if tt.setup == nil {
				svc.AssertNotCalled(t, "Load", mock.Anything)
			}
		})
	}
}

func TestAnalysisHandler_ServiceErrors(t *testing.T) {
	svc := &MockAnalysisService{}
	notLoaded := apperrors.NewAppError(apperrors.ErrTypeNotFound, "no analysis loaded", services.ErrNoAnalysisLoaded)
	svc.On("Summary").Return(api.AnalysisResponse{}, notLoaded)
	svc.On("Stiffness").Return(domain.StiffnessResult{}, apperrors.NewNoStiffnessError("curve has no stiffness region", nil))
	svc.On("Export", "").Return(domain.ExportResult{}, apperrors.NewExportError("failed to write property table", nil))
	h := newTestRouter(t, svc)

	rec := do(t, h, http.MethodGet, "/api/analysis", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/analysis/stiffness", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "NO_STIFFNESS", problem(t, rec)["error_code"])

	rec = do(t, h, http.MethodPost, "/api/export", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "EXPORT_IO", problem(t, rec)["error_code"])
}

func TestAnalysisHandler_Table(t *testing.T) {
	svc := &MockAnalysisService{}
	svc.On("Table", domain.ColumnElapsedTime, domain.ColumnLoad1).
		Return(domain.Series{XColumn: domain.ColumnElapsedTime, YColumn: domain.ColumnLoad1, X: []float64{0, 0.1}, Y: []float64{0, 2}}, nil)
	h := newTestRouter(t, svc)

	rec := do(t, h, http.MethodGet, "/api/analysis/table?x=Elapsed+Time&y=Load+1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var s domain.Series
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	assert.Equal(t, []float64{0, 2}, s.Y)

	rec = do(t, h, http.MethodGet, "/api/analysis/table?x=Elapsed+Time", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/analysis/table?x=Time&y=Load+1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNumberOfCalls(t, "Table", 1)
}

func TestAnalysisHandler_SessionEdits(t *testing.T) {
	edited := domain.SessionState{Status: domain.SessionEdited, YieldPoint: domain.Point2D{X: 0.05, Y: 5}}

	svc := &MockAnalysisService{}
	svc.On("SetPoint", "one", domain.Point2D{X: 0.02, Y: 1}).Return(edited, nil)
	svc.On("SetPoint", "yield", domain.Point2D{X: 0.05, Y: 5}).Return(edited, nil)
	svc.On("Snap", "two", 0.07).Return(edited, nil)
	svc.On("Reset").Return(domain.SessionState{Status: domain.SessionComputed}, nil)
	h := newTestRouter(t, svc)

	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		wantStatus int
	}{
		{"set point one", http.MethodPut, "/api/session/points/one", `{"x":0.02,"y":1}`, http.StatusOK},
		{"unknown point", http.MethodPut, "/api/session/points/three", `{"x":0.02,"y":1}`, http.StatusBadRequest},
		{"missing coordinate", http.MethodPut, "/api/session/points/two", `{"x":0.02}`, http.StatusBadRequest},
		{"set yield", http.MethodPut, "/api/session/yield", `{"x":0.05,"y":5}`, http.StatusOK},
		{"snap", http.MethodPost, "/api/session/snap", `{"target":"two","cursor_x":0.07}`, http.StatusOK},
		{"snap bad target", http.MethodPost, "/api/session/snap", `{"target":"peak","cursor_x":0.07}`, http.StatusBadRequest},
		{"snap without cursor", http.MethodPost, "/api/session/snap", `{"target":"one"}`, http.StatusBadRequest},
		{"reset", http.MethodPost, "/api/session/reset", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
	svc.AssertExpectations(t)
}

func TestAnalysisHandler_Artifacts(t *testing.T) {
	svc := &MockAnalysisService{}
	svc.On("Plot", mock.Anything).Run(func(args mock.Arguments) {
		args.Get(0).(io.Writer).Write([]byte("\x89PNG"))
	}).Return(nil)
	svc.On("Workbook", mock.Anything).Return(apperrors.NewAppError(apperrors.ErrTypeNotFound, "no analysis loaded", services.ErrNoAnalysisLoaded))
	h := newTestRouter(t, svc)

	rec := do(t, h, http.MethodGet, "/api/analysis/plot.png?disposition=attachment", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="curve.png"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "\x89PNG", rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/analysis/plot.png?disposition=download", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/analysis/workbook.xlsx", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEqual(t, contentTypeXLSX, rec.Header().Get("Content-Type"))
}

func TestAnalysisHandler_SaveArtifacts(t *testing.T) {
	svc := &MockAnalysisService{}
	svc.On("SaveArtifacts", "").Return(domain.ArtifactResult{Workbook: "/x/s.xlsx", Chart: "/x/s.png"}, nil)
	svc.On("SaveArtifacts", "/lab/out").Return(domain.ArtifactResult{},
		apperrors.NewExportError("output directory unavailable", assert.AnError))
	h := newTestRouter(t, svc)

	rec := do(t, h, http.MethodPost, "/api/analysis/artifacts", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var res domain.ArtifactResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "/x/s.png", res.Chart)

	rec = do(t, h, http.MethodPost, "/api/analysis/artifacts", `{"directory":"/lab/out"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "EXPORT_IO", problem(t, rec)["error_code"])
	svc.AssertExpectations(t)
}

func TestAnalysisHandler_Export(t *testing.T) {
	svc := &MockAnalysisService{}
	svc.On("Export", "/lab/out").Return(domain.ExportResult{Path: "/lab/out/mechanical property.csv", Rows: 3}, nil)
	h := newTestRouter(t, svc)

	rec := do(t, h, http.MethodPost, "/api/export", `{"directory":"/lab/out"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var res domain.ExportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 3, res.Rows)
	svc.AssertExpectations(t)
}
