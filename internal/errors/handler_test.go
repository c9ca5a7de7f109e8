package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(discard{}, nil))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func serve(t *testing.T, h *ErrorHandler, err error) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/analysis", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "req-1"))
	rec := httptest.NewRecorder()
	h.HandleError(rec, req, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestErrorHandler_HandleError(t *testing.T) {
	h := NewErrorHandler(discardLogger(), false)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantCode   string
	}{
		{"parsing", NewParsingError("failed to parse line 7", errors.New("bad float")), http.StatusUnprocessableEntity, TypeParseFailed, "PARSING"},
		{"no stiffness", NewNoStiffnessError("no region", nil), http.StatusConflict, TypeNoStiffness, "NO_STIFFNESS"},
		{"degenerate", NewDegenerateSlopeError("equal x", nil), http.StatusConflict, TypeDegenerateSlope, "DEGENERATE_SLOPE"},
		{"validation", NewAppValidationError("short row"), http.StatusBadRequest, TypeValidation, "VALIDATION"},
		{"not found", NewNotFoundError("analysis"), http.StatusNotFound, TypeNotFound, "NOT_FOUND"},
		{"export", NewExportError("write failed", errors.New("disk full")), http.StatusInternalServerError, TypeExportFailed, "EXPORT_IO"},
		{"api validation", ErrValidation("which", "bad"), http.StatusBadRequest, TypeValidation, CodeValidationFailed},
		{"bad json", New(http.StatusBadRequest, CodeInvalidJSON, "bad"), http.StatusBadRequest, TypeValidation, CodeInvalidJSON},
		{"too large", New(http.StatusRequestEntityTooLarge, CodePayloadTooLarge, "big"), http.StatusRequestEntityTooLarge, TypePayloadTooLarge, CodePayloadTooLarge},
		{"storage", NewStorageError("disk", nil), http.StatusInternalServerError, TypeStorage, "STORAGE"},
		{"timeout", fmt.Errorf("load: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, TypeTimeout, ""},
		{"config", NewConfigError("bad port", nil), http.StatusInternalServerError, TypeInternal, "CONFIG"},
		{"plain", errors.New("boom"), http.StatusInternalServerError, TypeInternal, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := serve(t, h, tt.err)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, float64(tt.wantStatus), body["status"])
			assert.Equal(t, "/api/analysis", body["instance"])
			assert.Equal(t, "req-1", body["trace_id"])
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, body["error_code"])
			}
		})
	}
}

func TestErrorHandler_Details(t *testing.T) {
	h := NewErrorHandler(discardLogger(), false)

	_, body := serve(t, h, NewParsingError("failed to parse line 7", errors.New("bad float")))
	assert.Contains(t, body["detail"], "bad float")

	// Server-side causes are not leaked.
	_, body = serve(t, h, NewExportError("write failed", errors.New("/secret/path")))
	assert.Equal(t, "write failed", body["detail"])

	_, body = serve(t, h, NewExportError("write failed", nil).WithContext("path", "/lab/x.csv"))
	assert.Equal(t, "/lab/x.csv", body["path"])

	_, body = serve(t, h, NewValidationErrors([]ValidationError{{Field: "path", Message: "path is required"}}))
	details := body["details"].(map[string]interface{})
	assert.Len(t, details["errors"], 1)

	withStack := NewErrorHandler(discardLogger(), true)
	_, body = serve(t, withStack, errors.New("boom"))
	assert.NotEmpty(t, body["stack"])
}

func TestErrorHandler_NilError(t *testing.T) {
	h := NewErrorHandler(discardLogger(), false)
	rec := httptest.NewRecorder()
	h.HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Zero(t, rec.Body.Len())
}

func TestErrorHandler_StackOnlyOnServerErrors(t *testing.T) {
	h := NewErrorHandler(discardLogger(), true)

	_, body := serve(t, h, NewAppValidationError("short row"))
	assert.NotContains(t, body, "stack")

	_, body = serve(t, h, NewExportError("write failed", nil))
	assert.NotEmpty(t, body["stack"])
}

func TestErrorHandler_NotFoundAndMethod(t *testing.T) {
	h := NewErrorHandler(discardLogger(), false)

	rec := httptest.NewRecorder()
	h.NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error_code":"NOT_FOUND"`)

	rec = httptest.NewRecorder()
	h.MethodNotAllowed(rec, httptest.NewRequest(http.MethodDelete, "/api/analysis", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, rec.Body.String(), "DELETE")
	assert.Contains(t, rec.Body.String(), TypeMethod)
}
