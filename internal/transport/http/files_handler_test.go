package http

import (
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "mechprop/internal/errors"
	"mechprop/internal/shared/testutil"
)

func newFilesRouter(t *testing.T, defaultDir string) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	h := NewFilesHandler(defaultDir, apperrors.NewErrorHandler(logger, false), logger)
	r := chi.NewRouter()
	r.Get("/api/files", h.List)
	return r
}

func TestFilesHandler_List(t *testing.T) {
	data := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(data, "s2.csv"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(data, "s1.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(data, "report.xlsx"), []byte("x"), 0o644))
	other := t.TempDir()
	plain := filepath.Join(other, "plain.csv")
	require.NoError(t, os.WriteFile(plain, []byte("x"), 0o644))

	router := newFilesRouter(t, data)

	t.Run("default directory", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/files", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var list FileList
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		assert.Equal(t, data, list.Directory)
		require.Len(t, list.Files, 2)
		assert.Equal(t, "s1.txt", list.Files[0].Name)
		assert.Equal(t, "s2.csv", list.Files[1].Name)
	})

	t.Run("explicit directory", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/files?dir="+url.QueryEscape(other), "")
		require.Equal(t, http.StatusOK, rec.Code)
		var list FileList
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		require.Len(t, list.Files, 1)
		assert.Equal(t, plain, list.Files[0].Path)
	})

	t.Run("missing directory", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/files?dir="+url.QueryEscape(filepath.Join(other, "gone")), "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "NOT_FOUND", problem(t, rec)["error_code"])
	})

	t.Run("file instead of directory", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/files?dir="+url.QueryEscape(plain), "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "VALIDATION", problem(t, rec)["error_code"])
	})
}

func TestFilesHandler_NoDefault(t *testing.T) {
	rec := do(t, newFilesRouter(t, ""), http.MethodGet, "/api/files", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", problem(t, rec)["error_code"])
}
