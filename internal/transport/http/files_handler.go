package http

import (
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/render"

	apperrors "mechprop/internal/errors"
	"mechprop/internal/files"
)

// FilesHandler lists instrument logs for the renderer's file picker
type FilesHandler struct {
	discovery    *files.Discovery
	defaultDir   string
	errorHandler *apperrors.ErrorHandler
	logger       *slog.Logger
}

// NewFilesHandler lists defaultDir when a request names no directory.
// Relative directories resolve against defaultDir.
func NewFilesHandler(defaultDir string, errorHandler *apperrors.ErrorHandler, logger *slog.Logger) *FilesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FilesHandler{
		discovery:    files.NewDiscovery(defaultDir),
		defaultDir:   defaultDir,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("handler", "files")),
	}
}

// FileList is the response of GET /api/files
type FileList struct {
	Directory string           `json:"directory"`
	Files     []files.FileInfo `json:"files"`
}

// List handles GET /api/files?dir=
func (h *FilesHandler) List(w http.ResponseWriter, r *http.Request) {
	dir := r.URL.Query().Get("dir")
	if dir == "" {
		dir = h.defaultDir
	}
	if dir == "" {
		h.errorHandler.HandleError(w, r, apperrors.ErrValidation("dir", "dir is required"))
		return
	}

	logs, err := h.discovery.FindLogs(dir)
	if err != nil {
		switch {
		case errors.Is(err, os.ErrNotExist):
			err = apperrors.NewNotFoundError("directory").WithContext("dir", dir)
		case errors.Is(err, files.ErrNotADirectory):
			err = apperrors.NewAppError(apperrors.ErrTypeValidation, "dir is not a directory", err)
		default:
			err = apperrors.NewStorageError("cannot list directory", err)
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if logs == nil {
		logs = []files.FileInfo{}
	}

	h.logger.DebugContext(r.Context(), "listed logs",
		slog.String("dir", dir),
		slog.Int("count", len(logs)))
	render.JSON(w, r, FileList{Directory: dir, Files: logs})
}
