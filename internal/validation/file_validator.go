package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultMaxLogSize bounds the instrument logs accepted for analysis.
const DefaultMaxLogSize int64 = 256 << 20

var (
	ErrFileNotFound = errors.New("file does not exist")
	ErrNotAFile     = errors.New("path is a directory")
	ErrFileTooLarge = errors.New("file exceeds size limit")
	ErrNotWritable  = errors.New("directory is not writable")
	ErrBadExtension = errors.New("unsupported file extension")
)

// FileValidator checks input logs and output locations before the
// pipeline touches them.
type FileValidator struct {
	logger  *slog.Logger
	maxSize int64
}

// NewFileValidator creates a validator with DefaultMaxLogSize.
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger:  logger,
		maxSize: DefaultMaxLogSize,
	}
}

// WithMaxSize returns a copy that accepts logs up to n bytes. n <= 0
// removes the limit.
func (v *FileValidator) WithMaxSize(n int64) *FileValidator {
	cp := *v
	cp.maxSize = n
	return &cp
}

// ValidateLogFile checks that path is a readable regular file within the
// size limit.
func (v *FileValidator) ValidateLogFile(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		v.logger.Warn("log file does not exist", slog.String("file", path))
		return fmt.Errorf("%s: %w", path, ErrFileNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s: %w", path, ErrNotAFile)
	}
	if v.maxSize > 0 && info.Size() > v.maxSize {
		v.logger.Warn("log file too large",
			slog.String("file", path),
			slog.Int64("size", info.Size()),
			slog.Int64("max_size", v.maxSize))
		return fmt.Errorf("%s is %d bytes, limit %d: %w", path, info.Size(), v.maxSize, ErrFileTooLarge)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("log file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputDirectory creates dir if needed and checks it is writable.
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		v.logger.Error("failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		return fmt.Errorf("%s: %w: %v", dir, ErrNotWritable, err)
	}
	file.Close()
	os.Remove(testFile)

	v.logger.Debug("output directory validated", slog.String("directory", dir))
	return nil
}

// ValidateOutputFile checks that path carries one of exts and that its
// directory is writable.
func (v *FileValidator) ValidateOutputFile(path string, exts ...string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if len(exts) > 0 && !slices.Contains(exts, ext) {
		return fmt.Errorf("%s: %w %q, want one of %s", path, ErrBadExtension, ext, strings.Join(exts, ", "))
	}
	if strings.HasPrefix(filepath.Base(path), "~$") {
		return fmt.Errorf("%s is an office lock file: %w", path, ErrBadExtension)
	}
	return v.ValidateOutputDirectory(filepath.Dir(path))
}
