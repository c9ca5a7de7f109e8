package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Paths contains all the application paths
type Paths struct {
	ExecutableDir string
	DataDir       string
	ExportsDir    string
	LogsDir       string
	WebDir        string
}

// GetPaths returns the application paths relative to the executable location
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %w", err)
	}

	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}

	return NewPaths(filepath.Dir(exe)), nil
}

// NewPaths lays out the standard directories under base.
//
//	base/
//	  ├── data/
//	  │   └── exports/   (workbooks and charts)
//	  ├── logs/
//	  └── web/
func NewPaths(base string) *Paths {
	return &Paths{
		ExecutableDir: base,
		DataDir:       filepath.Join(base, DefaultDataDir),
		ExportsDir:    filepath.Join(base, filepath.FromSlash(DefaultExportsDir)),
		LogsDir:       filepath.Join(base, DefaultLogsDir),
		WebDir:        filepath.Join(base, DefaultWebDir),
	}
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.DataDir, p.ExportsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("directory ready", slog.String("path", dir))
	}
	return nil
}

// GetLogPath returns the path for a log file. Absolute and
// "logs/"-prefixed names are honoured.
func (p *Paths) GetLogPath(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(p.LogsDir, strings.TrimPrefix(filepath.ToSlash(filename), "logs/"))
}

// PropertyTablePath returns the result table path for an input log. The
// table lives next to the log unless dir overrides it.
func PropertyTablePath(inputPath, dir string) string {
	if dir == "" {
		dir = filepath.Dir(inputPath)
	}
	return filepath.Join(dir, PropertyFileName)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
