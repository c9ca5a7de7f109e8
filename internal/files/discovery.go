package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"mechprop/internal/config"
)

// ErrNotADirectory is returned when a listing names a regular file.
var ErrNotADirectory = errors.New("not a directory")

// LogExtensions are the file extensions instrument software writes logs
// with. Matching is case-insensitive.
var LogExtensions = []string{".csv", ".txt", ".dat", ".log"}

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string    `json:"path"`
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath string
}

// NewDiscovery resolves relative directories against basePath. An empty
// basePath means the working directory.
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) || d.basePath == "" {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}

// IsLogName reports whether name looks like an instrument log.
func IsLogName(name string) bool {
	if name == config.PropertyFileName || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
		return false
	}
	return slices.Contains(LogExtensions, strings.ToLower(filepath.Ext(name)))
}

// FindLogs lists the logs directly inside dir, sorted by name.
func (d *Discovery) FindLogs(dir string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)
	if info, err := os.Stat(fullPath); err == nil && !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", fullPath, ErrNotADirectory)
	}
	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !IsLogName(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}
