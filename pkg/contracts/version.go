package contracts

import (
	"fmt"
	"runtime"
)

const (
	Version      = "0.3.0"
	VersionStage = "beta"

	// DataFormatVersion identifies the property table layout.
	DataFormatVersion = "v1"
	APIVersion        = "v1"
)

// Set with -ldflags "-X mechprop/pkg/contracts.GitCommit=..." at release.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
	GitBranch = "unknown"
)

// VersionInfo is served by GET /api/version.
type VersionInfo struct {
	Version      string `json:"version"`
	Stage        string `json:"stage"`
	BuildTime    string `json:"build_time"`
	GitCommit    string `json:"git_commit"`
	GitBranch    string `json:"git_branch"`
	GoVersion    string `json:"go_version"`
	OS           string `json:"os"`
	Architecture string `json:"architecture"`
	DataFormat   string `json:"data_format"`
	APIVersion   string `json:"api_version"`
}

func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:      Version,
		Stage:        VersionStage,
		BuildTime:    BuildTime,
		GitCommit:    GitCommit,
		GitBranch:    GitBranch,
		GoVersion:    runtime.Version(),
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
		DataFormat:   DataFormatVersion,
		APIVersion:   APIVersion,
	}
}

// GetFullVersionString is the -version output of both commands.
func GetFullVersionString() string {
	return fmt.Sprintf("mechprop analyzer v%s-%s (commit %s, built %s, %s %s/%s)",
		Version, VersionStage, GitCommit, BuildTime, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
