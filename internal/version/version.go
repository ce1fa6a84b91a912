// Package version reports the build of the frontkit binary and the version
// of the package being built.
package version

import (
	"fmt"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	kiterrors "github.com/conneroisu/frontkit/internal/errors"
	"github.com/spf13/afero"
	"github.com/tidwall/gjson"
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string    `json:"version" yaml:"version"`
	GitCommit string    `json:"git_commit" yaml:"git_commit"`
	BuildTime time.Time `json:"build_time" yaml:"build_time"`
	GoVersion string    `json:"go_version" yaml:"go_version"`
	Platform  string    `json:"platform" yaml:"platform"`
}

// These variables are set at build time using -ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	// BuildTime is RFC3339.
	BuildTime = "unknown"
)

// GetBuildInfo returns comprehensive build information
func GetBuildInfo() *BuildInfo {
	return &BuildInfo{
		Version:   GetVersion(),
		GitCommit: GetGitCommit(),
		BuildTime: parseTime(BuildTime),
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// GetVersion returns the binary version, falling back to module build info.
func GetVersion() string {
	if Version != "" && Version != "dev" {
		return Version
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "(devel)" && info.Main.Version != "" {
			return info.Main.Version
		}
		if rev := setting(info, "vcs.revision"); len(rev) >= 7 {
			return "dev-" + rev[:7]
		}
	}

	return "dev"
}

// GetGitCommit returns the git commit hash
func GetGitCommit() string {
	if GitCommit != "" && GitCommit != "unknown" {
		return GitCommit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if rev := setting(info, "vcs.revision"); rev != "" {
			return rev
		}
	}
	return "unknown"
}

// GetShortVersion returns a short version string suitable for display
func GetShortVersion() string {
	v := GetVersion()
	commit := GetGitCommit()

	if len(commit) >= 7 && commit != "unknown" && !strings.HasPrefix(v, "dev") {
		return fmt.Sprintf("%s (%s)", v, commit[:7])
	}
	return v
}

// IsDirty returns true if the working directory was dirty when built
func IsDirty() bool {
	if info, ok := debug.ReadBuildInfo(); ok {
		return setting(info, "vcs.modified") == "true"
	}
	return false
}

func setting(info *debug.BuildInfo, key string) string {
	for _, s := range info.Settings {
		if s.Key == key {
			return s.Value
		}
	}
	return ""
}

func parseTime(s string) time.Time {
	if s == "" || s == "unknown" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Package is the identity of the package being built, from package.json.
type Package struct {
	Name    string
	Version string
}

// ReadPackage reads name and version from dir/package.json.
func ReadPackage(fsys afero.Fs, dir string) (Package, error) {
	path := filepath.Join(dir, "package.json")
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return Package{}, kiterrors.WrapIO(err, kiterrors.ErrCodeReadFailed, "reading package manifest", path)
	}
	if !gjson.ValidBytes(data) {
		return Package{}, kiterrors.NewValidationError(kiterrors.ErrCodeInvalidDefinition, "package manifest is not valid JSON").
			WithLocation(path, 0, 0)
	}

	result := gjson.GetManyBytes(data, "name", "version")
	pkg := Package{Name: result[0].String(), Version: result[1].String()}
	if pkg.Version == "" {
		return Package{}, kiterrors.NewValidationError(kiterrors.ErrCodeInvalidDefinition, "package manifest has no version").
			WithLocation(path, 0, 0)
	}
	return pkg, nil
}

// Versioned returns "<name>-<version>", the stem of release file names.
// The scope of a scoped package name is dropped so the stem stays a single
// path segment: "@scope/pkg" gives "pkg-<version>".
func Versioned(name, version string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	return name + "-" + version
}
