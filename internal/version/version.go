// Package version holds build metadata for gobulb.
package version

import "fmt"

// These variables are set at build time using -ldflags
// Example: go build -ldflags "-X github.com/alexiusacademia/gobulb/internal/version.Version=0.2.0"
var (
	// Version is the semantic version of the application
	Version = "0.1.0"

	// BuildTime is the time the binary was built (set via ldflags)
	BuildTime = "unknown"

	// GitCommit is the git commit hash (set via ldflags)
	GitCommit = "unknown"

	// Author of the application
	Author = "Alexius Academia"

	// Year of release
	Year = "2026"
)

// Info is the build metadata as a single value, e.g. for the health endpoint.
type Info struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
}

// Current returns the metadata of the running binary.
func Current() Info {
	return Info{Version: Version, BuildTime: BuildTime, GitCommit: GitCommit}
}

// String formats the metadata on one line.
func (i Info) String() string {
	return fmt.Sprintf("gobulb v%s (commit %s, built %s)", i.Version, i.GitCommit, i.BuildTime)
}
