// Package version holds build metadata injected with -ldflags, e.g.
//
//	go build -ldflags "-X github.com/coreybb/newsdash/version.Version=1.4.0 \
//	  -X github.com/coreybb/newsdash/version.GitCommit=$(git rev-parse --short HEAD) \
//	  -X github.com/coreybb/newsdash/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package version

import "github.com/coreybb/newsdash/models"

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = ""
)

// Info returns the build metadata in the shape the news API uses for its own.
func Info() models.VersionInfo {
	return models.VersionInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
	}
}

// String is the short form used in headers and logs.
func String() string {
	if GitCommit == "" || GitCommit == "unknown" {
		return Version
	}
	return Version + "+" + GitCommit
}
