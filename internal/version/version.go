// Package version holds the build identity of the dashboard binary.
//
// Release builds stamp it at link time:
//
//	go build -ldflags "-X github.com/Lionkjgame1219/Chiv2AdminDashboard/internal/version.Version=1.4.2.0 \
//	  -X github.com/Lionkjgame1219/Chiv2AdminDashboard/internal/version.GitCommit=$(git rev-parse --short HEAD)"
//
// The updater reads Version when the executable has no file version resource.
package version

import (
	"fmt"
	"runtime"
)

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// Name is the product name shown to users.
const Name = "Chivalry 2 Admin Dashboard"

// IsDev reports whether the binary was built without a release version.
func IsDev() bool {
	return Version == "" || Version == "dev"
}

// Info is the build identity in structured form.
type Info struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	Dev       bool   `json:"dev"`
}

// Get returns the identity of the running binary.
func Get() Info {
	return Info{
		Name:      Name,
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		Dev:       IsDev(),
	}
}

// String renders i on one line, e.g.
// "Chivalry 2 Admin Dashboard 1.4.2.0 (3f2a9c1) built 2026-02-01 - Go go1.24.0 windows/amd64".
func (i Info) String() string {
	return fmt.Sprintf("%s %s (%s) built %s - Go %s %s", i.Name, i.Version, i.GitCommit, i.BuildTime, i.GoVersion, i.Platform)
}

// Full is the one-line identity of the running binary.
func Full() string {
	return Get().String()
}
