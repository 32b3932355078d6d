// Package buildinfo reports the version changetower was built as.
//
// The variables are stamped at link time:
//
//	go build -ldflags "-X github.com/matzehuels/changetower/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/changetower/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/changetower/pkg/buildinfo.Date=$(date -u +%Y-%m-%d)" ./cmd/changetower
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info is the build information exposed by the CLI and the health endpoint.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Get returns the stamped build information.
func Get() Info {
	return Info{Version: Version, Commit: Commit, Date: Date}
}

// Template returns the cobra version template.
func Template() string {
	i := Get()
	return fmt.Sprintf("{{.Name}} %s (commit %s, built %s)\n", i.Version, i.Commit, i.Date)
}

// UserAgent returns the User-Agent sent upstream.
func UserAgent() string {
	return "changetower/" + Version
}
