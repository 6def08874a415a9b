// Package version carries the build identity stamped into scratch-view
// release binaries.
package version

import "fmt"

// Overridden at build time, e.g.
//
//	go build -ldflags "-X scratch-view/internal/version.Version=1.0.0"
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Full returns a one-line description for logs and the About dialog.
func Full() string {
	return fmt.Sprintf("v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
}
