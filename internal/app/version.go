package app

import "fmt"

// Build metadata, set with -ldflags, e.g.
// -X github.com/heartmarshall/macrotrack-backend/internal/app.Version=1.0.0
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// BuildVersion formats the build metadata for logs, the health endpoint and
// the CLI.
func BuildVersion() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildTime)
}
