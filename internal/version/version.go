// Package version exposes build metadata. The variables are overwritten with
// -ldflags "-X github.com/kailas-cloud/liquiditick/internal/version.Version=..."
package version

import "fmt"

//nolint:revive,gochecknoglobals // ldflags targets
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// String renders the metadata on one line, e.g. "v1.2.0 (abc123, 2026-03-14)".
func String() string {
	return fmt.Sprintf("%s (%s, %s)", Version, Commit, BuildDate)
}
