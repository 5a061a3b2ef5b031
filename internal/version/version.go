// Package version holds build metadata set with -ldflags "-X".
package version

import "fmt"

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Service is the name reported in logs and the CLI version line.
const Service = "foofind-search"

// String renders the build as "foofind-search v1.2.0 (abc123, 2026-01-02)".
func String() string {
	return fmt.Sprintf("%s %s (%s, %s)", Service, Version, Commit, Date)
}
