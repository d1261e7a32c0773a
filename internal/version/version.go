// Package version holds build metadata injected via ldflags.
package version

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String returns the build metadata in a single human-readable line.
func String() string {
	return Version + " (" + Commit + ", " + Date + ")"
}
