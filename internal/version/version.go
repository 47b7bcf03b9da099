// Package version carries build identification stamped in at link time.
package version

// Overridden in release builds via
// -ldflags "-X github.com/fullscreen-triangle/hugure/internal/version.Version=...".
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String renders the build identity as a single log-friendly token.
func String() string {
	return Version + " (" + Commit + ", " + Date + ")"
}
