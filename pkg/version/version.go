package version

import "fmt"

var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// Summary returns a human-friendly version string for CLI output.
func Summary() string {
	return Version
}

// UserAgent identifies this build to remote APIs.
func UserAgent() string {
	return fmt.Sprintf("flowctl/%s", Version)
}
