// Package version provides build-time version information.
package version

// These variables are set at build time using -ldflags, e.g.
//
//	go build -ldflags "-X drawing-viewer/internal/version.Version=1.2.0"
var (
	// Version is the semantic version
	Version = "0.1.0"

	// BuildTime is the UTC time when the binary was built
	BuildTime = "unknown"

	// GitCommit is the git commit hash
	GitCommit = "unknown"
)

// String formats the version for --version output.
func String() string {
	if GitCommit == "unknown" {
		return Version
	}
	return Version + " (" + GitCommit + ", " + BuildTime + ")"
}
