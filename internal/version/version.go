// Package version exposes build metadata injected via -ldflags.
package version

var (
	// Version is the release tag, or the default for local builds.
	Version = "0.1.0"

	// BuildTime is when the binary was produced, in UTC.
	BuildTime = "unknown"

	// GitCommit is the short hash the binary was built from.
	GitCommit = "unknown"
)
