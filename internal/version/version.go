// Package version holds build metadata stamped in via ldflags.
package version

//nolint:revive // Values are overwritten by the build pipeline.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
