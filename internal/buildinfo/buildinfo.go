// Package buildinfo carries release metadata injected via ldflags.
package buildinfo

// These default to empty for local/dev builds.
var (
	Version = ""
	Commit  = ""
	Date    = ""
)
