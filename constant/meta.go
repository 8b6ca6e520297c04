// Package constant defines immutable application-level identifiers.
package constant

const (
	// Coursecast is the application identifier used for filesystem paths, env prefixes and CLI branding.
	Coursecast = "coursecast"

	// Version is the current application semantic version string.
	Version = "0.1.0"

	// UserAgent is sent with every catalog and media request.
	UserAgent = Coursecast + "/" + Version
)

// Build metadata, set with -ldflags "-X github.com/coursecast/coursecast/constant.Revision=...".
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)
