// Package version holds the build version of vlist.
package version

//nolint:gochecknoglobals // Set at build time via -ldflags "-X github.com/rshade/virtuallist/pkg/version.version=...".
var version = "dev"

// GetVersion returns the build version, "dev" for untagged builds.
func GetVersion() string {
	if version == "" {
		return "dev"
	}
	return version
}
