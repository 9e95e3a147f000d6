// Package version reports build information stamped at link time
package version

import "runtime/debug"

// BuildInfo holds version information about the running binary
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// set with -ldflags "-X storeuptime/internal/core/version.version=v1.2.3 ..."
var (
	service = "storeuptime"
	version = "dev"
	commit  = ""
	date    = "unknown"
)

// Get returns the build information; commit falls back to the vcs revision in the binary
func Get() BuildInfo {
	c := commit
	if c == "" {
		c = "none"
		if bi, ok := debug.ReadBuildInfo(); ok {
			for _, s := range bi.Settings {
				if s.Key == "vcs.revision" && s.Value != "" {
					c = s.Value
				}
			}
		}
	}
	return BuildInfo{Service: service, Version: version, Commit: c, Date: date}
}
