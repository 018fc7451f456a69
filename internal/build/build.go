// Package build holds version information stamped in at link time.
package build

import "fmt"

// Version and Commit are overwritten with -ldflags "-X".
var (
	Version = "dev"
	Commit  = "none"
)

// String formats the version for display.
func String() string {
	if Commit == "none" {
		return Version
	}
	return fmt.Sprintf("%s (%s)", Version, Commit)
}
