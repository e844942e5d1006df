package version

import "runtime/debug"

// Set via -ldflags "-X github.com/monorkin/lab-roster/internal/version.Version=..."
var Version = "dev"

// GetVersion returns the linker-provided version, falling back to the
// module version recorded in the build info for `go install` builds.
func GetVersion() string {
	if Version != "dev" {
		return Version
	}

	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}

	return Version
}
