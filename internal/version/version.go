package version

import "fmt"

// Version is set via build-time ldflags in production:
// go build -ldflags "-X git.home.luguber.info/inful/buildconf/internal/version.Version=v0.3.0".
var Version = "unknown"

// BuildInfo contains additional build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the version line printed by --version.
func String() string {
	return fmt.Sprintf("buildconf %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
