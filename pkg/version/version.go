// Package version carries build metadata for the scopemap binary.
package version

import "runtime/debug"

const unknown = "<unknown>"

// Set at link time with -ldflags "-X github.com/Sumatoshi-tech/scopemap/pkg/version.Version=...".
var (
	Version = "dev"
	Commit  = unknown
	Date    = unknown
)

// InitBinaryVersion fills Commit and Date from the embedded VCS stamp when they were not set at
// link time, and Version from the main module version when built with go install.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	apply(info)
}

func apply(info *debug.BuildInfo) {
	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if Commit == unknown {
				Commit = setting.Value
			}
		case "vcs.time":
			if Date == unknown {
				Date = setting.Value
			}
		}
	}
}

// String renders the version line printed by the CLI.
func String() string {
	return "scopemap " + Version + " (commit: " + Commit + ", built: " + Date + ")"
}
