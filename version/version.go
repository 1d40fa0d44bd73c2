package version

import (
	"runtime"
	"runtime/debug"
)

// Set with -ldflags "-X storemonitor/version.Version=..."
var (
	Version  = "dev"
	Revision = ""
)

type Info struct {
	Service   string `json:"service"`
	Version   string `json:"version"`
	Revision  string `json:"revision,omitempty"`
	Dirty     bool   `json:"dirty,omitempty"`
	GoVersion string `json:"go_version"`
}

// Get describes the running binary, falling back to the VCS stamp the Go
// toolchain embeds when the ldflags were not set.
func Get(service string) Info {
	info := Info{
		Service:   service,
		Version:   Version,
		Revision:  Revision,
		GoVersion: runtime.Version(),
	}

	build, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if info.Version == "dev" && build.Main.Version != "" && build.Main.Version != "(devel)" {
		info.Version = build.Main.Version
	}
	for _, s := range build.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Revision == "" {
				info.Revision = s.Value
			}
		case "vcs.modified":
			info.Dirty = s.Value == "true"
		}
	}
	return info
}
