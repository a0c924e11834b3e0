// Package version reports which build of moonlighter is running.
package version

import (
	"runtime/debug"
	"strings"
)

// Release builds set the version with something like:
// go build -ldflags "-X github.com/moonlighter/moonlighter/version.Version=$(git describe --dirty)" ./cmd/moonlighter

var Version string

// Hash is the short VCS revision the binary was built from, suffixed with
// -dirty for modified trees, or empty when the build carries no VCS info.
var Hash = hash(readSettings())

var VersionOrHash = func() string {
	if Version != "" {
		return Version
	}
	if Hash != "" {
		return Hash
	}
	return "devel"
}()

func readSettings() map[string]string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return nil
	}
	ret := make(map[string]string, len(info.Settings))
	for _, s := range info.Settings {
		ret[s.Key] = s.Value
	}
	return ret
}

func hash(settings map[string]string) string {
	rev := settings["vcs.revision"]
	if rev == "" {
		return ""
	}
	rev = rev[:min(7, len(rev))]
	if settings["vcs.modified"] == "true" {
		return rev + "-dirty"
	}
	return rev
}

// String returns the version with the Go toolchain it was built with.
func String() string {
	var b strings.Builder
	b.WriteString("moonlighter ")
	b.WriteString(VersionOrHash)
	if info, ok := debug.ReadBuildInfo(); ok && info.GoVersion != "" {
		b.WriteString(" (" + info.GoVersion + ")")
	}
	return b.String()
}
