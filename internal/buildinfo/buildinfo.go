// Package buildinfo carries the version stamped into the binary.
package buildinfo

import (
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"
)

// Set at build time via -ldflags "-X blaze/internal/buildinfo.Version=...".
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

// resolve fills an unset commit and date from the VCS stamp the go tool
// embeds in module builds.
func resolve() (commit, date string) {
	commit, date = Commit, Date
	if commit != "unknown" && date != "unknown" {
		return commit, date
	}
	bi, ok := readBuildInfo()
	if !ok {
		return commit, date
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && commit == "unknown":
			commit = s.Value
		case s.Key == "vcs.time" && date == "unknown":
			date = s.Value
		}
	}
	return commit, date
}

// Short returns a release version, else a 7-character commit, else "dev".
func Short() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	commit, _ := resolve()
	if commit == "" || commit == "unknown" {
		return "dev"
	}
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}

// Title is the window title for app.
func Title(app string) string {
	return fmt.Sprintf("%s (%s)", app, Short())
}

// Fields describes the build for the startup log line.
func Fields() []zap.Field {
	commit, date := resolve()
	return []zap.Field{
		zap.String("version", Version),
		zap.String("commit", commit),
		zap.String("built", date),
	}
}
