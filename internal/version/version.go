// Package version holds build fingerprints of the tmplprof CLI.
// The variables can be overridden at build time via -ldflags.
package version

import (
	"runtime"
	"runtime/debug"

	"github.com/fatih/color"
)

var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

// Info is the machine-readable build description.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get collects Info, falling back to VCS data embedded by the go tool when
// the ldflags variables are empty.
func Get() Info {
	info := Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.GitCommit == "" {
					info.GitCommit = s.Value
				}
			case "vcs.time":
				if info.BuildDate == "" {
					info.BuildDate = s.Value
				}
			}
		}
	}
	return info
}

var (
	nameColor    = color.New(color.FgCyan, color.Bold)
	versionColor = color.New(color.FgGreen, color.Bold)
	labelColor   = color.New(color.Faint)
)

// Pretty renders Info for terminals. Colour follows color.NoColor.
func (i Info) Pretty() string {
	out := nameColor.Sprint("tmplprof") + " " + versionColor.Sprint(i.Version) + "\n"
	if i.GitCommit != "" {
		out += labelColor.Sprint("commit:   ") + i.GitCommit + "\n"
	}
	if i.BuildDate != "" {
		out += labelColor.Sprint("built:    ") + i.BuildDate + "\n"
	}
	out += labelColor.Sprint("go:       ") + i.GoVersion + " " + i.Platform + "\n"
	return out
}
