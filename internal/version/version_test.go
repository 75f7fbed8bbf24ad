package version

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestGetUsesOverrides(t *testing.T) {
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	t.Cleanup(func() { Version, GitCommit, BuildDate = origVersion, origCommit, origDate })

	Version = "1.2.3"
	GitCommit = "abc123def456"
	BuildDate = "2024-01-15T10:30:00Z"

	info := Get()
	if info.Version != "1.2.3" || info.GitCommit != "abc123def456" || info.BuildDate != "2024-01-15T10:30:00Z" {
		t.Fatalf("unexpected info: %+v", info)
	}
	if info.GoVersion == "" || !strings.Contains(info.Platform, "/") {
		t.Fatalf("runtime fields missing: %+v", info)
	}
}

func TestPrettyPlain(t *testing.T) {
	orig := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = orig })

	out := Info{Version: "0.1.0", GitCommit: "abc", GoVersion: "go1.25", Platform: "linux/amd64"}.Pretty()
	want := "tmplprof 0.1.0\ncommit:   abc\ngo:       go1.25 linux/amd64\n"
	if out != want {
		t.Fatalf("Pretty() =\n%q\nwant\n%q", out, want)
	}
}
