package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func stubBuildInfo(t *testing.T, bi *debug.BuildInfo) {
	t.Helper()
	orig := readBuildInfo
	readBuildInfo = func() (*debug.BuildInfo, bool) { return bi, bi != nil }
	t.Cleanup(func() { readBuildInfo = orig })
}

func TestGetFallsBackToModuleInfo(t *testing.T) {
	stubBuildInfo(t, &debug.BuildInfo{
		GoVersion: "go1.24.2",
		Main:      debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	})

	got := Get()
	if got.Version != "v0.3.1" || got.Commit != "0123456789abcdef0123" || got.Date != "2026-01-02T03:04:05Z" {
		t.Errorf("Get() = %+v", got)
	}
	if !strings.Contains(String(), "commit: 0123456789ab-dirty") {
		t.Errorf("String() = %q, want short dirty commit", String())
	}
}

func TestGetPrefersStampedValues(t *testing.T) {
	oldV, oldC := Version, Commit
	Version, Commit = "v1.0.0", "feedface"
	t.Cleanup(func() { Version, Commit = oldV, oldC })

	stubBuildInfo(t, &debug.BuildInfo{
		Main:     debug.Module{Version: "v0.0.1"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "other"}},
	})

	got := Get()
	if got.Version != "v1.0.0" || got.Commit != "feedface" {
		t.Errorf("Get() = %+v, want stamped values", got)
	}
}

func TestGetWithoutBuildInfo(t *testing.T) {
	stubBuildInfo(t, nil)
	got := Get()
	if got.Version != Version || got.GoVersion != "" {
		t.Errorf("Get() = %+v", got)
	}
	if !strings.HasPrefix(Template(), "{{.Name}} version: ") {
		t.Errorf("Template() = %q", Template())
	}
}

func TestDevelVersionIgnored(t *testing.T) {
	stubBuildInfo(t, &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})
	if got := Get().Version; got != "dev" {
		t.Errorf("Version = %q, want dev", got)
	}
}
