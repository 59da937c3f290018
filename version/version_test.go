package version

import (
	"runtime/debug"
	"testing"
)

func withVars(t *testing.T, version, commit, buildTime string) {
	t.Helper()
	origVersion, origCommit, origBuildTime := Version, GitCommit, BuildTime
	t.Cleanup(func() {
		Version, GitCommit, BuildTime = origVersion, origCommit, origBuildTime
	})
	Version, GitCommit, BuildTime = version, commit, buildTime
}

func TestGetLinkTimeValues(t *testing.T) {
	withVars(t, "1.0.0", "abc1234def", "2024-01-15T10:30:00Z")

	info := Get()
	if info.Version != "1.0.0" {
		t.Errorf("expected '1.0.0', got %q", info.Version)
	}
	if info.GitCommit != "abc1234" {
		t.Errorf("expected commit truncated to 'abc1234', got %q", info.GitCommit)
	}
	if info.BuildTime != "2024-01-15T10:30:00Z" {
		t.Errorf("unexpected build time %q", info.BuildTime)
	}
}

func TestApplyBuildInfo(t *testing.T) {
	bi := &debug.BuildInfo{
		GoVersion: "go1.26.0",
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	}

	t.Run("fills unset fields", func(t *testing.T) {
		info := Info{Version: "dev"}
		applyBuildInfo(&info, bi)
		if info.GitCommit != "0123456789" || info.BuildTime != "2026-01-02T03:04:05Z" {
			t.Errorf("unexpected info: %+v", info)
		}
		if !info.Dirty || info.GoVersion != "go1.26.0" {
			t.Errorf("unexpected info: %+v", info)
		}
	})

	t.Run("link time values win", func(t *testing.T) {
		info := Info{Version: "1.0.0", GitCommit: "fixed", BuildTime: "then"}
		applyBuildInfo(&info, bi)
		if info.GitCommit != "fixed" || info.BuildTime != "then" {
			t.Errorf("unexpected info: %+v", info)
		}
	})
}

func TestIsRelease(t *testing.T) {
	tests := []struct {
		info Info
		want bool
	}{
		{Info{Version: "1.0.0"}, true},
		{Info{Version: "dev"}, false},
		{Info{Version: "1.0.0-dirty"}, false},
		{Info{Version: "1.0.0", Dirty: true}, false},
	}
	for _, tc := range tests {
		if got := tc.info.IsRelease(); got != tc.want {
			t.Errorf("%+v: IsRelease=%v, want %v", tc.info, got, tc.want)
		}
	}
}

func TestShortAndString(t *testing.T) {
	tests := []struct {
		info  Info
		short string
		full  string
	}{
		{Info{Version: "dev"}, "dev", "dev"},
		{Info{Version: "1.0.0", GitCommit: "abc1234"}, "1.0.0-abc1234", "1.0.0-abc1234"},
		{
			Info{Version: "1.0.0", GitCommit: "abc1234", Dirty: true, BuildTime: "2024-01-15", GoVersion: "go1.26.0"},
			"1.0.0-abc1234-dirty",
			"1.0.0-abc1234-dirty (built 2024-01-15, go1.26.0)",
		},
	}
	for _, tc := range tests {
		if got := tc.info.Short(); got != tc.short {
			t.Errorf("Short() = %q, want %q", got, tc.short)
		}
		if got := tc.info.String(); got != tc.full {
			t.Errorf("String() = %q, want %q", got, tc.full)
		}
	}
}
