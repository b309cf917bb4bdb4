package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "droidconf.yml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingExplicitPath(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestLoadMergesDefaults(t *testing.T) {
	path := writeConfig(t, `version: 1
toolchain:
  variables:
    flutter.targetSdkVersion: "34"
lint:
  level: changed
  modules:
    sdkfloor:
      options:
        min_target: 33
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Lint.Level != LevelChanged {
		t.Errorf("level = %q, want changed", cfg.Lint.Level)
	}
	if cfg.Lint.FailOn != "critical" {
		t.Errorf("fail_on = %q, want default critical", cfg.Lint.FailOn)
	}
	if cfg.Toolchain.EnvPrefix != "DROIDCONF_" {
		t.Errorf("env_prefix = %q, want default", cfg.Toolchain.EnvPrefix)
	}
	if got := cfg.Toolchain.Variables["flutter.targetSdkVersion"]; got != "34" {
		t.Errorf("variable = %q, want 34", got)
	}
	if got := cfg.Lint.Modules["sdkfloor"].Options["min_target"]; got != 33 {
		t.Errorf("min_target = %v, want 33", got)
	}
	if cfg.Badge.Label != "droidconf" {
		t.Errorf("badge label = %q", cfg.Badge.Label)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, "version: 1\nlint:\n  levle: full\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestMigrateToLatest(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{name: "current", data: "version: 1\n"},
		{name: "missing", data: "lint: {}\n", wantErr: "no version field"},
		{name: "future", data: "version: 7\n", wantErr: "unknown config version 7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := MigrateToLatest([]byte(tt.data))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("err = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if string(out) != tt.data {
				t.Errorf("output changed: %q", out)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantErr   []string
		wantWarns int
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{
			name:    "bad level and fail_on",
			mutate:  func(c *Config) { c.Lint.Level = "partial"; c.Lint.FailOn = "info" },
			wantErr: []string{"lint.level", "lint.fail_on"},
		},
		{
			name: "override without match",
			mutate: func(c *Config) {
				c.Toolchain.Overrides = []ToolchainOverride{{Variables: map[string]string{"flutter.minSdkVersion": "23"}}}
			},
			wantErr: []string{"toolchain.overrides[0]: match is required"},
		},
		{
			name:      "empty override warns",
			mutate:    func(c *Config) { c.Toolchain.Overrides = []ToolchainOverride{{Match: "**"}} },
			wantWarns: 1,
		},
		{
			name:    "badge output escapes tree",
			mutate:  func(c *Config) { c.Badge.Output = "../badge.svg" },
			wantErr: []string{"badge.output"},
		},
		{
			name:    "properties path",
			mutate:  func(c *Config) { c.Toolchain.PropertiesFiles = []string{"android/local.properties"} },
			wantErr: []string{"properties_files[0]"},
		},
		{
			name:      "duplicate descriptor",
			mutate:    func(c *Config) { c.Descriptors = []string{"a.droid.yml", "a.droid.yml"} },
			wantWarns: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			warns, err := Validate(cfg)
			if len(warns) != tt.wantWarns {
				t.Errorf("warnings = %v, want %d", warns, tt.wantWarns)
			}
			if len(tt.wantErr) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			for _, want := range tt.wantErr {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("error %q missing %q", err, want)
				}
			}
		})
	}
}

func TestVariablesFor(t *testing.T) {
	tc := ToolchainConfig{
		Variables: map[string]string{
			"flutter.minSdkVersion":    "21",
			"flutter.targetSdkVersion": "34",
		},
		Overrides: []ToolchainOverride{
			{Match: "legacy/**", Variables: map[string]string{"flutter.minSdkVersion": "19"}},
			{Match: "**/wear/**", Variables: map[string]string{"flutter.targetSdkVersion": "33"}},
			{Match: "legacy/old/**", Variables: map[string]string{"flutter.minSdkVersion": "16"}},
		},
	}
	prefix := func(pattern, path string) bool {
		return strings.HasPrefix(path, strings.TrimSuffix(pattern, "**"))
	}

	got, err := tc.VariablesFor("legacy/old/app.droid.yml", prefix)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{
		"flutter.minSdkVersion":    "16",
		"flutter.targetSdkVersion": "34",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("VariablesFor mismatch (-want +got):\n%s", diff)
	}

	got, err = tc.VariablesFor("app/app.droid.yml", prefix)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(tc.Variables, got); diff != "" {
		t.Errorf("unmatched path mismatch (-want +got):\n%s", diff)
	}
	if got["flutter.minSdkVersion"] = "0"; tc.Variables["flutter.minSdkVersion"] != "21" {
		t.Error("VariablesFor aliased the base map")
	}
}
