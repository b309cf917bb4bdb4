package lint

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sofmeright/droidconf/src/config"
)

var echoCalls atomic.Int64

// echoModule reports one finding per target, naming the application id.
type echoModule struct {
	prefix string
}

func (m *echoModule) Name() string         { return "echo" }
func (m *echoModule) DefaultEnabled() bool { return false }

func (m *echoModule) Configure(opts map[string]any) error {
	m.prefix = "id"
	if p, ok := opts["prefix"].(string); ok {
		m.prefix = p
	}
	return nil
}

func (m *echoModule) Check(_ context.Context, t *Target) ([]Finding, error) {
	echoCalls.Add(1)
	if t.Config == nil {
		return nil, fmt.Errorf("no config")
	}
	return []Finding{t.Finding(m.Name(), SeverityWarning, 1, "%s=%s", m.prefix, t.Config.ApplicationID)}, nil
}

func init() {
	Register("echo", func() Module { return &echoModule{} })
}

func loadTargets(t *testing.T, files map[string]string) (string, []*Target) {
	t.Helper()
	root := t.TempDir()
	var paths []string
	for name, body := range files {
		p := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, p)
	}
	l := &Loader{RootDir: root, Toolchain: config.DefaultToolchainConfig(), LookupEnv: func(string) (string, bool) { return "", false }}
	targets, err := l.LoadAll(context.Background(), paths)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	return root, targets
}

const minimalYAML = `application_id: %s
sdk:
  min: 21
  target: 34
  compile: 34
`

func TestEngineRunsSelectedModule(t *testing.T) {
	_, targets := loadTargets(t, map[string]string{
		"b/app.droid.yml":      fmt.Sprintf(minimalYAML, "com.acme.b"),
		"a/app.droid.yml":      fmt.Sprintf(minimalYAML, "com.acme.a"),
		"vendor/lib.droid.yml": fmt.Sprintf(minimalYAML, "com.vendor"),
	})

	cfg := config.DefaultLintConfig()
	cfg.Modules["echo"] = config.ModuleConfig{
		Options: map[string]any{"prefix": "appid"},
		Exclude: []string{"vendor/**"},
	}
	e, err := NewEngine(cfg, []string{"echo"}, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	findings, stats, err := e.RunWithStats(context.Background(), targets)
	if err != nil {
		t.Fatal(err)
	}
	want := []Finding{
		{File: "a/app.droid.yml", Line: 1, Module: "echo", Severity: SeverityWarning, Message: "appid=com.acme.a"},
		{File: "b/app.droid.yml", Line: 1, Module: "echo", Severity: SeverityWarning, Message: "appid=com.acme.b"},
	}
	if diff := cmp.Diff(want, findings); diff != "" {
		t.Errorf("findings mismatch (-want +got):\n%s", diff)
	}
	if len(stats) != 1 || stats[0].Files != 2 || stats[0].Warnings != 2 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestEngineSkipsDisabledByDefault(t *testing.T) {
	if _, err := NewEngine(config.DefaultLintConfig(), []string{"echo"}, []string{"echo"}, nil, nil); err == nil {
		t.Fatal("expected error when every module is skipped")
	}
	if _, err := NewEngine(config.DefaultLintConfig(), []string{"nope"}, nil, nil, nil); err == nil {
		t.Fatal("expected error for unknown module")
	}
}

func TestEngineCache(t *testing.T) {
	root, targets := loadTargets(t, map[string]string{
		"app.droid.yml": fmt.Sprintf(minimalYAML, "com.acme.cached"),
	})
	cache := NewCache(root, "", true)
	cfg := config.DefaultLintConfig()

	run := func() []Finding {
		e, err := NewEngine(cfg, []string{"echo"}, nil, nil, cache)
		if err != nil {
			t.Fatal(err)
		}
		findings, err := e.Run(context.Background(), targets)
		if err != nil {
			t.Fatal(err)
		}
		return findings
	}

	before := echoCalls.Load()
	first := run()
	second := run()
	if got := echoCalls.Load() - before; got != 1 {
		t.Errorf("module ran %d times, want 1 (second run cached)", got)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("cached findings differ (-first +second):\n%s", diff)
	}

	// A different variable snapshot is a different key.
	targets[0].Variables = map[string]string{"flutter.minSdkVersion": "23"}
	run()
	if got := echoCalls.Load() - before; got != 2 {
		t.Errorf("module ran %d times after variable change, want 2", got)
	}

	if err := cache.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(root, DefaultCacheDir)); !os.IsNotExist(err) {
		t.Errorf("cache dir still present: %v", err)
	}
}

func TestEnsureGitignore(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ".gitignore"), []byte("build/"), 0o644); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if err := EnsureGitignore(root); err != nil {
			t.Fatal(err)
		}
	}
	data, err := os.ReadFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), "build/\n.droidconf/\n"; got != want {
		t.Errorf(".gitignore = %q, want %q", got, want)
	}
}

func TestMatchGlob(t *testing.T) {
	tests := []struct {
		pattern, path string
		want          bool
	}{
		{"**/build/**", "android/app/build/tmp/x.kts", true},
		{"**/build/**", "android/app/build.gradle.kts", false},
		{"legacy/**", "legacy/old/app.droid.yml", true},
		{"legacy/**", "app/legacy/app.droid.yml", false},
		{"*/app/*.kts", "android/app/build.gradle.kts", true},
		{"**/*.droid.yml", "app.droid.yml", true},
		{"apps/*/**", "apps/wear/app.droid.toml", true},
		{"*.toml", "app.droid.yml", false},
	}
	for _, tt := range tests {
		if got := MatchGlob(tt.pattern, tt.path); got != tt.want {
			t.Errorf("MatchGlob(%q, %q) = %v, want %v", tt.pattern, tt.path, got, tt.want)
		}
	}
}
