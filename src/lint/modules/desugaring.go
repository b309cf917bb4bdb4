package modules

import (
	"context"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/sofmeright/droidconf/src/descriptor"
	"github.com/sofmeright/droidconf/src/lint"
)

const (
	desugarConfiguration = "coreLibraryDesugaring"
	desugarModule        = "com.android.tools:desugar_jdk_libs"
	defaultDesugarFloor  = "2.0.0"
)

func init() {
	lint.Register("desugaring", func() lint.Module {
		return &desugaringModule{floor: semver.MustParse(defaultDesugarFloor)}
	})
}

type desugaringConfig struct {
	MinVersion string `json:"min_version"`
}

// desugaringModule checks that core library desugaring is backed by the
// desugar_jdk_libs artifact, and that the artifact is recent enough.
type desugaringModule struct {
	floor *semver.Version
}

func (m *desugaringModule) Name() string         { return "desugaring" }
func (m *desugaringModule) DefaultEnabled() bool { return true }

// Configure implements lint.ConfigurableModule.
func (m *desugaringModule) Configure(opts map[string]any) error {
	cfg := desugaringConfig{MinVersion: defaultDesugarFloor}
	if err := decodeOptions(m.Name(), opts, &cfg); err != nil {
		return err
	}
	v, err := semver.NewVersion(cfg.MinVersion)
	if err != nil {
		return fmt.Errorf("desugaring: min_version %q: %w", cfg.MinVersion, err)
	}
	m.floor = v
	return nil
}

func (m *desugaringModule) Check(ctx context.Context, t *lint.Target) ([]lint.Finding, error) {
	cfg := t.Config
	if cfg == nil {
		return nil, nil
	}
	deps := cfg.DependenciesIn(desugarConfiguration)

	if !cfg.DesugaringEnabled {
		if len(deps) > 0 {
			return []lint.Finding{t.Finding(m.Name(), lint.SeverityWarning, dependencyLine(t, deps[0]),
				"%s dependency declared but isCoreLibraryDesugaringEnabled is false", desugarConfiguration)}, nil
		}
		return nil, nil
	}

	if len(deps) == 0 {
		return []lint.Finding{t.Finding(m.Name(), lint.SeverityCritical, t.Line(descriptor.KeyDesugaring),
			"core library desugaring is enabled but no %s dependency is declared (add %s(\"%s:%s\"))",
			desugarConfiguration, desugarConfiguration, desugarModule, m.floor)}, nil
	}

	var findings []lint.Finding
	for _, dep := range deps {
		if dep.Module() != desugarModule {
			findings = append(findings, t.Finding(m.Name(), lint.SeverityWarning, dependencyLine(t, dep),
				"unexpected %s artifact %s", desugarConfiguration, dep.Module()))
			continue
		}
		raw := dep.Version()
		if raw == "" {
			continue
		}
		v, err := semver.NewVersion(raw)
		if err != nil {
			findings = append(findings, t.Finding(m.Name(), lint.SeverityInfo, dependencyLine(t, dep),
				"%s version %q is not a release version", desugarModule, raw))
			continue
		}
		if v.LessThan(m.floor) {
			findings = append(findings, t.Finding(m.Name(), lint.SeverityWarning, dependencyLine(t, dep),
				"%s %s is older than %s", desugarModule, v, m.floor))
		}
	}
	return findings, nil
}
