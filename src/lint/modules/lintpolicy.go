package modules

import (
	"context"
	"fmt"

	"github.com/sofmeright/droidconf/src/descriptor"
	"github.com/sofmeright/droidconf/src/lint"
)

func init() {
	lint.Register("lintpolicy", func() lint.Module { return &lintPolicyModule{} })
}

type lintPolicyConfig struct {
	// Forbid lists Android Lint checks that must not be disabled.
	Forbid []string `json:"forbid"`
	// MaxDisabled warns when more checks than this are disabled; 0 means no limit.
	MaxDisabled int `json:"max_disabled"`
}

// lintPolicyModule reviews how the descriptor configures Android Lint.
type lintPolicyModule struct {
	cfg lintPolicyConfig
}

func (m *lintPolicyModule) Name() string         { return "lintpolicy" }
func (m *lintPolicyModule) DefaultEnabled() bool { return true }

// Configure implements lint.ConfigurableModule.
func (m *lintPolicyModule) Configure(opts map[string]any) error {
	var cfg lintPolicyConfig
	if err := decodeOptions(m.Name(), opts, &cfg); err != nil {
		return err
	}
	if cfg.MaxDisabled < 0 {
		return fmt.Errorf("lintpolicy: max_disabled must be non-negative, got %d", cfg.MaxDisabled)
	}
	m.cfg = cfg
	return nil
}

func (m *lintPolicyModule) Check(ctx context.Context, t *lint.Target) ([]lint.Finding, error) {
	if t.Config == nil {
		return nil, nil
	}
	opts := t.Config.Lint
	line := t.Line(descriptor.KeyLint)

	var findings []lint.Finding
	if !opts.CheckReleaseBuilds {
		l := t.Line(descriptor.KeyCheckReleaseBuilds)
		if l == 0 {
			l = line
		}
		findings = append(findings, t.Finding(m.Name(), lint.SeverityWarning, l,
			"checkReleaseBuilds is false; fatal lint errors will not block release builds"))
	}
	for _, rule := range m.cfg.Forbid {
		if opts.Disabled(rule) {
			findings = append(findings, t.Finding(m.Name(), lint.SeverityWarning, line,
				"lint check %s must not be disabled", rule))
		}
	}
	if m.cfg.MaxDisabled > 0 && len(opts.Disable) > m.cfg.MaxDisabled {
		findings = append(findings, t.Finding(m.Name(), lint.SeverityInfo, line,
			"%d lint checks disabled (limit %d)", len(opts.Disable), m.cfg.MaxDisabled))
	}
	return findings, nil
}
