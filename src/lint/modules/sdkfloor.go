package modules

import (
	"context"
	"fmt"

	"github.com/sofmeright/droidconf/src/descriptor"
	"github.com/sofmeright/droidconf/src/lint"
)

// defaultMinTarget is the targetSdk Google Play requires for new apps and updates.
const defaultMinTarget = 34

func init() {
	lint.Register("sdkfloor", func() lint.Module {
		return &sdkFloorModule{cfg: sdkFloorConfig{MinTarget: defaultMinTarget}}
	})
}

type sdkFloorConfig struct {
	MinTarget int `json:"min_target"`
	// MinCompile defaults to MinTarget.
	MinCompile int `json:"min_compile"`
}

type sdkFloorModule struct {
	cfg sdkFloorConfig
}

func (m *sdkFloorModule) Name() string         { return "sdkfloor" }
func (m *sdkFloorModule) DefaultEnabled() bool { return true }

// Configure implements lint.ConfigurableModule.
func (m *sdkFloorModule) Configure(opts map[string]any) error {
	cfg := sdkFloorConfig{MinTarget: defaultMinTarget}
	if err := decodeOptions(m.Name(), opts, &cfg); err != nil {
		return err
	}
	if cfg.MinTarget < 1 {
		return fmt.Errorf("sdkfloor: min_target must be positive, got %d", cfg.MinTarget)
	}
	if cfg.MinCompile == 0 {
		cfg.MinCompile = cfg.MinTarget
	}
	m.cfg = cfg
	return nil
}

func (m *sdkFloorModule) Check(ctx context.Context, t *lint.Target) ([]lint.Finding, error) {
	cfg := t.Config
	if cfg == nil {
		return nil, nil
	}
	minCompile := m.cfg.MinCompile
	if minCompile == 0 {
		minCompile = m.cfg.MinTarget
	}

	var findings []lint.Finding
	if cfg.SDK.Target > 0 && cfg.SDK.Target < m.cfg.MinTarget {
		findings = append(findings, t.Finding(m.Name(), lint.SeverityWarning, t.Line(descriptor.KeyTargetSdk),
			"targetSdk %d is below the required %d", cfg.SDK.Target, m.cfg.MinTarget))
	}
	if cfg.SDK.Compile > 0 && cfg.SDK.Compile < minCompile {
		findings = append(findings, t.Finding(m.Name(), lint.SeverityWarning, t.Line(descriptor.KeyCompileSdk),
			"compileSdk %d is below %d", cfg.SDK.Compile, minCompile))
	}
	return findings, nil
}
