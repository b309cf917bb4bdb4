package modules

import (
	"context"
	"strings"

	"github.com/sofmeright/droidconf/src/descriptor"
	"github.com/sofmeright/droidconf/src/lint"
)

// nativeMultidexSdk is the first API level whose runtime (ART) loads multiple
// dex files without the support library.
const nativeMultidexSdk = 21

func init() {
	lint.Register("multidex", func() lint.Module { return &multidexModule{} })
}

type multidexModule struct{}

func (m *multidexModule) Name() string         { return "multidex" }
func (m *multidexModule) DefaultEnabled() bool { return true }

func (m *multidexModule) Check(ctx context.Context, t *lint.Target) ([]lint.Finding, error) {
	cfg := t.Config
	if cfg == nil || !cfg.MultidexEnabled {
		return nil, nil
	}
	line := t.Line(descriptor.KeyMultidex)

	if cfg.SDK.Min >= nativeMultidexSdk {
		return []lint.Finding{t.Finding(m.Name(), lint.SeverityInfo, line,
			"multiDexEnabled is redundant with minSdk %d (native multidex from API %d)", cfg.SDK.Min, nativeMultidexSdk)}, nil
	}
	for _, dep := range cfg.Dependencies {
		if strings.HasPrefix(dep.Module(), "androidx.multidex:multidex") || strings.HasPrefix(dep.Module(), "com.android.support:multidex") {
			return nil, nil
		}
	}
	return []lint.Finding{t.Finding(m.Name(), lint.SeverityWarning, line,
		"multiDexEnabled with minSdk %d needs an androidx.multidex:multidex dependency", cfg.SDK.Min)}, nil
}
