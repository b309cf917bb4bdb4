package modules

import (
	"context"

	"github.com/Masterminds/semver/v3"
	"github.com/sofmeright/droidconf/src/descriptor"
	"github.com/sofmeright/droidconf/src/lint"
)

// maxVersionCode is the largest versionCode Google Play accepts.
const maxVersionCode = 2100000000

func init() {
	lint.Register("version", func() lint.Module { return &versionModule{} })
}

type versionModule struct{}

func (m *versionModule) Name() string         { return "version" }
func (m *versionModule) DefaultEnabled() bool { return true }

func (m *versionModule) Check(ctx context.Context, t *lint.Target) ([]lint.Finding, error) {
	cfg := t.Config
	if cfg == nil {
		return nil, nil
	}

	var findings []lint.Finding
	codeLine := t.Line(descriptor.KeyVersionCode)
	switch {
	case cfg.VersionCode <= 0:
		findings = append(findings, t.Finding(m.Name(), lint.SeverityWarning, codeLine,
			"versionCode must be a positive integer, got %d", cfg.VersionCode))
	case cfg.VersionCode > maxVersionCode:
		findings = append(findings, t.Finding(m.Name(), lint.SeverityWarning, codeLine,
			"versionCode %d exceeds the Play limit %d", cfg.VersionCode, maxVersionCode))
	}

	nameLine := t.Line(descriptor.KeyVersionName)
	if cfg.VersionName == "" {
		findings = append(findings, t.Finding(m.Name(), lint.SeverityWarning, nameLine, "versionName is empty"))
		return findings, nil
	}
	v, err := semver.NewVersion(cfg.VersionName)
	if err != nil {
		findings = append(findings, t.Finding(m.Name(), lint.SeverityInfo, nameLine,
			"versionName %q is not a semantic version", cfg.VersionName))
		return findings, nil
	}
	if v.Original() != v.String() && v.Original() != "v"+v.String() {
		findings = append(findings, t.Finding(m.Name(), lint.SeverityInfo, nameLine,
			"versionName %q is not in canonical MAJOR.MINOR.PATCH form (%s)", cfg.VersionName, v))
	}
	return findings, nil
}
