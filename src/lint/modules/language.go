package modules

import (
	"context"

	"github.com/sofmeright/droidconf/src/descriptor"
	"github.com/sofmeright/droidconf/src/lint"
)

func init() {
	lint.Register("language", func() lint.Module { return &languageModule{} })
}

// languageModule keeps Java and Kotlin bytecode targets in step.
type languageModule struct{}

func (m *languageModule) Name() string         { return "language" }
func (m *languageModule) DefaultEnabled() bool { return true }

func (m *languageModule) Check(ctx context.Context, t *lint.Target) ([]lint.Finding, error) {
	cfg := t.Config
	if cfg == nil || cfg.Language == "" {
		return nil, nil
	}

	var findings []lint.Finding
	if cfg.JvmTarget != "" {
		jvm, err := descriptor.ParseLanguageLevel(cfg.JvmTarget)
		switch {
		case err != nil:
			findings = append(findings, t.Finding(m.Name(), lint.SeverityWarning, t.Line(descriptor.KeyJvmTarget),
				"jvmTarget %q is not a known Java version", cfg.JvmTarget))
		case jvm != cfg.Language:
			findings = append(findings, t.Finding(m.Name(), lint.SeverityWarning, t.Line(descriptor.KeyJvmTarget),
				"jvmTarget %s does not match Java compatibility %s; Kotlin and Java classes will target different bytecode", jvm, cfg.Language))
		}
	}
	if cfg.DesugaringEnabled && cfg.Language.Rank() < descriptor.Java8.Rank() {
		findings = append(findings, t.Finding(m.Name(), lint.SeverityWarning, t.Line(descriptor.KeyLanguage),
			"core library desugaring needs Java %s or newer, found %s", descriptor.Java8, cfg.Language))
	}
	return findings, nil
}
