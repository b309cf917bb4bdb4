package modules

import (
	"context"

	"github.com/sofmeright/droidconf/src/lint"
)

func init() {
	lint.Register("signing", func() lint.Module { return &signingModule{} })
}

type signingModule struct{}

func (m *signingModule) Name() string         { return "signing" }
func (m *signingModule) DefaultEnabled() bool { return true }

func (m *signingModule) Check(ctx context.Context, t *lint.Target) ([]lint.Finding, error) {
	if t.Config == nil {
		return nil, nil
	}
	var findings []lint.Finding
	for _, bt := range t.Config.BuildTypes {
		if !releaseLike(bt) {
			continue
		}
		switch bt.SigningConfig {
		case "debug":
			findings = append(findings, t.Finding(m.Name(), lint.SeverityWarning, buildTypeLine(t, bt.Name),
				"build type %s is signed with the debug key; Play rejects debug-signed uploads", bt.Name))
		case "":
			findings = append(findings, t.Finding(m.Name(), lint.SeverityInfo, buildTypeLine(t, bt.Name),
				"build type %s has no signingConfig; the artifact will be unsigned", bt.Name))
		}
	}
	return findings, nil
}
