package modules

import (
	"context"
	"strings"

	"github.com/sofmeright/droidconf/src/descriptor"
	"github.com/sofmeright/droidconf/src/lint"
)

func init() {
	lint.Register("identifier", func() lint.Module { return &identifierModule{} })
}

// placeholderPrefixes are ids left over from project templates. The Play
// Console rejects com.example uploads.
var placeholderPrefixes = []string{"com.example", "com.yourcompany", "org.example"}

type identifierModule struct{}

func (m *identifierModule) Name() string         { return "identifier" }
func (m *identifierModule) DefaultEnabled() bool { return true }

func (m *identifierModule) Check(ctx context.Context, t *lint.Target) ([]lint.Finding, error) {
	cfg := t.Config
	if cfg == nil || cfg.ApplicationID == "" {
		return nil, nil
	}

	var findings []lint.Finding
	for _, p := range placeholderPrefixes {
		if cfg.ApplicationID == p || strings.HasPrefix(cfg.ApplicationID, p+".") {
			findings = append(findings, t.Finding(m.Name(), lint.SeverityWarning, t.Line(descriptor.KeyApplicationID),
				"applicationId %q uses the template prefix %s", cfg.ApplicationID, p))
			break
		}
	}
	if cfg.Namespace != "" && cfg.Namespace != cfg.ApplicationID {
		findings = append(findings, t.Finding(m.Name(), lint.SeverityInfo, t.Line(descriptor.KeyNamespace),
			"namespace %q differs from applicationId %q; R and BuildConfig classes live in the namespace", cfg.Namespace, cfg.ApplicationID))
	}
	if strings.ToLower(cfg.ApplicationID) != cfg.ApplicationID {
		findings = append(findings, t.Finding(m.Name(), lint.SeverityInfo, t.Line(descriptor.KeyApplicationID),
			"applicationId %q contains upper-case letters", cfg.ApplicationID))
	}
	return findings, nil
}
