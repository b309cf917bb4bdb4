package modules

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"github.com/sofmeright/droidconf/src/lint"
	"github.com/zricethezav/gitleaks/v8/detect"
)

func init() {
	lint.Register("secrets", func() lint.Module { return &secretsModule{} })
}

// signingLiteral matches keystore credentials written inline in a
// signingConfigs block or descriptor.
var signingLiteral = regexp.MustCompile(`(?i)\b(storePassword|keyPassword|store_password|key_password)\b\s*[=:]\s*"([^"$]{4,})"`)

type secretsModule struct {
	once     sync.Once
	detector *detect.Detector
	initErr  error

	mu sync.Mutex // guards detector
}

func (m *secretsModule) Name() string         { return "secrets" }
func (m *secretsModule) DefaultEnabled() bool { return true }

func (m *secretsModule) Check(ctx context.Context, t *lint.Target) ([]lint.Finding, error) {
	// One module instance serves every target concurrently.
	m.once.Do(func() {
		m.detector, m.initErr = detect.NewDetectorDefaultConfig()
	})
	if m.initErr != nil {
		return nil, m.initErr
	}

	m.mu.Lock()
	hits := m.detector.DetectBytes(t.Source)
	m.mu.Unlock()

	var findings []lint.Finding
	reported := make(map[int]bool)
	for _, h := range hits {
		line := h.StartLine + 1 // gitleaks is 0-indexed
		reported[line] = true
		findings = append(findings, t.Finding(m.Name(), lint.SeverityCritical, line,
			"%s (%s)", h.Description, h.RuleID))
	}

	for i, line := range strings.Split(string(t.Source), "\n") {
		if reported[i+1] {
			continue
		}
		if sm := signingLiteral.FindStringSubmatch(line); sm != nil {
			findings = append(findings, t.Finding(m.Name(), lint.SeverityCritical, i+1,
				"%s is hard-coded; read it from key.properties or the environment", sm[1]))
		}
	}
	return findings, nil
}
