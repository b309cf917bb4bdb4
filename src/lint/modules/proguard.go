package modules

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/sofmeright/droidconf/src/lint"
)

func init() {
	lint.Register("proguard", func() lint.Module { return &proguardModule{} })
}

// proguardModule checks rule file references against the filesystem.
type proguardModule struct{}

func (m *proguardModule) Name() string         { return "proguard" }
func (m *proguardModule) DefaultEnabled() bool { return true }

// CacheTTL implements lint.CacheTTLModule. Results depend on files other
// than the descriptor, so they are never cached.
func (m *proguardModule) CacheTTL() time.Duration { return -1 }

func (m *proguardModule) Check(ctx context.Context, t *lint.Target) ([]lint.Finding, error) {
	if t.Config == nil {
		return nil, nil
	}
	dir := filepath.Dir(t.AbsPath)

	var findings []lint.Finding
	for _, bt := range t.Config.BuildTypes {
		line := buildTypeLine(t, bt.Name)
		if bt.Minify && len(bt.ProguardFiles) == 0 {
			findings = append(findings, t.Finding(m.Name(), lint.SeverityWarning, line,
				"build type %s enables minification without any proguard rules file", bt.Name))
		}
		if !bt.Minify && len(bt.ProguardFiles) > 0 {
			findings = append(findings, t.Finding(m.Name(), lint.SeverityInfo, line,
				"build type %s lists proguard files but minification is off", bt.Name))
		}
		for _, ref := range bt.ProguardFiles {
			if ref.Default || ref.Path == "" {
				continue
			}
			path := ref.Path
			if !filepath.IsAbs(path) {
				path = filepath.Join(dir, filepath.FromSlash(path))
			}
			_, err := os.Stat(path)
			switch {
			case err == nil:
			case errors.Is(err, fs.ErrNotExist):
				findings = append(findings, t.Finding(m.Name(), lint.SeverityWarning, line,
					"build type %s: proguard file %s does not exist", bt.Name, ref.Path))
			default:
				return nil, err
			}
		}
	}
	return findings, nil
}
