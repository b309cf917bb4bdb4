package modules

import (
	"context"
	"errors"

	"github.com/sofmeright/droidconf/src/descriptor"
	"github.com/sofmeright/droidconf/src/lint"
	"github.com/sofmeright/droidconf/src/validate"
)

func init() {
	lint.Register("validate", func() lint.Module { return &validateModule{} })
}

// validateModule surfaces the first structural violation of a descriptor, or
// the reason it could not be loaded at all.
type validateModule struct{}

func (m *validateModule) Name() string         { return "validate" }
func (m *validateModule) DefaultEnabled() bool { return true }

func (m *validateModule) Check(ctx context.Context, t *lint.Target) ([]lint.Finding, error) {
	if t.Err != nil {
		return []lint.Finding{m.loadFinding(t)}, nil
	}
	if t.Config == nil {
		return nil, nil
	}

	_, err := validate.Validate(*t.Config)
	if err == nil {
		return nil, nil
	}
	var ce *validate.ConfigError
	if !errors.As(err, &ce) {
		return nil, err
	}
	return []lint.Finding{
		t.Finding(m.Name(), lint.SeverityCritical, fieldLine(t, ce.Field), "%s: %s", ce.Kind, ce.Error()),
	}, nil
}

func (m *validateModule) loadFinding(t *lint.Target) lint.Finding {
	var (
		syntax     *descriptor.SyntaxError
		unresolved *descriptor.UnresolvedError
	)
	switch {
	case errors.As(t.Err, &syntax):
		f := t.Finding(m.Name(), lint.SeverityCritical, syntax.Line, "syntax error: %s", syntax.Msg)
		f.Column = syntax.Column
		return f
	case errors.As(t.Err, &unresolved):
		return t.Finding(m.Name(), lint.SeverityCritical, t.Line(unresolved.Field),
			"%s: toolchain variable %s is not defined", unresolved.Field, unresolved.Name)
	default:
		return t.Finding(m.Name(), lint.SeverityCritical, 0, "%v", t.Err)
	}
}
