package modules

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sofmeright/droidconf/src/descriptor"
	"github.com/sofmeright/droidconf/src/lint"
)

// decodeOptions round-trips the YAML options map through JSON into dst.
func decodeOptions(module string, opts map[string]any, dst any) error {
	if len(opts) == 0 {
		return nil
	}
	b, err := json.Marshal(opts)
	if err != nil {
		return fmt.Errorf("%s: marshal options: %w", module, err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("%s: unmarshal options: %w", module, err)
	}
	return nil
}

// buildTypeLine returns the declaration line of a build type, or 0.
func buildTypeLine(t *lint.Target, name string) int {
	if t.Descriptor == nil {
		return 0
	}
	for _, bt := range t.Descriptor.BuildTypes {
		if bt.Name == name {
			return bt.Line
		}
	}
	return 0
}

// fieldLine maps a dotted field name to its declaration line.
func fieldLine(t *lint.Target, field string) int {
	if rest, ok := strings.CutPrefix(field, "buildTypes."); ok {
		name, _, _ := strings.Cut(rest, ".")
		return buildTypeLine(t, name)
	}
	key, _, _ := strings.Cut(field, ".")
	return t.Line(key)
}

// releaseLike reports whether a build type ships to users.
func releaseLike(bt descriptor.BuildType) bool {
	name := strings.ToLower(bt.Name)
	return name == "release" || strings.HasSuffix(name, "release") || name == "production" || name == "prod"
}

func dependencyLine(t *lint.Target, dep descriptor.Dependency) int {
	if dep.Line > 0 {
		return dep.Line
	}
	return t.Line(descriptor.KeyDependencies)
}
