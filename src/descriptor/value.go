package descriptor

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is either a literal or a reference to a toolchain variable.
type Value struct {
	Literal string
	Ref     string
}

// Lit returns a literal value.
func Lit(s string) Value { return Value{Literal: s} }

// Ref returns a reference to the named toolchain variable.
func Ref(name string) Value { return Value{Ref: name} }

// IsZero reports whether nothing was declared.
func (v Value) IsZero() bool { return v.Literal == "" && v.Ref == "" }

// String renders the value the way it is written in YAML descriptors.
func (v Value) String() string {
	if v.Ref != "" {
		return "${" + v.Ref + "}"
	}
	return v.Literal
}

// parseValue turns a scalar written in a YAML/TOML descriptor into a Value.
// "${name}" is a reference; anything else is a literal.
func parseValue(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Value{}, nil
	case string:
		s := strings.TrimSpace(x)
		if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
			name := strings.TrimSpace(s[2 : len(s)-1])
			if name == "" {
				return Value{}, fmt.Errorf("empty variable reference %q", x)
			}
			return Ref(name), nil
		}
		return Lit(s), nil
	case int:
		return Lit(strconv.Itoa(x)), nil
	case int64:
		return Lit(strconv.FormatInt(x, 10)), nil
	case uint64:
		return Lit(strconv.FormatUint(x, 10)), nil
	case float64:
		return Lit(strconv.FormatFloat(x, 'f', -1, 64)), nil
	case bool:
		return Lit(strconv.FormatBool(x)), nil
	default:
		return Value{}, fmt.Errorf("unsupported value %v (%T)", raw, raw)
	}
}

// Lookup resolves toolchain variables by name.
type Lookup interface {
	Lookup(name string) (string, bool)
}

// UnresolvedError reports a toolchain variable no provider knows.
type UnresolvedError struct {
	Field string
	Name  string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("%s: toolchain variable %q is not defined", e.Field, e.Name)
}

func resolveString(field string, v Value, vars Lookup) (string, error) {
	if v.Ref == "" {
		return v.Literal, nil
	}
	if vars != nil {
		if s, ok := vars.Lookup(v.Ref); ok {
			return s, nil
		}
	}
	return "", &UnresolvedError{Field: field, Name: v.Ref}
}

func resolveInt(field string, v Value, vars Lookup) (int, error) {
	if v.IsZero() {
		return 0, nil
	}
	s, err := resolveString(field, v, vars)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		if v.Ref != "" {
			return 0, fmt.Errorf("%s: %s resolved to %q, not an integer", field, v.Ref, s)
		}
		return 0, fmt.Errorf("%s: %q is not an integer", field, s)
	}
	return n, nil
}

// Resolve substitutes toolchain variables and returns the resolved config.
// The first unresolvable or malformed field aborts resolution.
func Resolve(d *Descriptor, vars Lookup) (*BuildConfig, error) {
	cfg := &BuildConfig{
		Plugins:           append([]string(nil), d.Plugins...),
		Namespace:         d.Namespace,
		ApplicationID:     d.ApplicationID,
		Language:          d.Language,
		JvmTarget:         d.JvmTarget,
		DesugaringEnabled: d.DesugaringEnabled,
		MultidexEnabled:   d.MultidexEnabled,
		Lint:              d.Lint,
		Dependencies:      append([]Dependency(nil), d.Dependencies...),
		FlutterSource:     d.FlutterSource,
	}
	cfg.Lint.Disable = append([]string(nil), d.Lint.Disable...)
	for _, bt := range d.BuildTypes {
		bt.ProguardFiles = append([]FileRef(nil), bt.ProguardFiles...)
		cfg.BuildTypes = append(cfg.BuildTypes, bt)
	}

	ints := []struct {
		field string
		v     Value
		dst   *int
	}{
		{"minSdk", d.MinSdk, &cfg.SDK.Min},
		{"targetSdk", d.TargetSdk, &cfg.SDK.Target},
		{"compileSdk", d.CompileSdk, &cfg.SDK.Compile},
		{"versionCode", d.VersionCode, &cfg.VersionCode},
	}
	for _, f := range ints {
		n, err := resolveInt(f.field, f.v, vars)
		if err != nil {
			return nil, err
		}
		*f.dst = n
	}

	var err error
	if cfg.NdkVersion, err = resolveString("ndkVersion", d.NdkVersion, vars); err != nil {
		return nil, err
	}
	if cfg.VersionName, err = resolveString("versionName", d.VersionName, vars); err != nil {
		return nil, err
	}
	return cfg, nil
}

// References returns the toolchain variable names the descriptor refers to, in
// field order.
func (d *Descriptor) References() []string {
	var out []string
	for _, v := range []Value{d.MinSdk, d.TargetSdk, d.CompileSdk, d.NdkVersion, d.VersionCode, d.VersionName} {
		if v.Ref != "" {
			out = append(out, v.Ref)
		}
	}
	return out
}
